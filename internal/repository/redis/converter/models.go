package converter

import "time"

type ProductRedisModel struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	Price        int64      `json:"price"`
	Model        string     `json:"model"`
	ImageURL     *string    `json:"image_url,omitempty"`
	YoutubeLink  *string    `json:"youtube_link,omitempty"`
	Stock        int64      `json:"stock"`
	CategoryID   string     `json:"category_id"`
	CategoryName *string    `json:"category_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type CategoryRedisModel struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
