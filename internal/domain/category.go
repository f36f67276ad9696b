package domain

import "time"

// Category описывает категорию каталога
type Category struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewCategory(name string, description *string) *Category {
	return &Category{
		Name:        name,
		Description: description,
	}
}
