package converter

import "time"

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description *string    `db:"description"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Description *string    `db:"description"`
	Price       int64      `db:"price"`
	Model       string     `db:"model"`
	ImageURL    *string    `db:"image_url"`
	YoutubeLink *string    `db:"youtube_link"`
	Stock       int64      `db:"stock"`
	CategoryID  string     `db:"category_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// ProductWithCategoryModel - товар, соединённый с categories через LEFT JOIN.
type ProductWithCategoryModel struct {
	ProductModel
	CategoryName *string `db:"category_name"`
}

// ProfileModel представляет запись таблицы profiles в PostgreSQL.
type ProfileModel struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// UserModel представляет запись таблицы users в PostgreSQL.
type UserModel struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ProductID *string   `db:"product_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// OrderViewModel - заказ с данными покупателя и товара. Поля соединений равны nil,
// если связанной строки нет.
type OrderViewModel struct {
	OrderModel
	PurchaserUsername *string `db:"purchaser_username"`
	JoinedProductID   *string `db:"joined_product_id"`
	ProductName       *string `db:"product_name"`
	ProductPrice      *int64  `db:"product_price"`
	ProductModel      *string `db:"product_model"`
}

// StatsModel - счётчики таблиц для панели администратора.
type StatsModel struct {
	Profiles   int64 `db:"profiles"`
	Categories int64 `db:"categories"`
	Products   int64 `db:"products"`
	Orders     int64 `db:"orders"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID string     `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
