package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// CATALOG / ADMIN

// UpsertCategoryReq - создание (ID пуст) или обновление категории.
type UpsertCategoryReq struct {
	ID          string
	Name        string
	Description *string
}

// UpsertProductReq - создание (ID пуст) или обновление товара.
// Цена и остаток приходят строками в том виде, в каком их ввёл администратор.
type UpsertProductReq struct {
	ID          string
	Name        string
	Description *string
	Price       string
	Model       string
	ImageURL    *string
	YoutubeLink *string
	Stock       string
	CategoryID  string
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// ORDERS

// ProfileRes - профиль вызывающего вместе с его заказами.
type ProfileRes struct {
	Profile *domain.Profile
	Email   string
	Orders  []domain.OrderView
}

// AUTH

type SignUpReq struct {
	Email    string
	Password string
	Username string
}

type SignInReq struct {
	Email    string
	Password string
}

// SessionRes - выданный токен сессии.
type SessionRes struct {
	Token     string
	ExpiresAt time.Time
	Identity  domain.Identity
	Role      domain.Role
}

// IssuedToken - подписанный токен и закодированная в нём личность.
type IssuedToken struct {
	Token    string
	Identity domain.Identity
}

// INFRASTRUCTURE

// UploadImageReq - запрос на загрузку изображения товара.
type UploadImageReq struct {
	ProductID string
	Image     ProductImage
}

// UploadImageRes - ключ объекта в MinIO и публичный адрес.
type UploadImageRes struct {
	Key string
	URL string
}

// OrderCreatedEvent - данные события order.created.
type OrderCreatedEvent struct {
	EventID     string
	OrderID     string
	UserID      string
	Username    string
	ProductID   string
	ProductName string
	Price       int64
	CreatedAt   time.Time
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

const EventOrderCreated = "order.created"

// OutboxEvent - событие, ожидающее доставки в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   string
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewOutboxEvent(eventID, eventType, aggregateID string, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
		CreatedAt:   time.Now().UTC(),
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

func NewUploadImageReq(productID string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{
		ProductID: productID,
		Image:     image,
	}
}

func NewUploadImageRes(key, url string) *UploadImageRes {
	return &UploadImageRes{
		Key: key,
		URL: url,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}
