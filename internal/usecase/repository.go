package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type ProductRepository interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductWithCategory, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.ProductWithCategory, error)
	GetByID(ctx context.Context, id string) (*domain.ProductWithCategory, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetImageURL(ctx context.Context, id, url string) (*domain.Product, error)
	// DecrementStock уменьшает остаток на единицу.
	// Возвращает e.ErrNotFound, если товара нет, и e.ErrOutOfStock, если остаток равен нулю.
	DecrementStock(ctx context.Context, id string) (*domain.Product, error)
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// List возвращает заказы, новые первыми. userID == nil означает все заказы.
	List(ctx context.Context, userID *string) ([]domain.OrderView, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReleaseToPending(ctx context.Context, id int64) error
}

type StatsRepository interface {
	Counts(ctx context.Context) (*domain.DashboardStats, error)
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

// CacheRepository - кэш каталога. Промах кэша возвращает ok == false без ошибки.
type CacheRepository interface {
	GetProduct(ctx context.Context, id string) (*domain.ProductWithCategory, bool, error)
	// ProductVersion возвращает поколение записи товара. Каждая инвалидация его меняет.
	ProductVersion(ctx context.Context, id string) (int64, error)
	// SetProduct записывает товар, только если поколение не изменилось с момента ProductVersion.
	// Иначе запись молча пропускается: данные могли быть прочитаны до инвалидации.
	SetProduct(ctx context.Context, product *domain.ProductWithCategory, version int64) error
	DeleteProduct(ctx context.Context, id string) error
	DeleteAllProducts(ctx context.Context) error
	GetCategories(ctx context.Context) ([]domain.Category, bool, error)
	SetCategories(ctx context.Context, categories []domain.Category) error
	DeleteCategories(ctx context.Context) error
	TokenRevoker
}

// TokenRevoker хранит отозванные идентификаторы токенов до истечения их срока.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}
