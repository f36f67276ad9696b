package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

// CatalogUC - публичный каталог.
type CatalogUC interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductWithCategory, error)
	ListFeaturedProducts(ctx context.Context, limit int) ([]domain.ProductWithCategory, error)
	GetProduct(ctx context.Context, id string) (*domain.ProductWithCategory, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// OrderUC - заказы и профиль покупателя.
type OrderUC interface {
	PlaceOrder(ctx context.Context, productID string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.OrderView, error)
	MyProfile(ctx context.Context) (*ProfileRes, error)
}

// AdminUC - операции панели администратора.
type AdminUC interface {
	UpsertCategory(ctx context.Context, req *UpsertCategoryReq) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	UpsertProduct(ctx context.Context, req *UpsertProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	UploadProductImage(ctx context.Context, productID string, image *ProductImage) (*domain.Product, error)
	DashboardStats(ctx context.Context) (*domain.DashboardStats, error)
}

// AuthUC - регистрация, вход и выход.
type AuthUC interface {
	SignUp(ctx context.Context, req *SignUpReq) (*SessionRes, error)
	SignIn(ctx context.Context, req *SignInReq) (*SessionRes, error)
	SignOut(ctx context.Context) error
	CurrentSession(ctx context.Context) (*domain.Identity, error)
}
