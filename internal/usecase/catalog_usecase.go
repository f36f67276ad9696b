package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

const (
	cacheFillTimeout   = 500 * time.Millisecond
	defaultFeatured    = 3
	maxFeaturedProduct = 50
)

// CatalogUseCase реализует публичное чтение каталога с кэшированием в Redis.
type CatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cacheRepo    CacheRepository
	logger       logger.Logger
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

// ListProducts возвращает товары, подходящие под фильтр, упорядоченные по названию.
func (c *CatalogUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductWithCategory, error) {
	const op = "CatalogUseCase.ListProducts"

	products, err := c.productRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	if products == nil {
		products = make([]domain.ProductWithCategory, 0)
	}

	return products, nil
}

// ListFeaturedProducts возвращает первые limit товаров для главной страницы.
func (c *CatalogUseCase) ListFeaturedProducts(ctx context.Context, limit int) ([]domain.ProductWithCategory, error) {
	const op = "CatalogUseCase.ListFeaturedProducts"

	if limit <= 0 {
		limit = defaultFeatured
	}
	limit = min(limit, maxFeaturedProduct)

	products, err := c.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	if products == nil {
		products = make([]domain.ProductWithCategory, 0)
	}

	return products, nil
}

// GetProduct возвращает товар с категорией, сначала заглядывая в кэш.
func (c *CatalogUseCase) GetProduct(ctx context.Context, id string) (*domain.ProductWithCategory, error) {
	const op = "CatalogUseCase.GetProduct"

	if id == "" {
		return nil, e.Wrap(op, e.ErrNotFound)
	}

	cached, ok, err := c.cacheRepo.GetProduct(ctx, id)
	if err != nil {
		c.logger.Warnf("product cache read failed: %v", e.Wrap(op, err))
	} else if ok {
		return cached, nil
	}

	// Поколение берётся до чтения из БД, чтобы заполнение не перезаписало более позднюю инвалидацию
	version, verErr := c.cacheRepo.ProductVersion(ctx, id)
	if verErr != nil {
		c.logger.Warnf("product cache version read failed: %v", e.Wrap(op, verErr))
	}

	product, err := c.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	if verErr != nil {
		return product, nil
	}

	// Фоновое добавление товара в кэш
	go func(p domain.ProductWithCategory) {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
		defer cancel()

		if err := c.cacheRepo.SetProduct(bgCtx, &p, version); err != nil {
			c.logger.Warnf("Failed to cache product in background: %v", e.Wrap(op, err))
		}
	}(*product)

	return product, nil
}

// ListCategories возвращает все категории по алфавиту.
func (c *CatalogUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CatalogUseCase.ListCategories"

	cached, ok, err := c.cacheRepo.GetCategories(ctx)
	if err != nil {
		c.logger.Warnf("categories cache read failed: %v", e.Wrap(op, err))
	} else if ok {
		return cached, nil
	}

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	if categories == nil {
		categories = make([]domain.Category, 0)
	}

	go func(list []domain.Category) {
		bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
		defer cancel()

		if err := c.cacheRepo.SetCategories(bgCtx, list); err != nil {
			c.logger.Warnf("Failed to cache categories in background: %v", e.Wrap(op, err))
		}
	}(append([]domain.Category(nil), categories...))

	return categories, nil
}
