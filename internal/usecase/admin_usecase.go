package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// AdminUseCase реализует управление каталогом. Все операции доступны только администраторам.
type AdminUseCase struct {
	guard        *Guard
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	statsRepo    StatsRepository
	cacheRepo    CacheRepository
	imagesInfra  ImagesInfra
	logger       logger.Logger
}

func NewAdminUC(
	guard *Guard,
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	statsRepo StatsRepository,
	cacheRepo CacheRepository,
	imagesInfra ImagesInfra,
	logger logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		guard:        guard,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		statsRepo:    statsRepo,
		cacheRepo:    cacheRepo,
		imagesInfra:  imagesInfra,
		logger:       logger,
	}
}

// UpsertCategory создаёт категорию, если ID пуст, иначе обновляет существующую.
func (a *AdminUseCase) UpsertCategory(ctx context.Context, req *UpsertCategoryReq) (*domain.Category, error) {
	const op = "AdminUseCase.UpsertCategory"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return nil, e.Boundary(op, err)
	}

	category, err := validateCategory(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var saved *domain.Category
	if category.ID == "" {
		saved, err = a.categoryRepo.Create(ctx, category)
	} else {
		saved, err = a.categoryRepo.Update(ctx, category)
	}
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	a.invalidateCategories(ctx, op, category.ID != "")

	return saved, nil
}

// DeleteCategory удаляет категорию вместе со всеми её товарами.
func (a *AdminUseCase) DeleteCategory(ctx context.Context, id string) error {
	const op = "AdminUseCase.DeleteCategory"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return e.Boundary(op, err)
	}

	if err := a.categoryRepo.Delete(ctx, id); err != nil {
		return e.Boundary(op, err)
	}

	a.invalidateCategories(ctx, op, true)

	return nil
}

// UpsertProduct создаёт товар, если ID пуст, иначе обновляет существующий.
// При ошибке валидации запись не выполняется.
func (a *AdminUseCase) UpsertProduct(ctx context.Context, req *UpsertProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.UpsertProduct"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return nil, e.Boundary(op, err)
	}

	product, err := validateProduct(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	exists, err := a.categoryRepo.Exists(ctx, product.CategoryID)
	if err != nil {
		return nil, e.Boundary(op, err)
	}
	if !exists {
		return nil, e.Wrap(op, e.NewValidationError("category_id", "does not exist"))
	}

	var saved *domain.Product
	if product.ID == "" {
		saved, err = a.productRepo.Create(ctx, product)
	} else {
		saved, err = a.productRepo.Update(ctx, product)
	}
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	a.invalidateProduct(ctx, op, saved.ID)

	return saved, nil
}

// DeleteProduct удаляет товар. Заказы на него сохраняются без ссылки на товар.
func (a *AdminUseCase) DeleteProduct(ctx context.Context, id string) error {
	const op = "AdminUseCase.DeleteProduct"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return e.Boundary(op, err)
	}

	if err := a.productRepo.Delete(ctx, id); err != nil {
		return e.Boundary(op, err)
	}

	a.invalidateProduct(ctx, op, id)

	return nil
}

// UploadProductImage сохраняет изображение в MinIO и записывает его адрес в товар.
// Если обновить товар не удалось, загруженный объект удаляется.
func (a *AdminUseCase) UploadProductImage(ctx context.Context, productID string, image *ProductImage) (*domain.Product, error) {
	const op = "AdminUseCase.UploadProductImage"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return nil, e.Boundary(op, err)
	}

	if image == nil || len(image.Data) == 0 {
		return nil, e.Wrap(op, e.NewValidationError("image", "is required"))
	}

	mimeType := strings.ToLower(strings.TrimSpace(strings.Split(image.MimeType, ";")[0]))
	if _, ok := allowedImageTypes[mimeType]; !ok {
		return nil, e.Wrap(op, e.NewValidationError("image", "unsupported media type"))
	}
	image.MimeType = mimeType

	if _, err := a.productRepo.GetByID(ctx, productID); err != nil {
		return nil, e.Boundary(op, err)
	}

	uploaded, err := a.imagesInfra.UploadImage(ctx, NewUploadImageReq(productID, *image))
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	product, err := a.productRepo.SetImageURL(ctx, productID, uploaded.URL)
	if err != nil {
		a.logger.Warnf(
			"Cleaning up orphaned image after update failure. product_id: %s, error: %v",
			productID,
			e.Wrap(op, err),
		)
		a.imagesInfra.CleanupImages([]string{uploaded.Key})

		return nil, e.Boundary(op, err)
	}

	a.invalidateProduct(ctx, op, productID)

	return product, nil
}

// DashboardStats возвращает счётчики для панели администратора.
func (a *AdminUseCase) DashboardStats(ctx context.Context) (*domain.DashboardStats, error) {
	const op = "AdminUseCase.DashboardStats"

	if _, err := a.guard.RequireAdmin(ctx); err != nil {
		return nil, e.Boundary(op, err)
	}

	stats, err := a.statsRepo.Counts(ctx)
	if err != nil {
		return nil, e.Boundary(op, err)
	}

	return stats, nil
}

// invalidateCategories сбрасывает кэш категорий.
// withProducts дополнительно сбрасывает карточки товаров, в которых хранится название категории.
func (a *AdminUseCase) invalidateCategories(ctx context.Context, op string, withProducts bool) {
	if err := a.cacheRepo.DeleteCategories(ctx); err != nil {
		a.logger.Warnf("Failed to delete categories from cache: %v", e.Wrap(op, err))
	}

	if !withProducts {
		return
	}

	if err := a.cacheRepo.DeleteAllProducts(ctx); err != nil {
		a.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

func (a *AdminUseCase) invalidateProduct(ctx context.Context, op, id string) {
	if err := a.cacheRepo.DeleteProduct(ctx, id); err != nil {
		a.logger.Warnf("Failed to delete product from cache: %v", e.Wrap(op, err))
	}
}
