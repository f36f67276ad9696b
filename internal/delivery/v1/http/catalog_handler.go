package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogUC usecase.CatalogUC
	logger    logger.Logger
}

func NewCatalogHandler(catalogUC usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUC: catalogUC, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Description	Поиск по подстроке в названии или описании и фильтр по категории ("all" отключает фильтр)
//	@Tags			catalog
//	@Produce		json
//	@Param			search		query	string	false	"Строка поиска"
//	@Param			category	query	string	false	"ID категории или all"
//	@Success		200			{array}	ProductResponse
//	@Router			/products [get]
func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ProductFilter{
		SearchText: q.Get("search"),
		CategoryID: q.Get("category"),
	}

	products, err := h.catalogUC.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Errorf(err, "list products")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductResponse(products))
}

// listFeatured
//
//	@Summary	Товары для главной страницы
//	@Tags		catalog
//	@Produce	json
//	@Param		limit	query	int	false	"Количество (по умолчанию 3)"
//	@Success	200		{array}	ProductResponse
//	@Router		/products/featured [get]
func (h *CatalogHandler) listFeatured(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, e.NewValidationError("limit", "must be an integer"))
			return
		}
		limit = n
	}

	products, err := h.catalogUC.ListFeaturedProducts(r.Context(), limit)
	if err != nil {
		h.logger.Errorf(err, "list featured products")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrProductResponse(products))
}

// getProduct
//
//	@Summary	Карточка товара
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalogUC.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(&product.Product, product.CategoryName))
}

// listCategories
//
//	@Summary	Список категорий
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}	CategoryResponse
//	@Router		/categories [get]
func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUC.ListCategories(r.Context())
	if err != nil {
		h.logger.Errorf(err, "list categories")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrCategoryResponse(categories))
}
