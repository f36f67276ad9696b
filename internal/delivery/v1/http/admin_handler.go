package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Запас на заголовки multipart сверх размера изображения
const multipartOverhead = 1 << 20

type AdminHandler struct {
	adminUC      usecase.AdminUC
	maxImageSize int64
	logger       logger.Logger
}

func NewAdminHandler(adminUC usecase.AdminUC, maxImageSize int64, logger logger.Logger) *AdminHandler {
	return &AdminHandler{adminUC: adminUC, maxImageSize: maxImageSize, logger: logger}
}

// stats
//
//	@Summary	Счётчики панели администратора
//	@Tags		admin
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	StatsResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/admin/stats [get]
func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUC.DashboardStats(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, StatsResponse{
		Profiles:   stats.Profiles,
		Categories: stats.Categories,
		Products:   stats.Products,
		Orders:     stats.Orders,
	})
}

// createCategory
//
//	@Summary	Создать категорию
//	@Tags		admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CategoryRequest	true	"Категория"
//	@Success	201		{object}	CategoryResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	403		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse	"Имя занято"
//	@Router		/admin/categories [post]
func (h *AdminHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	h.upsertCategory(w, r, "", http.StatusCreated)
}

// updateCategory
//
//	@Summary	Изменить категорию
//	@Tags		admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"ID категории"
//	@Param		request	body		CategoryRequest	true	"Категория"
//	@Success	200		{object}	CategoryResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/categories/{id} [put]
func (h *AdminHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	h.upsertCategory(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *AdminHandler) upsertCategory(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	category, err := h.adminUC.UpsertCategory(r.Context(), req.toUsecase(id))
	if err != nil {
		h.logger.Warnf("upsert category %q: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, status, toCategoryResponse(category))
}

// deleteCategory
//
//	@Summary		Удалить категорию
//	@Description	Товары категории удаляются вместе с ней
//	@Tags			admin
//	@Security		BearerAuth
//	@Param			id	path	string	true	"ID категории"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/admin/categories/{id} [delete]
func (h *AdminHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.adminUC.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// createProduct
//
//	@Summary	Создать товар
//	@Tags		admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ProductRequest	true	"Товар"
//	@Success	201		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse	"Ошибка валидации, поле в field"
//	@Failure	403		{object}	ErrorResponse
//	@Router		/admin/products [post]
func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	h.upsertProduct(w, r, "", http.StatusCreated)
}

// updateProduct
//
//	@Summary	Изменить товар
//	@Tags		admin
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"ID товара"
//	@Param		request	body		ProductRequest	true	"Товар"
//	@Success	200		{object}	ProductResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/admin/products/{id} [put]
func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	h.upsertProduct(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *AdminHandler) upsertProduct(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	product, err := h.adminUC.UpsertProduct(r.Context(), req.toUsecase(id))
	if err != nil {
		h.logger.Warnf("upsert product %q: %s", id, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, status, toProductResponse(product, nil))
}

// deleteProduct
//
//	@Summary		Удалить товар
//	@Description	Заказы на товар сохраняются без ссылки на него
//	@Tags			admin
//	@Security		BearerAuth
//	@Param			id	path	string	true	"ID товара"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Router			/admin/products/{id} [delete]
func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.adminUC.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// uploadImage
//
//	@Summary	Загрузить изображение товара
//	@Tags		admin
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		string	true	"ID товара"
//	@Param		image	formData	file	true	"Изображение (jpeg, png, webp, gif)"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	413		{object}	ErrorResponse
//	@Router		/admin/products/{id}/image [post]
func (h *AdminHandler) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageSize+multipartOverhead)

	if err := ensureMultipartForm(r, h.maxImageSize); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, err.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	image, err := parseImage(r.MultipartForm.File["image"], h.maxImageSize)
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := h.adminUC.UploadProductImage(r.Context(), chi.URLParam(r, "id"), image)
	if err != nil {
		h.logger.Warnf("upload image %s: %s", image.Name, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product, nil))
}
