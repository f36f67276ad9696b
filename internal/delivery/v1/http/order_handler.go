package http

import (
	"net/http"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
)

type OrderHandler struct {
	orderUC usecase.OrderUC
	logger  logger.Logger
}

func NewOrderHandler(orderUC usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, logger: logger}
}

// placeOrder
//
//	@Summary		Оформить заказ
//	@Description	Списывает единицу остатка и создаёт заказ в статусе pending
//	@Tags			orders
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PlaceOrderRequest	true	"Товар"
//	@Success		201		{object}	OrderResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Failure		409		{object}	ErrorResponse	"Нет в наличии"
//	@Router			/orders [post]
func (h *OrderHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, err)
		return
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), req.ProductID)
	if err != nil {
		h.logger.Warnf("place order for product %s: %s", req.ProductID, err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}

// listOrders
//
//	@Summary		Список заказов
//	@Description	Администратор видит все заказы, пользователь только свои
//	@Tags			orders
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		OrderResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/orders [get]
func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderUC.ListOrders(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrOrderResponse(orders))
}

// myProfile
//
//	@Summary	Профиль и заказы текущего пользователя
//	@Tags		profile
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	ProfileResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/profile [get]
func (h *OrderHandler) myProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.orderUC.MyProfile(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProfileResponse(profile))
}
