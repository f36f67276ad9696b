package http

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
)

// REQUESTS

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PlaceOrderRequest struct {
	ProductID string `json:"product_id"`
}

type CategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ProductRequest - цена и остаток передаются строками, как их ввёл администратор ("19.99", "3").
type ProductRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       string  `json:"price"`
	Model       string  `json:"model"`
	ImageURL    *string `json:"image_url,omitempty"`
	YoutubeLink *string `json:"youtube_link,omitempty"`
	Stock       string  `json:"stock"`
	CategoryID  string  `json:"category_id"`
}

// RESPONSES

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

type IdentityResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// CurrentSessionResponse - Session равна null для анонимного вызова.
type CurrentSessionResponse struct {
	Session *IdentityResponse `json:"session"`
}

type CategoryResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ProductResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  *string    `json:"description,omitempty"`
	Price        string     `json:"price"`
	PriceCents   int64      `json:"price_cents"`
	Model        string     `json:"model"`
	ImageURL     *string    `json:"image_url,omitempty"`
	YoutubeLink  *string    `json:"youtube_link,omitempty"`
	Stock        int64      `json:"stock"`
	InStock      bool       `json:"in_stock"`
	CategoryID   string     `json:"category_id"`
	CategoryName *string    `json:"category_name,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type OrderResponse struct {
	ID        string                  `json:"id"`
	UserID    string                  `json:"user_id"`
	ProductID *string                 `json:"product_id"`
	Status    string                  `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	Purchaser *OrderPurchaserResponse `json:"purchaser"`
	Product   *OrderProductResponse   `json:"product"`
}

type OrderPurchaserResponse struct {
	Username string `json:"username"`
}

type OrderProductResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Model string `json:"model"`
}

type ProfileResponse struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	CreatedAt time.Time       `json:"created_at"`
	Orders    []OrderResponse `json:"orders"`
}

type StatsResponse struct {
	Profiles   int64 `json:"profiles"`
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
	Orders     int64 `json:"orders"`
}

type SessionEventResponse struct {
	Kind   string    `json:"kind"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	At     time.Time `json:"at"`
}

// MAPPERS

func (r *ProductRequest) toUsecase(id string) *usecase.UpsertProductReq {
	return &usecase.UpsertProductReq{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Model:       r.Model,
		ImageURL:    r.ImageURL,
		YoutubeLink: r.YoutubeLink,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
	}
}

func (r *CategoryRequest) toUsecase(id string) *usecase.UpsertCategoryReq {
	return &usecase.UpsertCategoryReq{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
	}
}

func toSessionResponse(res *usecase.SessionRes) *SessionResponse {
	return &SessionResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		UserID:    res.Identity.UserID,
		Email:     res.Identity.Email,
		Role:      string(res.Role),
	}
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toArrCategoryResponse(categories []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		res = append(res, toCategoryResponse(&categories[i]))
	}

	return res
}

func toProductResponse(p *domain.Product, categoryName *string) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.PriceDecimal().StringFixed(2),
		PriceCents:   p.Price,
		Model:        p.Model,
		ImageURL:     p.ImageURL,
		YoutubeLink:  p.YoutubeLink,
		Stock:        p.Stock,
		InStock:      p.InStock(),
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toArrProductResponse(products []domain.ProductWithCategory) []ProductResponse {
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, toProductResponse(&products[i].Product, products[i].CategoryName))
	}

	return res
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func toArrOrderResponse(orders []domain.OrderView) []OrderResponse {
	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		o := toOrderResponse(&orders[i].Order)
		if p := orders[i].Purchaser; p != nil {
			o.Purchaser = &OrderPurchaserResponse{Username: p.Username}
		}
		if p := orders[i].Product; p != nil {
			o.Product = &OrderProductResponse{
				ID:    p.ID,
				Name:  p.Name,
				Price: domain.CentsToDecimal(p.Price).StringFixed(2),
				Model: p.Model,
			}
		}
		res = append(res, o)
	}

	return res
}

func toProfileResponse(res *usecase.ProfileRes) *ProfileResponse {
	return &ProfileResponse{
		ID:        res.Profile.ID,
		Username:  res.Profile.Username,
		Email:     res.Email,
		Role:      string(res.Profile.Role),
		CreatedAt: res.Profile.CreatedAt,
		Orders:    toArrOrderResponse(res.Orders),
	}
}

func toSessionEventResponse(ev domain.SessionEvent) SessionEventResponse {
	return SessionEventResponse{
		Kind:   string(ev.Kind),
		UserID: ev.UserID,
		Email:  ev.Email,
		At:     ev.At,
	}
}
