package usecase

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/shopspring/decimal"
)

const (
	priceScale        = 2
	minPasswordLength = 6
	maxNameLength     = 200
	maxCents          = 1<<53 - 1
)

// ParsePriceToCents разбирает неотрицательную цену с не более чем двумя знаками после запятой.
func ParsePriceToCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, e.NewValidationError("price", "is required")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, e.NewValidationError("price", "must be a number")
	}

	if d.IsNegative() {
		return 0, e.NewValidationError("price", "must be non-negative")
	}

	if !d.Equal(d.Truncate(priceScale)) {
		return 0, e.NewValidationError("price", "must have at most 2 decimal places")
	}

	cents := d.Shift(priceScale)
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, e.NewValidationError("price", "is out of range")
	}

	return cents.IntPart(), nil
}

// ParseStock разбирает неотрицательное целое количество.
func ParseStock(raw string) (int64, error) {
	stock, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || stock < 0 {
		return 0, e.NewValidationError("stock", "must be a non-negative integer")
	}

	return stock, nil
}

// validateCategory нормализует и проверяет поля категории.
func validateCategory(req *UpsertCategoryReq) (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.NewValidationError("name", "is required")
	}
	if len(name) > maxNameLength {
		return nil, e.NewValidationError("name", "is too long")
	}

	category := domain.NewCategory(name, trimOptional(req.Description))
	category.ID = req.ID

	return category, nil
}

// validateProduct проверяет поля товара, кроме существования категории.
func validateProduct(req *UpsertProductReq) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.NewValidationError("name", "is required")
	}
	if len(name) > maxNameLength {
		return nil, e.NewValidationError("name", "is too long")
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		return nil, e.NewValidationError("model", "is required")
	}

	price, err := ParsePriceToCents(req.Price)
	if err != nil {
		return nil, err
	}

	stock, err := ParseStock(req.Stock)
	if err != nil {
		return nil, err
	}

	categoryID := strings.TrimSpace(req.CategoryID)
	if categoryID == "" {
		return nil, e.NewValidationError("category_id", "is required")
	}

	imageURL := trimOptional(req.ImageURL)
	if imageURL != nil && !isHTTPURL(*imageURL) {
		return nil, e.NewValidationError("image_url", "must be an absolute http(s) URL")
	}

	youtubeLink := trimOptional(req.YoutubeLink)
	if youtubeLink != nil && !isHTTPURL(*youtubeLink) {
		return nil, e.NewValidationError("youtube_link", "must be an absolute http(s) URL")
	}

	product := domain.NewProduct(name, price, model, stock, categoryID)
	product.ID = req.ID
	product.Description = trimOptional(req.Description)
	product.ImageURL = imageURL
	product.YoutubeLink = youtubeLink

	return product, nil
}

func validateSignUp(req *SignUpReq) (email, username string, err error) {
	email, err = normalizeEmail(req.Email)
	if err != nil {
		return "", "", err
	}

	if len(req.Password) < minPasswordLength {
		return "", "", e.NewValidationError("password", "must be at least 6 characters")
	}

	username = strings.TrimSpace(req.Username)
	if username == "" {
		return "", "", e.NewValidationError("username", "is required")
	}
	if len(username) > maxNameLength {
		return "", "", e.NewValidationError("username", "is too long")
	}

	return email, username, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", e.NewValidationError("email", "is not a valid address")
	}

	return email, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// trimOptional возвращает nil для пустых значений.
func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
