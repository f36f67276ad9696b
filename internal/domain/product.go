package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllCategories - значение фильтра категории, отключающее фильтрацию.
const AllCategories = "all"

// Product описывает товар каталога
type Product struct {
	ID          string
	Name        string
	Description *string
	Price       int64 // Цена хранится в центах
	Model       string
	ImageURL    *string
	YoutubeLink *string
	Stock       int64
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

func NewProduct(name string, price int64, model string, stock int64, categoryID string) *Product {
	return &Product{
		Name:       name,
		Price:      price,
		Model:      model,
		Stock:      stock,
		CategoryID: categoryID,
	}
}

// InStock сообщает, можно ли заказать товар.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// PriceDecimal возвращает цену в денежных единицах.
func (p *Product) PriceDecimal() decimal.Decimal {
	return CentsToDecimal(p.Price)
}

// ProductWithCategory - товар вместе с названием категории для отображения.
// CategoryName пуст, если категория не найдена.
type ProductWithCategory struct {
	Product
	CategoryName *string
}

// ProductFilter - фильтр каталога.
type ProductFilter struct {
	SearchText string
	CategoryID string
}

// HasCategory сообщает, задан ли фильтр по категории.
func (f ProductFilter) HasCategory() bool {
	return f.CategoryID != "" && f.CategoryID != AllCategories
}

// CentsToDecimal переводит центы в десятичную сумму.
func CentsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
