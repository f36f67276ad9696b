package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const (
	productColumns = `id, name, description, price, model, image_url, youtube_link, stock, category_id, created_at, updated_at`

	productWithCategorySelect = `
		SELECT
			p.id, p.name, p.description, p.price, p.model, p.image_url, p.youtube_link,
			p.stock, p.category_id, p.created_at, p.updated_at,
			c.name AS category_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
	`
)

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool tr.Querier
	conv converter.ProductConverter
}

func NewProductRepo(pool tr.Querier, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// List возвращает товары по фильтру, упорядоченные по имени и id.
// Фильтр по категории с идентификатором не в формате uuid ничего не находит.
func (p *ProductRepo) List(ctx context.Context, filter domain.ProductFilter) ([]domain.ProductWithCategory, error) {
	var categoryID *string
	if filter.HasCategory() {
		if _, err := uuid.Parse(filter.CategoryID); err != nil {
			return []domain.ProductWithCategory{}, nil
		}
		categoryID = &filter.CategoryID
	}

	query := productWithCategorySelect + `
		WHERE ($1::text = ''
			OR strpos(lower(p.name), lower($1)) > 0
			OR strpos(lower(coalesce(p.description, '')), lower($1)) > 0)
		  AND ($2::uuid IS NULL OR p.category_id = $2::uuid)
		ORDER BY p.name, p.id
	`

	return p.many(ctx, query, filter.SearchText, categoryID)
}

// ListFeatured возвращает первые limit товаров каталога.
func (p *ProductRepo) ListFeatured(ctx context.Context, limit int) ([]domain.ProductWithCategory, error) {
	query := productWithCategorySelect + `
		ORDER BY p.name, p.id
		LIMIT $1
	`

	return p.many(ctx, query, limit)
}

func (p *ProductRepo) GetByID(ctx context.Context, id string) (*domain.ProductWithCategory, error) {
	rows, err := tr.Executor(ctx, p.pool).Query(ctx, productWithCategorySelect+` WHERE p.id = $1`, id)
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductWithCategoryModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return p.conv.ToViewEntity(&model), nil
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, model, image_url, youtube_link, stock, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	return p.one(ctx, query,
		product.Name, product.Description, product.Price, product.Model,
		product.ImageURL, product.YoutubeLink, product.Stock, product.CategoryID,
	)
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, model = $5, image_url = $6,
			youtube_link = $7, stock = $8, category_id = $9, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	return p.one(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Model,
		product.ImageURL, product.YoutubeLink, product.Stock, product.CategoryID,
	)
}

// Delete удаляет товар. Ссылки из заказов обнуляются внешним ключом.
func (p *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := tr.Executor(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}

	return notFoundIfNone(tag)
}

func (p *ProductRepo) SetImageURL(ctx context.Context, id, url string) (*domain.Product, error) {
	query := `
		UPDATE products SET image_url = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + productColumns

	return p.one(ctx, query, id, url)
}

// DecrementStock условно уменьшает остаток без блокировок на чтение.
// Если строка не обновилась, отдельный запрос различает отсутствие товара и нулевой остаток.
// Идентификатор не в формате uuid отклоняется до запроса: ошибка приведения прерывает
// внешнюю транзакцию, и уточняющий запрос в ней уже не выполнится.
func (p *ProductRepo) DecrementStock(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	query := `
		UPDATE products SET stock = stock - 1, updated_at = now()
		WHERE id = $1 AND stock > 0
		RETURNING ` + productColumns

	product, err := p.one(ctx, query, id)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return nil, err
	}

	var exists bool
	if err := tr.Executor(ctx, p.pool).
		QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return nil, wrapErr(err)
	}

	if exists {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrOutOfStock)
	}

	return nil, e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
}

func (p *ProductRepo) one(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	rows, err := tr.Executor(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return p.conv.ToEntity(&model), nil
}

func (p *ProductRepo) many(ctx context.Context, query string, args ...any) ([]domain.ProductWithCategory, error) {
	rows, err := tr.Executor(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductWithCategoryModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return p.conv.ToArrViewEntity(models), nil
}
