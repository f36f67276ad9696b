package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, name, description, created_at, updated_at`

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool tr.Querier
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool tr.Querier, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

// List возвращает все категории по возрастанию имени.
func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, id`

	rows, err := tr.Executor(ctx, c.pool).Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return c.conv.ToArrEntity(models), nil
}

// Create добавляет категорию. Дубликат имени возвращает e.ErrConflict.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name, description) VALUES ($1, $2)
		RETURNING ` + categoryColumns

	return c.one(ctx, query, category.Name, category.Description)
}

// Update меняет имя и описание категории.
func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + categoryColumns

	return c.one(ctx, query, category.ID, category.Name, category.Description)
}

// Delete удаляет категорию, товары удаляются каскадно.
func (c *CategoryRepo) Delete(ctx context.Context, id string) error {
	tag, err := tr.Executor(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}

	return notFoundIfNone(tag)
}

func (c *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := tr.Executor(ctx, c.pool).
		QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id::text = $1)`, id).
		Scan(&exists)
	if err != nil {
		return false, wrapErr(err)
	}

	return exists, nil
}

func (c *CategoryRepo) one(ctx context.Context, query string, args ...any) (*domain.Category, error) {
	rows, err := tr.Executor(ctx, c.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return c.conv.ToEntity(&model), nil
}
