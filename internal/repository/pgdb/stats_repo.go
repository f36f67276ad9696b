package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
)

// StatsRepo считает записи для панели администратора.
type StatsRepo struct {
	pool tr.Querier
}

func NewStatsRepo(pool tr.Querier) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func (s *StatsRepo) Counts(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM profiles)   AS profiles,
			(SELECT count(*) FROM categories) AS categories,
			(SELECT count(*) FROM products)   AS products,
			(SELECT count(*) FROM orders)     AS orders
	`

	rows, err := tr.Executor(ctx, s.pool).Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.StatsModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return &domain.DashboardStats{
		Profiles:   m.Profiles,
		Categories: m.Categories,
		Products:   m.Products,
		Orders:     m.Orders,
	}, nil
}
