package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
)

// OrderRepo хранит заказы.
type OrderRepo struct {
	pool tr.Querier
	conv converter.OrderConverter
}

func NewOrderRepo(pool tr.Querier, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO orders (user_id, product_id, status) VALUES ($1, $2, $3)
		RETURNING id, user_id, product_id, status, created_at
	`

	rows, err := tr.Executor(ctx, o.pool).Query(ctx, query, order.UserID, order.ProductID, string(order.Status))
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.OrderModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return o.conv.ToEntity(&model), nil
}

// List возвращает заказы с покупателем и товаром, новые первыми.
// Если userID равен nil, возвращаются заказы всех пользователей.
func (o *OrderRepo) List(ctx context.Context, userID *string) ([]domain.OrderView, error) {
	query := `
		SELECT
			o.id, o.user_id, o.product_id, o.status, o.created_at,
			pf.username AS purchaser_username,
			pr.id       AS joined_product_id,
			pr.name     AS product_name,
			pr.price    AS product_price,
			pr.model    AS product_model
		FROM orders o
		LEFT JOIN profiles pf ON pf.id = o.user_id
		LEFT JOIN products pr ON pr.id = o.product_id
		WHERE ($1::uuid IS NULL OR o.user_id = $1::uuid)
		ORDER BY o.created_at DESC, o.id
	`

	rows, err := tr.Executor(ctx, o.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.OrderViewModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return o.conv.ToArrViewEntity(models), nil
}
