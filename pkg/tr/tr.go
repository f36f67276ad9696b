package tr

import (
	"context"

	"github.com/DRSN-tech/storefront/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// Querier - общий набор методов pgx.Tx и *pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx кладёт транзакцию в контекст
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// Executor возвращает транзакцию из контекста, а при её отсутствии - пул.
func Executor(ctx context.Context, db Querier) Querier {
	if tx, err := TxFromCtx(ctx); err == nil {
		return tx
	}
	return db
}

// Manager выполняет функцию в одной транзакции PostgreSQL.
type Manager struct {
	db transaction.Transactional
}

func NewManager(db transaction.Transactional) *Manager {
	return &Manager{db: db}
}

// Do открывает транзакцию, передаёт её в fn через контекст и фиксирует при успехе.
// При ошибке или панике транзакция откатывается.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "Manager.Do"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.db)
	if err != nil {
		return e.Wrap(op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(ctx)
			}
			panic(p)
		}

		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.Wrap(op, e.ErrTransactionNotFound)
	}

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
