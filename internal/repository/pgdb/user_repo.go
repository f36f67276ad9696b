package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
)

// UserRepo хранит учётные записи для входа.
type UserRepo struct {
	pool tr.Querier
	conv converter.ProfileConverter
}

func NewUserRepo(pool tr.Querier, conv converter.ProfileConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

// Create добавляет учётную запись. Занятый email возвращает e.ErrConflict.
func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (email, password_hash) VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at
	`

	return u.one(ctx, query, user.Email, user.PasswordHash)
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`

	return u.one(ctx, query, email)
}

func (u *UserRepo) one(ctx context.Context, query string, args ...any) (*domain.User, error) {
	rows, err := tr.Executor(ctx, u.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.UserModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	return u.conv.ToUserEntity(&model), nil
}
