package pgdb

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo хранит профили и роли пользователей.
type ProfileRepo struct {
	pool tr.Querier
	conv converter.ProfileConverter
}

func NewProfileRepo(pool tr.Querier, conv converter.ProfileConverter) *ProfileRepo {
	return &ProfileRepo{pool: pool, conv: conv}
}

func (p *ProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, username, role, created_at FROM profiles WHERE id = $1`

	return p.one(ctx, query, id)
}

// Create добавляет профиль с тем же id, что у пользователя. Занятое имя возвращает e.ErrConflict.
func (p *ProfileRepo) Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	query := `
		INSERT INTO profiles (id, username, role) VALUES ($1, $2, $3)
		RETURNING id, username, role, created_at
	`

	return p.one(ctx, query, profile.ID, profile.Username, string(profile.Role))
}

func (p *ProfileRepo) one(ctx context.Context, query string, args ...any) (*domain.Profile, error) {
	rows, err := tr.Executor(ctx, p.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr(err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProfileModel])
	if err != nil {
		return nil, wrapErr(err)
	}

	profile, err := p.conv.ToEntity(&model)
	if err != nil {
		return nil, wrapErr(err)
	}

	return profile, nil
}
