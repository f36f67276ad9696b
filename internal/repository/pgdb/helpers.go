package pgdb

import (
	"errors"
	"fmt"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jimlawless/whereami"
)

// Коды ошибок PostgreSQL, которые переводятся в таксономию операций
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidTextRepr     = "22P02"
)

// wrapErr добавляет место вызова и переводит ошибку драйвера в ошибку таксономии.
// Исходная ошибка остаётся в цепочке.
func wrapErr(err error) error {
	return e.Wrap(whereami.WhereAmI(2), mapErr(err))
}

func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", e.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: %w", e.ErrConflict, pgErr.ConstraintName, err)
	case codeForeignKeyViolation, codeInvalidTextRepr:
		// Ссылка на несуществующую строку или идентификатор не в формате uuid
		return fmt.Errorf("%w: %w", e.ErrNotFound, err)
	case codeCheckViolation:
		field := pgErr.ColumnName
		if field == "" {
			field = pgErr.ConstraintName
		}
		return fmt.Errorf("%w: %w", e.NewValidationError(field, "violates check constraint"), err)
	}

	return err
}

// notFoundIfNone возвращает ErrNotFound, если запрос не затронул ни одной строки.
func notFoundIfNone(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(2), e.ErrNotFound)
	}

	return nil
}
