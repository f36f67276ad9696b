package pgdb

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/tr"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testProductID  = "6f1c1a52-3f4e-4c8e-9a51-0d2d6b3f9a10"
	testCategoryID = "0b8f7a55-1b7e-4d7d-8f0e-5c1a2e9d4b21"
)

var (
	productCols             = []string{"id", "name", "description", "price", "model", "image_url", "youtube_link", "stock", "category_id", "created_at", "updated_at"}
	productWithCategoryCols = append(append([]string{}, productCols...), "category_name")
	testCreatedAt           = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock
}

func productRow(rows *pgxmock.Rows, id, name string, stock int64) *pgxmock.Rows {
	return rows.AddRow(
		id, name, (*string)(nil), int64(1999), "M-1", (*string)(nil), (*string)(nil),
		stock, testCategoryID, testCreatedAt, (*time.Time)(nil),
	)
}

func productWithCategoryRow(rows *pgxmock.Rows, id, name string, categoryName *string) *pgxmock.Rows {
	return rows.AddRow(
		id, name, (*string)(nil), int64(1999), "M-1", (*string)(nil), (*string)(nil),
		int64(3), testCategoryID, testCreatedAt, (*time.Time)(nil), categoryName,
	)
}

func TestProductRepo_DecrementStock(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		setup     func(mock pgxmock.PgxPoolIface)
		wantStock int64
		wantErr   error
	}{
		{
			name: "decremented",
			id:   testProductID,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE products SET stock = stock - 1`).
					WithArgs(testProductID).
					WillReturnRows(productRow(pgxmock.NewRows(productCols), testProductID, "Speaker", 2))
			},
			wantStock: 2,
		},
		{
			name: "last unit already sold",
			id:   testProductID,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE products SET stock = stock - 1`).
					WithArgs(testProductID).
					WillReturnRows(pgxmock.NewRows(productCols))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testProductID).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: e.ErrOutOfStock,
		},
		{
			name: "missing product",
			id:   testProductID,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`UPDATE products SET stock = stock - 1`).
					WithArgs(testProductID).
					WillReturnRows(pgxmock.NewRows(productCols))
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(testProductID).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: e.ErrNotFound,
		},
		{
			name:    "malformed id is rejected without a query",
			id:      "42",
			setup:   func(pgxmock.PgxPoolIface) {},
			wantErr: e.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)
			repo := NewProductRepo(mock, converter.NewProductConverterImpl())

			got, err := repo.DecrementStock(context.Background(), tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.NotErrorIs(t, err, e.ErrTransientIO)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStock, got.Stock)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// Внутри транзакции PlaceOrder некорректный идентификатор не должен доходить до PostgreSQL:
// ошибка приведения прервала бы транзакцию, и уточняющий запрос завершился бы с 25P02.
func TestProductRepo_DecrementStock_MalformedIDInTx(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	repo := NewProductRepo(mock, converter.NewProductConverterImpl())
	_, err = repo.DecrementStock(tr.WithTx(ctx, tx), "not-a-uuid")
	require.ErrorIs(t, err, e.ErrNotFound)

	_, ok := e.AsValidation(err)
	assert.False(t, ok)
	assert.True(t, e.IsDomain(e.Boundary("PlaceOrder", err)))
	assert.NotErrorIs(t, e.Boundary("PlaceOrder", err), e.ErrTransientIO)

	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_List(t *testing.T) {
	audio := "Audio"
	categoryID := testCategoryID

	tests := []struct {
		name      string
		filter    domain.ProductFilter
		setup     func(mock pgxmock.PgxPoolIface)
		wantNames []string
	}{
		{
			name:   "search and category go to the query",
			filter: domain.ProductFilter{SearchText: "SPEA", CategoryID: testCategoryID},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(productWithCategoryCols)
				productWithCategoryRow(rows, testProductID, "Speaker", &audio)
				mock.ExpectQuery(`strpos\(lower\(p\.name\), lower\(\$1\)\) > 0`).
					WithArgs("SPEA", &categoryID).
					WillReturnRows(rows)
			},
			wantNames: []string{"Speaker"},
		},
		{
			name:   "all categories disable the category filter",
			filter: domain.ProductFilter{CategoryID: domain.AllCategories},
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(productWithCategoryCols)
				productWithCategoryRow(rows, testProductID, "Lamp", nil)
				productWithCategoryRow(rows, "9d1e2f3a-4b5c-4d6e-8f7a-1b2c3d4e5f60", "Speaker", &audio)
				mock.ExpectQuery(`\$2::uuid IS NULL OR p\.category_id = \$2::uuid`).
					WithArgs("", (*string)(nil)).
					WillReturnRows(rows)
			},
			wantNames: []string{"Lamp", "Speaker"},
		},
		{
			name:      "category that is not a uuid matches nothing",
			filter:    domain.ProductFilter{CategoryID: "audio"},
			setup:     func(pgxmock.PgxPoolIface) {},
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)
			repo := NewProductRepo(mock, converter.NewProductConverterImpl())

			got, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			require.NotNil(t, got)

			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.wantNames, names)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProductRepo_GetByID_CategoryName(t *testing.T) {
	mock := newMockPool(t)
	audio := "Audio"

	rows := pgxmock.NewRows(productWithCategoryCols)
	productWithCategoryRow(rows, testProductID, "Speaker", &audio)
	mock.ExpectQuery(`LEFT JOIN categories c ON c\.id = p\.category_id`).
		WithArgs(testProductID).
		WillReturnRows(rows)
	mock.ExpectQuery(`LEFT JOIN categories`).
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows(productWithCategoryCols))

	repo := NewProductRepo(mock, converter.NewProductConverterImpl())

	got, err := repo.GetByID(context.Background(), testProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), got.Price)
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "Audio", *got.CategoryName)

	_, err = repo.GetByID(context.Background(), testProductID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
