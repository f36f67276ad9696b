package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisCfg := &cfg.RedisCfg{
		Addr:        mr.Addr(),
		DialTimeout: time.Second,
		Timeout:     time.Second,
		ProductTTL:  time.Minute,
		CategoryTTL: time.Minute,
	}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Close() })

	repo := NewCacheRepo(client, converter.NewProductConverterImpl(), converter.NewCategoryConverterImpl(), redisCfg, logger.NewNopLogger())
	return repo, mr
}

func TestCacheRepo_Product(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	audio := "Audio"
	product := &domain.ProductWithCategory{
		Product:      domain.Product{ID: "p1", Name: "Speaker", Price: 1999, Stock: 3, CategoryID: "c1"},
		CategoryName: &audio,
	}
	version, err := repo.ProductVersion(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, repo.SetProduct(ctx, product, version))
	assert.Equal(t, time.Minute, mr.TTL("product:p1"))

	got, ok, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Speaker", got.Name)
	assert.Equal(t, int64(1999), got.Price)
	require.NotNil(t, got.CategoryName)
	assert.Equal(t, "Audio", *got.CategoryName)

	require.NoError(t, repo.DeleteProduct(ctx, "p1"))
	_, ok, err = repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_CorruptedEntryIsMiss(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, mr.Set("product:p1", "{not json"))
	require.NoError(t, mr.Set("product:p2", `{"id":"p1"}`))

	_, ok, err := repo.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("product:p1"))

	_, ok, err = repo.GetProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("product:p2"))
}

func TestCacheRepo_DeleteAllProducts(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.SetProduct(ctx, &domain.ProductWithCategory{Product: domain.Product{ID: id}}, 0))
	}
	require.NoError(t, repo.SetCategories(ctx, []domain.Category{{ID: "c1", Name: "Audio"}}))

	require.NoError(t, repo.DeleteAllProducts(ctx))

	assert.False(t, mr.Exists("product:a"))
	assert.False(t, mr.Exists("product:c"))
	assert.True(t, mr.Exists("categories"))
}

func TestCacheRepo_FillAfterDeleteIsSkipped(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	// Чтение из БД началось до списания остатка
	version, err := repo.ProductVersion(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteProduct(ctx, "p1"))
	assert.Equal(t, time.Minute, mr.TTL("product_gen:p1"))

	stale := &domain.ProductWithCategory{Product: domain.Product{ID: "p1", Name: "Speaker", Stock: 3}}
	require.NoError(t, repo.SetProduct(ctx, stale, version))
	assert.False(t, mr.Exists("product:p1"))

	// Заполнение, начатое после инвалидации, проходит
	fresh, err := repo.ProductVersion(ctx, "p1")
	require.NoError(t, err)
	assert.NotEqual(t, version, fresh)

	stale.Stock = 2
	require.NoError(t, repo.SetProduct(ctx, stale, fresh))

	got, ok, err := repo.GetProduct(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Stock)
}

func TestCacheRepo_FillAfterDeleteAllIsSkipped(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	version, err := repo.ProductVersion(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAllProducts(ctx))

	require.NoError(t, repo.SetProduct(ctx, &domain.ProductWithCategory{Product: domain.Product{ID: "p1"}}, version))
	assert.False(t, mr.Exists("product:p1"))
	assert.True(t, mr.Exists("products_gen"))
}

func TestCacheRepo_Categories(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetCategories(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetCategories(ctx, []domain.Category{}))
	got, ok, err := repo.GetCategories(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, repo.SetCategories(ctx, []domain.Category{{ID: "c1", Name: "Audio"}, {ID: "c2", Name: "Lighting"}}))
	got, ok, err = repo.GetCategories(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "Lighting", got[1].Name)

	require.NoError(t, repo.DeleteCategories(ctx))
	_, ok, err = repo.GetCategories(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheRepo_RevokedTokens(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	revoked, err := repo.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.RevokeToken(ctx, "jti-1", time.Hour))
	revoked, err = repo.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = repo.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCacheRepo_Unavailable(t *testing.T) {
	redisCfg := &cfg.RedisCfg{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
		Timeout:     200 * time.Millisecond,
	}
	client := clients.NewRedisClient(redisCfg)
	defer client.Close()
	repo := NewCacheRepo(client, converter.NewProductConverterImpl(), converter.NewCategoryConverterImpl(), redisCfg, logger.NewNopLogger())

	_, _, err := repo.GetProduct(context.Background(), "p1")
	assert.Error(t, err)

	_, err = repo.IsTokenRevoked(context.Background(), "jti")
	assert.Error(t, err)
}
