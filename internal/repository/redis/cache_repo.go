package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/repository/redis/converter"
	"github.com/DRSN-tech/storefront/pkg/clients"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix    = "product:"
	productGenKeyPrefix = "product_gen:"
	productsGenKey      = "products_gen"
	categoriesKey       = "categories"
	revokedKeyPrefix    = "revoked:"
	scanBatch           = 100
)

// errStaleFill прерывает WATCH-транзакцию, когда поколение товара сменилось.
var errStaleFill = errors.New("product generation changed")

type CacheRepo struct {
	client  *clients.RedisClient
	prConv  converter.ProductConverter
	catConv converter.CategoryConverter
	cfg     *cfg.RedisCfg
	logger  logger.Logger
}

func NewCacheRepo(
	client *clients.RedisClient,
	prConv converter.ProductConverter,
	catConv converter.CategoryConverter,
	cfg *cfg.RedisCfg,
	logger logger.Logger,
) *CacheRepo {
	return &CacheRepo{
		client:  client,
		prConv:  prConv,
		catConv: catConv,
		cfg:     cfg,
		logger:  logger,
	}
}

// GetProduct возвращает закэшированную карточку товара. Промах возвращает ok == false.
func (c *CacheRepo) GetProduct(ctx context.Context, id string) (*domain.ProductWithCategory, bool, error) {
	key := productKey(id)

	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.ProductRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.dropKey(key)
		return nil, false, nil
	}

	if model.ID != id {
		c.logger.Warnf("Cache ID mismatch: key_id: %s, model_id: %s", id, model.ID)
		c.dropKey(key)
		return nil, false, nil
	}

	return c.prConv.ToEntity(&model), true, nil
}

// ProductVersion возвращает сумму поколений товара и всего каталога.
// Оба счётчика только растут, поэтому любая инвалидация меняет сумму.
func (c *CacheRepo) ProductVersion(ctx context.Context, id string) (int64, error) {
	vals, err := c.client.Client.MGet(ctx, productGenKey(id), productsGenKey).Result()
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	version, err := sumGenerations(vals)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return version, nil
}

// SetProduct кэширует карточку товара на PRODUCT_TTL, если поколение всё ещё равно version.
// Запись идёт под WATCH счётчиков, поэтому инвалидация между проверкой и SET отменяет её.
func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.ProductWithCategory, version int64) error {
	data, err := json.Marshal(c.prConv.ToRedisModel(product))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	genKey := productGenKey(product.ID)
	err = c.client.Client.Watch(ctx, func(tx *r.Tx) error {
		vals, err := tx.MGet(ctx, genKey, productsGenKey).Result()
		if err != nil {
			return err
		}

		current, err := sumGenerations(vals)
		if err != nil {
			return err
		}
		if current != version {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe r.Pipeliner) error {
			pipe.Set(ctx, productKey(product.ID), data, c.cfg.ProductTTL)
			return nil
		})
		return err
	}, genKey, productsGenKey)

	if errors.Is(err, errStaleFill) || errors.Is(err, r.TxFailedErr) {
		c.logger.Debugf("Skip stale cache fill for product %s", product.ID)
		return nil
	}
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteProduct удаляет товар из кэша по ID и сдвигает его поколение.
func (c *CacheRepo) DeleteProduct(ctx context.Context, id string) error {
	genKey := productGenKey(id)

	_, err := c.client.Client.TxPipelined(ctx, func(pipe r.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.cfg.ProductTTL)
		pipe.Del(ctx, productKey(id))
		return nil
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// DeleteAllProducts удаляет все карточки товаров, проходя ключи через SCAN.
// Общее поколение сдвигается до обхода, чтобы параллельные заполнения не вернули старые записи.
func (c *CacheRepo) DeleteAllProducts(ctx context.Context) error {
	if err := c.client.Client.Incr(ctx, productsGenKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	iter := c.client.Client.Scan(ctx, 0, productKeyPrefix+"*", scanBatch).Iterator()

	keys := make([]string, 0, scanBatch)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		keys = keys[:0]
		return nil
	}

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatch {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return flush()
}

func (c *CacheRepo) GetCategories(ctx context.Context) ([]domain.Category, bool, error) {
	data, err := c.client.Client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var models []converter.CategoryRedisModel
	if err := json.Unmarshal(data, &models); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.dropKey(categoriesKey)
		return nil, false, nil
	}

	return c.catConv.ToArrEntity(models), true, nil
}

func (c *CacheRepo) SetCategories(ctx context.Context, categories []domain.Category) error {
	data, err := json.Marshal(c.catConv.ToArrRedisModel(categories))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, categoriesKey, data, c.cfg.CategoryTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) DeleteCategories(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, categoriesKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// RevokeToken помечает идентификатор токена отозванным на время ttl.
func (c *CacheRepo) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := c.client.Client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return n > 0, nil
}

// dropKey удаляет повреждённую запись, не блокируя запрос.
func (c *CacheRepo) dropKey(key string) {
	if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// productKey возвращает Redis-ключ для одного товара
func productKey(id string) string {
	return fmt.Sprintf("%s%s", productKeyPrefix, id)
}

func productGenKey(id string) string {
	return productGenKeyPrefix + id
}

// sumGenerations складывает значения счётчиков из MGET. Отсутствующий счётчик равен нулю.
func sumGenerations(vals []any) (int64, error) {
	var sum int64
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, err
		}
		sum += n
	}

	return sum, nil
}
