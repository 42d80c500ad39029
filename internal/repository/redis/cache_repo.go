package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/repository/redis/converter"
	"github.com/brasil-hosp/go-backend/pkg/clients"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const catalogKey = "catalog:products"

// CacheRepo хранит снимок каталога целиком под одним ключом.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter,
	cfg *cfg.RedisCfg, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCatalog возвращает found=false при промахе; пустой каталог в кэше считается попаданием.
// Повреждённый снимок удаляется и тоже считается промахом.
func (c *CacheRepo) GetCatalog(ctx context.Context) (products []domain.Product, found bool, err error) {
	data, err := c.client.Client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	var model converter.CatalogRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed, dropping catalog snapshot: %v", e.Wrap(whereami.WhereAmI(), err))
		if err := c.client.Client.Del(ctx, catalogKey).Err(); err != nil {
			c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
		}
		return nil, false, nil
	}

	products = c.conv.ToArrEntity(model.Products)
	if products == nil {
		products = []domain.Product{}
	}

	return products, true, nil
}

func (c *CacheRepo) SetCatalog(ctx context.Context, products []domain.Product) error {
	data, err := json.Marshal(converter.CatalogRedisModel{
		Products: c.conv.ToArrRedisModel(products),
		CachedAt: time.Now().UTC(),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, catalogKey, data, c.cfg.ProductTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) InvalidateCatalog(ctx context.Context) error {
	if err := c.client.Client.Del(ctx, catalogKey).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
