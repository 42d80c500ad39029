package redis

import (
	"context"
	"errors"
	"time"

	"github.com/brasil-hosp/go-backend/pkg/clients"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CartRepo хранит сериализованные корзины. Каждая запись продлевает TTL.
type CartRepo struct {
	client *clients.RedisClient
	ttl    time.Duration
}

func NewCartRepo(client *clients.RedisClient, ttl time.Duration) *CartRepo {
	return &CartRepo{client: client, ttl: ttl}
}

func (c *CartRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, e.ErrCartNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

func (c *CartRepo) Set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
