package clients

import (
	"context"
	"time"

	"github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/jitter"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// RedisClient — общий клиент для кэша каталога и корзин.
type RedisClient struct {
	Client *r.Client
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	return &RedisClient{
		Client: r.NewClient(&r.Options{
			Addr:         cfg.Addr,
			Username:     cfg.User,
			Password:     cfg.Password,
			DB:           cfg.DB,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		}),
	}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}

// WaitReady повторяет Ping с backoff, пока Redis не ответит или не истечёт ctx.
func (c *RedisClient) WaitReady(ctx context.Context) error {
	backoff := jitter.NewBackoff(200*time.Millisecond, 2*time.Second)

	var err error
	for attempt := 0; ; attempt++ {
		if err = c.Ping(ctx); err == nil {
			return nil
		}
		if waitErr := backoff.Wait(ctx, attempt); waitErr != nil {
			return e.Wrap("redis not ready", err)
		}
	}
}

func (c *RedisClient) Close() error {
	return c.Client.Close()
}
