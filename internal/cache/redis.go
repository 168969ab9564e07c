package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/api/internal/config"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

var ErrCacheMiss = errors.New("cache miss")

const catalogTTL = 5 * time.Minute

// Catalog caches rendered catalog responses (product and category listings).
// A nil client disables caching; every method becomes a no-op miss.
type Catalog struct {
	client *redis.Client
}

func NewCatalog(client *redis.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (c *Catalog) Set(ctx context.Context, key string, data []byte) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, data, catalogTTL).Err()
}

// Invalidate drops cached listings after an admin write. Keys are few and
// well known, so explicit deletes beat pattern scans.
func (c *Catalog) Invalidate(ctx context.Context, keys ...string) error {
	if c == nil || c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
