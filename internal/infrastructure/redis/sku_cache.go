package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const skuCachePrefix = "pos:"

// SKUCache caché compartida de resolución de SKUs entre réplicas.
type SKUCache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewSKUCache ttl <= 0 no expira.
func NewSKUCache(client *goredis.Client, ttl time.Duration) *SKUCache {
	if ttl < 0 {
		ttl = 0
	}
	return &SKUCache{client: client, ttl: ttl}
}

func (c *SKUCache) Get(ctx context.Context, key string) (string, bool, error) {
	id, err := c.client.Get(ctx, skuCachePrefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (c *SKUCache) Set(ctx context.Context, key, id string) error {
	return c.client.Set(ctx, skuCachePrefix+key, id, c.ttl).Err()
}

func (c *SKUCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = skuCachePrefix + k
	}
	return c.client.Del(ctx, full...).Err()
}
