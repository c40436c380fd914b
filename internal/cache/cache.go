package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Cache stores JSON-encoded values under namespace:key.
type Cache interface {
	Get(ctx context.Context, namespace, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, namespace string, keys ...string) error
}

type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(addr, password string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})}
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, namespace, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, namespace+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "cache get")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrap(err, "cache decode")
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, namespace, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "cache encode")
	}
	return errors.Wrap(c.client.Set(ctx, namespace+":"+key, raw, ttl).Err(), "cache set")
}

func (c *RedisCache) Delete(ctx context.Context, namespace string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, namespace+":"+k)
	}
	return errors.Wrap(c.client.Del(ctx, full...).Err(), "cache delete")
}

// Noop is used when no Redis address is configured; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string, string, interface{}) (bool, error) { return false, nil }

func (Noop) Set(context.Context, string, string, interface{}, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string, ...string) error { return nil }
