package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/montrealcare/care-router/internal/domain/providers"
	redisclient "github.com/montrealcare/care-router/internal/infrastructure/clients/redis"
	"github.com/redis/go-redis/v9"
)

// RedisAdapter backs the result cache with a shared Redis instance so
// replicas serve each other's cached recommendations.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a CacheProvider over an established Redis client
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := a.client.Client().Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, providers.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("cache get %q: %w", key, err)
	}
	return data, nil
}

func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	ttl := time.Duration(expirationSeconds) * time.Second
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache delete %q: %w", key, err)
	}
	return nil
}

func (a *RedisAdapter) Exists(ctx context.Context, key string) (bool, error) {
	n, err := a.client.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists %q: %w", key, err)
	}
	return n > 0, nil
}
