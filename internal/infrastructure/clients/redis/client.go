// Package redis wraps the go-redis client used for the shared result cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/montrealcare/care-router/pkg/config"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// Client holds a verified Redis connection
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and pings within a bounded timeout, so a dead
// cache host fails fast at startup instead of on the first request.
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr(), err)
	}

	return &Client{rdb: rdb}, nil
}

// Client exposes the underlying go-redis client to adapters
func (c *Client) Client() *redis.Client {
	return c.rdb
}

// Ping checks the connection, used by health reporting
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
