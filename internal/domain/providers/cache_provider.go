package providers

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Get when a key is absent or expired
var ErrCacheMiss = errors.New("cache: key not found")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache; returns ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in cache
	Exists(ctx context.Context, key string) (bool, error)
}
