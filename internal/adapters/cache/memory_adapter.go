package cache

import (
	"context"
	"sync"
	"time"

	"github.com/montrealcare/care-router/internal/domain/providers"
)

// MemoryAdapter implements CacheProvider with an in-process map and lazy TTL
// expiry. Entries past their deadline are treated as absent on read; no
// background sweep runs. Used when Redis is not configured, and in tests.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAdapter creates a new in-memory cache adapter
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get retrieves a value from cache, honoring lazy expiry
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok || a.now().After(entry.expiresAt) {
		return nil, providers.ErrCacheMiss
	}

	// Callers get their own copy so a later Set cannot alias into it.
	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value under key, overwriting any prior entry
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	a.mu.Lock()
	a.entries[key] = memoryEntry{
		value:     stored,
		expiresAt: a.now().Add(time.Duration(expirationSeconds) * time.Second),
	}
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

// Exists checks if a non-expired entry exists for key
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()
	return ok && !a.now().After(entry.expiresAt), nil
}
