// Package cache provides the optimization result cache: a small cache
// interface with in-memory and Redis-backed implementations, plus the
// network/settings hasher that builds cache keys.
package cache

import (
	"context"
	"errors"
	"time"
)

// Backend types for cache implementations.
const (
	// BackendMemory specifies an in-memory cache backend.
	BackendMemory = "memory"
	// BackendRedis specifies a Redis cache backend.
	BackendRedis = "redis"
)

// Standard errors returned by cache operations.
var (
	// ErrKeyNotFound is returned when a requested key does not exist in the cache.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCacheClosed is returned when an operation is attempted on a closed cache.
	ErrCacheClosed = errors.New("cache is closed")
)

// Cache defines the operations shared by the cache implementations.
type Cache interface {
	// Get retrieves the value associated with the given key.
	// Returns ErrKeyNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value for the given key with a time-to-live.
	// An existing key has its value and TTL replaced.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists checks whether the key is present.
	Exists(ctx context.Context, key string) (bool, error)
	// Stats returns cache statistics.
	Stats(ctx context.Context) (*Stats, error)
	// Clear removes all keys.
	Clear(ctx context.Context) error
	// Close releases underlying resources.
	Close() error
}

// Stats holds cache statistics.
type Stats struct {
	TotalKeys int64   // keys currently stored
	Hits      int64   // successful lookups
	Misses    int64   // failed lookups
	HitRate   float64 // hits / (hits + misses)
	Backend   string  // "memory" or "redis"
}
