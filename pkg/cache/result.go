package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ResultCache stores serialized optimization results keyed by the
// network/algorithm/settings fingerprint. The stored form is opaque JSON;
// the engine owns the concrete result type.
type ResultCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// NewResultCache wraps a Cache for result storage.
func NewResultCache(cache Cache, defaultTTL time.Duration) *ResultCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &ResultCache{cache: cache, defaultTTL: defaultTTL}
}

// Get fetches a cached result into out. The bool reports a hit. A corrupt
// entry is deleted and treated as a miss.
func (rc *ResultCache) Get(ctx context.Context, key string, out any) (bool, error) {
	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		_ = rc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return false, nil
	}
	return true, nil
}

// Set stores a result under the key with the default TTL.
func (rc *ResultCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rc.cache.Set(ctx, key, data, rc.defaultTTL)
}

// Close releases the underlying cache.
func (rc *ResultCache) Close() error {
	return rc.cache.Close()
}
