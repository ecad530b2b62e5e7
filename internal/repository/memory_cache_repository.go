package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

// MemoryCacheRepository mirrors CacheRepository on an in-process go-cache
// store. Values are kept JSON encoded so callers observe the same decoding
// behaviour as with Redis.
type MemoryCacheRepository struct {
	store *gocache.Cache
}

// NewMemoryCacheRepository wraps an existing go-cache store.
func NewMemoryCacheRepository(store *gocache.Cache) *MemoryCacheRepository {
	return &MemoryCacheRepository{store: store}
}

// Get decodes the cached payload into dest or returns ErrCacheMiss.
func (r *MemoryCacheRepository) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := r.store.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	payload, ok := raw.([]byte)
	if !ok {
		return fmt.Errorf("cache value for %s has type %T", key, raw)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value for ttl.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	r.store.Set(key, payload, ttl)
	return nil
}

// DeleteByPattern removes keys matching a Redis style glob (`*`, `?`, `[...]`).
// A literal prefix followed by a single trailing `*` matches by prefix, so
// keys containing `/` are covered the way Redis MATCH covers them.
func (r *MemoryCacheRepository) DeleteByPattern(_ context.Context, pattern string) error {
	match := func(key string) (bool, error) { return path.Match(pattern, key) }
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.ContainsAny(prefix, `*?[\`) {
		match = func(key string) (bool, error) { return strings.HasPrefix(key, prefix), nil }
	}

	for key := range r.store.Items() {
		matched, err := match(key)
		if err != nil {
			return fmt.Errorf("match cache pattern %s: %w", pattern, err)
		}
		if matched {
			r.store.Delete(key)
		}
	}
	return nil
}
