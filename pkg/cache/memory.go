package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NewMemory returns the in-process store used when Redis is disabled.
// Expired entries are purged every two TTLs.
func NewMemory(ttl time.Duration) *gocache.Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return gocache.New(ttl, 2*ttl)
}
