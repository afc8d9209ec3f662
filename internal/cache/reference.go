// Package cache provides the read-through cache for reference data
// (color keys and TCG themes), which is read on every map render and
// changes rarely.
package cache

import (
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/localnerve/mapsdb/internal/metrics"
)

// entryTTL bounds how long a list can outlive a write made by another process
const entryTTL = 10 * time.Minute

// ReferenceCache caches whole reference lists by key. A nil
// *ReferenceCache is valid and caches nothing.
//
// Every Invalidate bumps a generation. Readers take the generation before
// loading from the database and hand it back to Set, which drops the value
// if a write invalidated the cache in between.
type ReferenceCache struct {
	cache *ristretto.Cache

	mu  sync.Mutex
	gen uint64
}

// NewReferenceCache creates a small cache; reference lists are a few dozen rows
func NewReferenceCache() (*ReferenceCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,     // number of keys to track frequency of
		MaxCost:     1 << 24, // 16MB
		BufferItems: 64,      // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}
	return &ReferenceCache{cache: c}, nil
}

// Get returns the cached value for key
func (r *ReferenceCache) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r.cache.Get(key)
	if ok {
		metrics.ReferenceCache.WithLabelValues("hit").Inc()
	} else {
		metrics.ReferenceCache.WithLabelValues("miss").Inc()
	}
	return v, ok
}

// Generation returns the current invalidation generation
func (r *ReferenceCache) Generation() uint64 {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Set stores value under key if no Invalidate happened since gen was read,
// and waits until it is visible to Get. It reports whether the value was stored.
func (r *ReferenceCache) Set(key string, value any, cost int64, gen uint64) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return false
	}
	stored := r.cache.SetWithTTL(key, value, cost, entryTTL)
	r.cache.Wait()
	return stored
}

// Invalidate drops every cached entry. Called after any reference data write.
func (r *ReferenceCache) Invalidate() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.cache.Wait()
	r.cache.Clear()
}

// Close stops the cache's background goroutines
func (r *ReferenceCache) Close() {
	if r == nil {
		return
	}
	r.cache.Close()
}
