package enrich

import (
	"sync"
	"sync/atomic"

	"github.com/sells-group/loadmatch/internal/model"
)

// Cache stores at most one enrichment per lane key. Entries live until they
// are explicitly invalidated.
type Cache interface {
	Get(key string) (model.EnrichedData, bool)
	Put(key string, data model.EnrichedData)
	Invalidate(key string) bool
}

// MemoryCache is a concurrent-safe in-process Cache. Writers to the same key
// are serialized and the last write wins; readers always receive a complete
// copy of an entry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]model.EnrichedData
	hits    atomic.Int64
	misses  atomic.Int64
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]model.EnrichedData)}
}

// Get returns a copy of the entry for key.
func (c *MemoryCache) Get(key string) (model.EnrichedData, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return model.EnrichedData{}, false
	}
	c.hits.Add(1)
	return entry.Clone(), true
}

// Put stores a copy of data under key, replacing any previous entry.
func (c *MemoryCache) Put(key string, data model.EnrichedData) {
	data = data.Clone()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

// Invalidate removes key and reports whether it was present.
func (c *MemoryCache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Reset removes every entry.
func (c *MemoryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]model.EnrichedData)
}

// Stats returns cache performance statistics.
func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return CacheStats{
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}
