package solar

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     any
	createdAt time.Time
}

// ttlCache is a small bounded map cache. When full, the oldest entry
// is evicted.
type ttlCache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	lifetime time.Duration
	maxSize  int
	now      func() time.Time
}

func newTtlCache(lifetime time.Duration, maxSize int) *ttlCache {
	return &ttlCache{
		entries:  map[string]cacheEntry{},
		lifetime: lifetime,
		maxSize:  maxSize,
		now:      time.Now,
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) > c.lifetime {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		delete(c.entries, oldestKey)
	}

	c.entries[key] = cacheEntry{value: value, createdAt: c.now()}
}
