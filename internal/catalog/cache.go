package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache holds one index per role with a TTL. Roles see different prices and
// points, so entries are never shared across roles. Readers always observe a
// fully built index; refresh swaps the whole entry under the lock.
type Cache struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time

	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	index     *Index
	expiresAt time.Time
}

func NewCache(client *Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		client:  client,
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]cacheEntry{},
	}
}

// WithClock overrides the cache clock. Tests drive expiry deterministically
// through this.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the index for a role, fetching on miss or expiry. Concurrent
// cold gets for the same role share one fetch. Expired entries are never
// served; a failed refresh fails the call.
func (c *Cache) Get(ctx context.Context, role string) (*Index, error) {
	if idx, ok := c.fresh(role); ok {
		return idx, nil
	}

	v, err, _ := c.group.Do(role, func() (any, error) {
		if idx, ok := c.fresh(role); ok {
			return idx, nil
		}
		items, err := c.client.FetchItems(ctx, role)
		if err != nil {
			return nil, err
		}
		idx := BuildIndex(items)
		c.mu.Lock()
		c.entries[role] = cacheEntry{index: idx, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return idx, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Index), nil
}

func (c *Cache) fresh(role string) (*Index, bool) {
	c.mu.RLock()
	entry, ok := c.entries[role]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.index, true
	}
	return nil, false
}

// Clear drops every role's entry immediately.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = map[string]cacheEntry{}
	c.mu.Unlock()
}
