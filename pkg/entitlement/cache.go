package entitlement

import (
	"context"
	"sync"
	"time"
)

// Entry is a cached resolution for one tenant: the plan identity and the
// limits copied from it, stamped with the resolution time. Permission flags
// are never cached; they are recomputed against fresh usage on every call.
type Entry struct {
	PlanID     string
	PlanName   string
	Limits     Limits
	ResolvedAt time.Time
}

// Cache stores at most one Entry per tenant key. Implementations must treat
// entries older than the TTL passed to Set as absent.
type Cache interface {
	// Get returns the entry for key if present and fresh.
	Get(ctx context.Context, key string) (*Entry, bool)

	// Set stores the entry for key with the given freshness window.
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration)

	// Delete removes the entry for key, forcing the next resolution to
	// hit persistence. Used after plan changes.
	Delete(ctx context.Context, key string)
}

type cacheItem struct {
	entry     *Entry
	expiresAt time.Time
}

// memoryCache is the default in-process cache. One entry per tenant, TTL
// expiry only; this is a session convenience cache, not a shared
// high-volume one, so no further eviction policy is needed.
type memoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheItem
}

// NewMemoryCache creates an in-process cache. A cleanup goroutine drops
// expired entries once a minute and stops when ctx is cancelled.
func NewMemoryCache(ctx context.Context) Cache {
	c := &memoryCache{items: make(map[string]cacheItem)}
	go c.cleanup(ctx)
	return c
}

func (c *memoryCache) Get(_ context.Context, key string) (*Entry, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have raced in.
		if cur, ok := c.items[key]; ok && time.Now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return item.entry, true
}

func (c *memoryCache) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = cacheItem{entry: entry, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *memoryCache) cleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// noopCache disables caching entirely. Every resolution hits persistence.
type noopCache struct{}

// NewNoopCache returns a cache that never stores anything. Useful in tests
// and for callers that want every resolution to be fresh.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Entry, bool)         { return nil, false }
func (noopCache) Set(context.Context, string, *Entry, time.Duration) {}
func (noopCache) Delete(context.Context, string)                     {}
