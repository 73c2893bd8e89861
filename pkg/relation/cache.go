package relation

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the cache lifetime applied when none is configured.
const DefaultTTL = 30 * time.Second

type cacheEntry struct {
	records []map[string]any
	expires time.Time
}

// CachedFetcher memoizes another Fetcher per entity for a short interval.
// Concurrent misses for the same entity share one upstream call. Errors are
// never cached.
type CachedFetcher struct {
	next  Fetcher
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// CacheOption configures a CachedFetcher.
type CacheOption func(*CachedFetcher)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedFetcher) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock injects the time source, mostly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedFetcher) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCachedFetcher wraps next.
func NewCachedFetcher(next Fetcher, options ...CacheOption) *CachedFetcher {
	c := &CachedFetcher{
		next:    next,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Fetch implements Fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, entity string) ([]map[string]any, error) {
	c.mu.RLock()
	entry, ok := c.entries[entity]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expires) {
		return entry.records, nil
	}

	value, err, _ := c.group.Do(entity, func() (any, error) {
		records, err := c.next.Fetch(ctx, entity)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[entity] = cacheEntry{records: records, expires: c.now().Add(c.ttl)}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	records, _ := value.([]map[string]any)
	return records, nil
}

// Invalidate drops the cached candidates for entity. Call it after the
// related entity is mutated.
func (c *CachedFetcher) Invalidate(entity string) {
	c.mu.Lock()
	delete(c.entries, entity)
	c.mu.Unlock()
}
