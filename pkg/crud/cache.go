package crud

import "sync"

// QueryCache holds list results per entity and query. Invalidation drops
// every cached query of an entity and notifies subscribers.
type QueryCache struct {
	mu        sync.RWMutex
	entries   map[string]map[string]ListResult
	listeners []func(entity string)
}

// NewQueryCache constructs an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]map[string]ListResult)}
}

// Get returns the cached result for query.
func (c *QueryCache) Get(entity string, query ListQuery) (ListResult, bool) {
	if c == nil {
		return ListResult{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[entity][query.Key()]
	if !ok {
		return ListResult{}, false
	}
	return copyResult(result), true
}

// Put stores result for query.
func (c *QueryCache) Put(entity string, query ListQuery, result ListResult) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.entries[entity]
	if !ok {
		bucket = make(map[string]ListResult)
		c.entries[entity] = bucket
	}
	bucket[query.Key()] = copyResult(result)
}

// Invalidate drops the cached queries of entity.
func (c *QueryCache) Invalidate(entity string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.entries, entity)
	listeners := append([]func(string){}, c.listeners...)
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(entity)
	}
}

// OnInvalidate registers fn to run after each invalidation.
func (c *QueryCache) OnInvalidate(fn func(entity string)) {
	if c == nil || fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Len reports the number of cached queries for entity.
func (c *QueryCache) Len(entity string) int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[entity])
}

func copyResult(in ListResult) ListResult {
	out := ListResult{Meta: in.Meta, Data: make([]Record, len(in.Data))}
	for i, record := range in.Data {
		out.Data[i] = cloneRecord(record)
	}
	return out
}
