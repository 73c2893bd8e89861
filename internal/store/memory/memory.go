// Package memory is an in-process record store. Records live in insertion
// order per entity and are copied on the way in and out.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-admingen/pkg/crud"
)

type entry struct {
	record    crud.Record
	createdAt time.Time
}

// Store holds the records of every entity.
type Store struct {
	mu      sync.RWMutex
	records map[string][]entry
	search  map[string][]string
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects the clock used to stamp created records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSearchFields limits list searches on entity to fields. By default every
// string and number value is searched.
func WithSearchFields(entity string, fields ...string) Option {
	return func(s *Store) {
		s.search[entity] = append([]string(nil), fields...)
	}
}

// New constructs an empty Store.
func New(options ...Option) *Store {
	s := &Store{
		records: make(map[string][]entry),
		search:  make(map[string][]string),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// For returns the crud.Service of entity.
func (s *Store) For(entity string) *Collection {
	return &Collection{store: s, entity: entity}
}

// Seed inserts records as is. Records without an id receive one.
func (s *Store) Seed(entity string, records ...crud.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		item := crud.CloneRecord(record)
		if crud.RecordID(item) == "" {
			item["id"] = s.newID()
		}
		s.records[entity] = append(s.records[entity], entry{record: item, createdAt: s.now()})
	}
}

// Entities lists the entities holding at least one record.
func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.records))
	for name, entries := range s.records {
		if len(entries) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Collection is the per-entity view of a Store. It implements crud.Service
// and crud.ItemGetter.
type Collection struct {
	store  *Store
	entity string
}

var (
	_ crud.Service    = (*Collection)(nil)
	_ crud.ItemGetter = (*Collection)(nil)
)

// FetchItems searches, sorts and pages the records of the collection.
func (c *Collection) FetchItems(ctx context.Context, query crud.ListQuery) (crud.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return crud.ListResult{}, err
	}
	c.store.mu.RLock()
	entries := c.store.records[c.entity]
	records := make([]crud.Record, 0, len(entries))
	for _, e := range entries {
		records = append(records, e.record)
	}
	fields := c.store.search[c.entity]
	result := crud.Paginate(records, query, fields...)
	c.store.mu.RUnlock()
	return result, nil
}

// GetItem returns a copy of record id.
func (c *Collection) GetItem(ctx context.Context, id string) (crud.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, crud.ErrInvalidID
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if idx := c.index(id); idx >= 0 {
		return crud.CloneRecord(c.store.records[c.entity][idx].record), nil
	}
	return nil, crud.ErrNotFound
}

// CreateItem stores data under a fresh id. A caller-supplied id is kept
// when it is not taken yet.
func (c *Collection) CreateItem(ctx context.Context, data crud.Record) (crud.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	item := crud.CompactRecord(crud.CloneRecord(data))
	if item == nil {
		item = crud.Record{}
	}
	if id := crud.RecordID(item); id == "" || c.index(id) >= 0 {
		item["id"] = c.store.newID()
	}
	c.store.records[c.entity] = append(c.store.records[c.entity], entry{record: item, createdAt: c.store.now()})
	return crud.CloneRecord(item), nil
}

// UpdateItem merges partial into record id. Nil values unset their key and
// the id never changes.
func (c *Collection) UpdateItem(ctx context.Context, id string, partial crud.Record) (crud.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, crud.ErrInvalidID
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	idx := c.index(id)
	if idx < 0 {
		return nil, crud.ErrNotFound
	}
	item := crud.CloneRecord(c.store.records[c.entity][idx].record)
	crud.MergeRecord(item, partial)
	c.store.records[c.entity][idx].record = item
	return crud.CloneRecord(item), nil
}

// DeleteItem removes record id.
func (c *Collection) DeleteItem(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return crud.ErrInvalidID
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	idx := c.index(id)
	if idx < 0 {
		return crud.ErrNotFound
	}
	entries := c.store.records[c.entity]
	c.store.records[c.entity] = append(entries[:idx:idx], entries[idx+1:]...)
	return nil
}

// CreatedAt reports when record id was stored.
func (c *Collection) CreatedAt(id string) (time.Time, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if idx := c.index(id); idx >= 0 {
		return c.store.records[c.entity][idx].createdAt, true
	}
	return time.Time{}, false
}

// index must be called with the lock held.
func (c *Collection) index(id string) int {
	for i, e := range c.store.records[c.entity] {
		if crud.RecordID(e.record) == id {
			return i
		}
	}
	return -1
}
