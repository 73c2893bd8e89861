// Package sqlite stores records as JSON documents in a single SQLite table
// through the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-admingen/pkg/crud"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// createdLayout sorts lexically in time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

const createTableSQL = `CREATE TABLE IF NOT EXISTS records (
	entity     TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (entity, id)
)`

// Store is a SQLite-backed record store.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	newID  func() string
	search map[string][]string
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

// WithSearchFields limits list searches on entity to fields.
func WithSearchFields(entity string, fields ...string) Option {
	return func(s *Store) {
		s.search[entity] = append([]string(nil), fields...)
	}
}

// Open opens (or creates) the database at dsn and ensures the schema exists.
// An empty dsn opens a private in-memory database.
func Open(dsn string, options ...Option) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if dsn == MemoryDSN {
		// Every pooled connection would otherwise see its own database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create table: %w", err)
	}
	s := &Store{
		db:     db,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
		search: make(map[string][]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// For returns the crud.Service of entity.
func (s *Store) For(entity string) *Collection {
	return &Collection{store: s, entity: entity}
}

// Entities lists the entities holding at least one record.
func (s *Store) Entities(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT entity FROM records ORDER BY entity`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list entities: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scan entity: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
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

// FetchItems loads the entity's records in creation order and applies the
// shared search, sort and paging rules.
func (c *Collection) FetchItems(ctx context.Context, query crud.ListQuery) (crud.ListResult, error) {
	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, data FROM records WHERE entity = ? ORDER BY created_at, rowid`, c.entity)
	if err != nil {
		return crud.ListResult{}, fmt.Errorf("sqlite: list %s: %w", c.entity, err)
	}
	defer rows.Close()

	var records []crud.Record
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return crud.ListResult{}, fmt.Errorf("sqlite: scan %s: %w", c.entity, err)
		}
		record, err := decode(id, data)
		if err != nil {
			return crud.ListResult{}, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return crud.ListResult{}, fmt.Errorf("sqlite: list %s: %w", c.entity, err)
	}
	return crud.Paginate(records, query, c.store.search[c.entity]...), nil
}

// GetItem loads record id.
func (c *Collection) GetItem(ctx context.Context, id string) (crud.Record, error) {
	if id == "" {
		return nil, crud.ErrInvalidID
	}
	var data string
	err := c.store.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, c.entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get %s/%s: %w", c.entity, id, err)
	}
	return decode(id, data)
}

// CreateItem inserts data under a fresh id. A caller-supplied id is kept
// when it is not taken yet.
func (c *Collection) CreateItem(ctx context.Context, data crud.Record) (crud.Record, error) {
	item := crud.CompactRecord(crud.CloneRecord(data))
	if item == nil {
		item = crud.Record{}
	}
	id := crud.RecordID(item)
	if id != "" {
		if _, err := c.GetItem(ctx, id); err == nil {
			id = ""
		}
	}
	if id == "" {
		id = c.store.newID()
	}
	item["id"] = id

	payload, err := encode(item)
	if err != nil {
		return nil, err
	}
	created := c.store.now().UTC().Format(createdLayout)
	if _, err := c.store.db.ExecContext(ctx,
		`INSERT INTO records (entity, id, data, created_at) VALUES (?, ?, ?, ?)`,
		c.entity, id, payload, created,
	); err != nil {
		return nil, fmt.Errorf("sqlite: create %s: %w", c.entity, err)
	}
	return item, nil
}

// UpdateItem merges partial into record id inside a transaction. Nil values
// unset their key.
func (c *Collection) UpdateItem(ctx context.Context, id string, partial crud.Record) (crud.Record, error) {
	if id == "" {
		return nil, crud.ErrInvalidID
	}
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var data string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM records WHERE entity = ? AND id = ?`, c.entity, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, crud.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load %s/%s: %w", c.entity, id, err)
	}
	item, err := decode(id, data)
	if err != nil {
		return nil, err
	}
	crud.MergeRecord(item, partial)
	payload, err := encode(item)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ? WHERE entity = ? AND id = ?`, payload, c.entity, id,
	); err != nil {
		return nil, fmt.Errorf("sqlite: update %s/%s: %w", c.entity, id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: commit update: %w", err)
	}
	return item, nil
}

// DeleteItem removes record id.
func (c *Collection) DeleteItem(ctx context.Context, id string) error {
	if id == "" {
		return crud.ErrInvalidID
	}
	res, err := c.store.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity = ? AND id = ?`, c.entity, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%s: %w", c.entity, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return crud.ErrNotFound
	}
	return nil
}

func encode(item crud.Record) (string, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode record: %w", err)
	}
	return string(payload), nil
}

func decode(id, data string) (crud.Record, error) {
	var record crud.Record
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("sqlite: decode record %s: %w", id, err)
	}
	if record == nil {
		record = crud.Record{}
	}
	record["id"] = id
	return record, nil
}
