// Package store selects the record store backing the registered entities.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-admingen/internal/store/memory"
	"github.com/goliatone/go-admingen/internal/store/sqlite"
	"github.com/goliatone/go-admingen/pkg/crud"
)

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("store: unknown driver")

// Provider hands out one crud.Service per entity.
type Provider interface {
	For(entity string) crud.Service
	Close() error
}

// Open constructs the provider named by driver. dsn is ignored by the memory
// driver.
func Open(driver, dsn string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return memoryProvider{memory.New()}, nil
	case DriverSQLite:
		db, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return sqliteProvider{db}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

type memoryProvider struct{ *memory.Store }

func (p memoryProvider) For(entity string) crud.Service { return p.Store.For(entity) }

func (memoryProvider) Close() error { return nil }

type sqliteProvider struct{ *sqlite.Store }

func (p sqliteProvider) For(entity string) crud.Service { return p.Store.For(entity) }
