package crud

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when an id does not resolve to a record.
	ErrNotFound = errors.New("crud: item not found")
	// ErrInvalidID is returned for empty ids.
	ErrInvalidID = errors.New("crud: item id is required")
)

// Record is an entity instance. Its identity is the "id" key.
type Record = map[string]any

// Meta describes the page returned by FetchItems.
type Meta struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
}

// ListResult is one page of records.
type ListResult struct {
	Data []Record `json:"data"`
	Meta Meta     `json:"meta"`
}

// Service is the CRUD collaborator for one entity. Transport is up to the
// implementation.
type Service interface {
	FetchItems(ctx context.Context, query ListQuery) (ListResult, error)
	CreateItem(ctx context.Context, data Record) (Record, error)
	UpdateItem(ctx context.Context, id string, partial Record) (Record, error)
	DeleteItem(ctx context.Context, id string) error
}

// ItemGetter is implemented by services that can load a single record.
type ItemGetter interface {
	GetItem(ctx context.Context, id string) (Record, error)
}

// GetItem loads id through svc. Services without ItemGetter are scanned page
// by page.
func GetItem(ctx context.Context, svc Service, id string) (Record, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if getter, ok := svc.(ItemGetter); ok {
		return getter.GetItem(ctx, id)
	}
	query := ListQuery{Page: 1, PageSize: 100}
	for {
		result, err := svc.FetchItems(ctx, query)
		if err != nil {
			return nil, err
		}
		for _, record := range result.Data {
			if RecordID(record) == id {
				return record, nil
			}
		}
		if query.Page >= result.Meta.TotalPages || len(result.Data) == 0 {
			return nil, ErrNotFound
		}
		query.Page++
	}
}
