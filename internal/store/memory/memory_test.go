package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-admingen/pkg/crud"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	store := New(WithIDGenerator(sequentialIDs()), WithClock(func() time.Time { return clock }))
	vehicles := store.For("vehicles")

	created, err := vehicles.CreateItem(ctx, crud.Record{"name": "Bus", "seats": 40.0})
	require.NoError(t, err)
	assert.Equal(t, "id-1", created["id"])

	stamped, ok := vehicles.CreatedAt("id-1")
	require.True(t, ok)
	assert.Equal(t, clock, stamped)

	created["name"] = "mutated"
	got, err := vehicles.GetItem(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, "Bus", got["name"], "stored record must not alias the returned one")

	updated, err := vehicles.UpdateItem(ctx, "id-1", crud.Record{"name": "Car", "id": "hijack"})
	require.NoError(t, err)
	assert.Equal(t, crud.Record{"id": "id-1", "name": "Car", "seats": 40.0}, updated)

	require.NoError(t, vehicles.DeleteItem(ctx, "id-1"))
	_, err = vehicles.GetItem(ctx, "id-1")
	assert.ErrorIs(t, err, crud.ErrNotFound)
	assert.ErrorIs(t, vehicles.DeleteItem(ctx, "id-1"), crud.ErrNotFound)
	_, err = vehicles.UpdateItem(ctx, "missing", crud.Record{})
	assert.ErrorIs(t, err, crud.ErrNotFound)
	_, err = vehicles.GetItem(ctx, "")
	assert.ErrorIs(t, err, crud.ErrInvalidID)
}

func TestCreateKeepsFreeCallerID(t *testing.T) {
	ctx := context.Background()
	store := New(WithIDGenerator(sequentialIDs()))
	tags := store.For("tags")

	first, err := tags.CreateItem(ctx, crud.Record{"id": "t1", "label": "a"})
	require.NoError(t, err)
	assert.Equal(t, "t1", first["id"])

	second, err := tags.CreateItem(ctx, crud.Record{"id": "t1", "label": "b"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", second["id"], "taken ids are replaced")
}

func TestFetchItemsSearchSortPage(t *testing.T) {
	ctx := context.Background()
	store := New(WithSearchFields("vehicles", "name"))
	store.Seed("vehicles",
		crud.Record{"id": "1", "name": "Bus", "plate": "zz"},
		crud.Record{"id": "2", "name": "Van", "plate": "bus-plate"},
		crud.Record{"id": "3", "name": "Minibus"},
	)
	vehicles := store.For("vehicles")

	result, err := vehicles.FetchItems(ctx, crud.ListQuery{Search: "bus", Sort: "name", Dir: crud.Desc, Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "3", result.Data[0]["id"])
	assert.Equal(t, 2, result.Meta.Total)

	page, err := vehicles.FetchItems(ctx, crud.ListQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.Meta.TotalPages)

	assert.Equal(t, []string{"vehicles"}, store.Entities())
}

func TestCollectionHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().For("x").FetchItems(ctx, crud.ListQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilValuesUnsetKeys(t *testing.T) {
	ctx := context.Background()
	vehicles := New(WithIDGenerator(sequentialIDs())).For("vehicles")

	created, err := vehicles.CreateItem(ctx, crud.Record{"name": "Bus", "seats": 40.0, "notes": nil})
	require.NoError(t, err)
	assert.Equal(t, crud.Record{"id": "id-1", "name": "Bus", "seats": 40.0}, created)

	updated, err := vehicles.UpdateItem(ctx, "id-1", crud.Record{"seats": nil})
	require.NoError(t, err)
	assert.Equal(t, crud.Record{"id": "id-1", "name": "Bus"}, updated)
}
