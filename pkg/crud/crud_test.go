package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/schema"
)

type stubService struct {
	mu        sync.Mutex
	items     []Record
	fetches   int
	creates   int
	deletes   []string
	failOn    map[string]error
	createErr error
	next      int
}

func (s *stubService) FetchItems(_ context.Context, q ListQuery) (ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	return Paginate(s.items, q), nil
}

func (s *stubService) CreateItem(_ context.Context, data Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.next++
	item := CloneRecord(data)
	item["id"] = fmt.Sprintf("n%d", s.next)
	s.items = append(s.items, item)
	return item, nil
}

func (s *stubService) UpdateItem(_ context.Context, id string, partial Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if RecordID(item) == id {
			for k, v := range partial {
				item[k] = v
			}
			return CloneRecord(item), nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubService) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, id)
	if err := s.failOn[id]; err != nil {
		return err
	}
	for i, item := range s.items {
		if RecordID(item) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func seeded(ids ...string) *stubService {
	svc := &stubService{failOn: map[string]error{}}
	for _, id := range ids {
		svc.items = append(svc.items, Record{"id": id, "name": "item " + id})
	}
	return svc
}

func TestListQueryURLRoundTrip(t *testing.T) {
	q := ListQuery{Search: "bus", Sort: "name", Dir: Desc, Page: 3, PageSize: 20}
	values := q.Values()
	if got := values.Encode(); got != "dir=desc&page=3&pageSize=20&search=bus&sort=name" {
		t.Fatalf("encoded query: %s", got)
	}
	if diff := cmp.Diff(q, ParseListQuery(values)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	parsed := ParseListQuery(url.Values{"page": {"x"}, "pageSize": {"-1"}})
	if diff := cmp.Diff(ListQuery{Dir: Asc}, parsed); diff != "" {
		t.Fatalf("malformed values should be ignored (-want +got):\n%s", diff)
	}
	if got := (ListQuery{Sort: "name", Page: 4}).Toggle("name"); got.Dir != Desc || got.Page != 1 {
		t.Fatalf("toggle should flip direction and reset page: %+v", got)
	}
}

func TestPaginateSearchSortAndPage(t *testing.T) {
	records := []Record{
		{"id": "1", "name": "Coach", "seats": float64(50)},
		{"id": "2", "name": "bus", "seats": float64(30)},
		{"id": "3", "name": "Minibus", "seats": nil},
		{"id": "4", "name": "Van", "seats": float64(8)},
	}
	result := Paginate(records, ListQuery{Search: "BUS", Sort: "name", Page: 1, PageSize: 10})
	var names []any
	for _, r := range result.Data {
		names = append(names, r["name"])
	}
	if diff := cmp.Diff([]any{"bus", "Minibus"}, names); diff != "" {
		t.Fatalf("search/sort mismatch (-want +got):\n%s", diff)
	}

	result = Paginate(records, ListQuery{Sort: "seats", Dir: Desc, Page: 2, PageSize: 2})
	if diff := cmp.Diff(Meta{Total: 4, TotalPages: 2, Page: 2, PageSize: 2}, result.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
	if result.Data[0]["id"] != "4" || result.Data[1]["id"] != "3" {
		t.Fatalf("nil values should sort last, got %v", result.Data)
	}
}

func TestDeleteInvalidatesList(t *testing.T) {
	svc := seeded("1", "2")
	ctrl := NewController("vehicles", svc)
	ctx := context.Background()

	first, err := ctrl.List(ctx, ListQuery{})
	if err != nil || len(first.Data) != 2 {
		t.Fatalf("list: %v %v", first, err)
	}
	if _, err := ctrl.List(ctx, ListQuery{}); err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if svc.fetches != 1 {
		t.Fatalf("second list should be cached, fetches=%d", svc.fetches)
	}

	out := ctrl.Delete(ctx, "1")
	if !out.OK || out.DialogOpen || out.Notice.Level != LevelSuccess {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if diff := cmp.Diff([]string{"1"}, svc.deletes); diff != "" {
		t.Fatalf("delete calls mismatch (-want +got):\n%s", diff)
	}

	after, err := ctrl.List(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(after.Data) != 1 || after.Data[0]["id"] != "2" {
		t.Fatalf("next read should reflect removal, got %v", after.Data)
	}
	if svc.fetches != 2 {
		t.Fatalf("expected refetch after invalidation, fetches=%d", svc.fetches)
	}
}

func TestFailureKeepsDialogOpen(t *testing.T) {
	svc := seeded()
	svc.createErr = errors.New("backend unavailable")
	ctrl := NewController("vehicles", svc)

	out := ctrl.Create(context.Background(), Record{"name": "x"})
	if out.OK || !out.DialogOpen || out.Notice.Level != LevelError {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if !strings.Contains(out.Notice.Message, "backend unavailable") {
		t.Fatalf("notice should carry the error: %q", out.Notice.Message)
	}
	if svc.creates != 1 {
		t.Fatalf("failed create must not be retried, creates=%d", svc.creates)
	}
}

func TestSaveNeverCallsServiceForInvalidForm(t *testing.T) {
	entity := schema.NewEntity("categories", schema.Field("name", schema.String().NonEmpty()))
	cfg, err := model.NewBuilder().Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	svc := seeded()
	ctrl := NewController("categories", svc)

	f := form.New(cfg, entity, nil)
	f.Decode(url.Values{"name": {""}})
	out := ctrl.Save(context.Background(), f, "")
	if out.OK || !out.DialogOpen || !errors.Is(out.Err, form.ErrInvalid) {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if svc.creates != 0 {
		t.Fatalf("create must not be invoked, creates=%d", svc.creates)
	}

	f.Decode(url.Values{"name": {"Transport"}})
	out = ctrl.Save(context.Background(), f, "")
	if !out.OK || out.Item["name"] != "Transport" || svc.creates != 1 {
		t.Fatalf("valid save failed: %+v", out)
	}
}

func TestBulkDeletePolicies(t *testing.T) {
	boom := errors.New("locked")

	svc := seeded("a", "b", "c", "d")
	svc.failOn["b"] = boom
	abort := NewController("x", svc).BulkDelete(context.Background(), []string{"a", "b", "c", "d"})
	if diff := cmp.Diff([]string{"a"}, abort.Deleted); diff != "" {
		t.Fatalf("abort deleted mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"c", "d"}, abort.Skipped); diff != "" {
		t.Fatalf("abort skipped mismatch (-want +got):\n%s", diff)
	}
	if len(abort.Failed) != 1 || !errors.Is(abort.Failed[0].Err, boom) {
		t.Fatalf("abort failures: %+v", abort.Failed)
	}

	svc = seeded("a", "b", "c", "d")
	svc.failOn["b"] = boom
	cont := NewController("x", svc, WithBulkPolicy(ContinueOnError)).BulkDelete(context.Background(), []string{"a", "b", "c", "d"})
	if diff := cmp.Diff([]string{"a", "c", "d"}, cont.Deleted); diff != "" {
		t.Fatalf("continue deleted mismatch (-want +got):\n%s", diff)
	}
	if len(cont.Skipped) != 0 || len(cont.Failed) != 1 || cont.OK() {
		t.Fatalf("continue result: %+v", cont)
	}
}

func TestParseBulkPolicy(t *testing.T) {
	if p, err := ParseBulkPolicy("continue"); err != nil || p != ContinueOnError {
		t.Fatalf("continue: %v %v", p, err)
	}
	if p, err := ParseBulkPolicy(""); err != nil || p != AbortOnFirstError {
		t.Fatalf("default: %v %v", p, err)
	}
	if _, err := ParseBulkPolicy("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestQueryCacheListeners(t *testing.T) {
	cache := NewQueryCache()
	var got []string
	cache.OnInvalidate(func(entity string) { got = append(got, entity) })
	cache.Put("tags", ListQuery{Page: 1}, ListResult{Data: []Record{{"id": "1"}}})
	if cache.Len("tags") != 1 {
		t.Fatalf("expected cached entry")
	}
	cache.Invalidate("tags")
	if cache.Len("tags") != 0 || !cmp.Equal([]string{"tags"}, got) {
		t.Fatalf("invalidate: len=%d listeners=%v", cache.Len("tags"), got)
	}
}

func TestRESTService(t *testing.T) {
	svc := seeded("1")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		id := strings.TrimPrefix(r.URL.Path, "/api/vehicles")
		id = strings.TrimPrefix(id, "/")
		switch {
		case r.Method == http.MethodGet && id == "":
			result, _ := svc.FetchItems(r.Context(), ParseListQuery(r.URL.Query()))
			_ = json.NewEncoder(w).Encode(result)
		case r.Method == http.MethodPost:
			var data Record
			_ = json.NewDecoder(r.Body).Decode(&data)
			item, _ := svc.CreateItem(r.Context(), data)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(item)
		case r.Method == http.MethodDelete:
			if err := svc.DeleteItem(r.Context(), id); err != nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPatch:
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"name is required","errors":{"name":["required"]}}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)

	client := NewRESTService(server.URL+"/api", "vehicles")
	ctx := context.Background()

	created, err := client.CreateItem(ctx, Record{"name": "Bus"})
	if err != nil || created["id"] != "n1" {
		t.Fatalf("create: %v %v", created, err)
	}
	list, err := client.FetchItems(ctx, ListQuery{Search: "bus", PageSize: 5})
	if err != nil || list.Meta.Total != 1 || list.Meta.PageSize != 5 {
		t.Fatalf("list: %+v %v", list, err)
	}
	if err := client.DeleteItem(ctx, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := client.DeleteItem(ctx, "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var statusErr *StatusError
	if _, err := client.UpdateItem(ctx, "n1", Record{}); !errors.As(err, &statusErr) || statusErr.Message != "name is required" {
		t.Fatalf("expected status error, got %v", err)
	}
	if diff := cmp.Diff(map[string][]string{"name": {"required"}}, statusErr.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
}
