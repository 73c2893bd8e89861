package relations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/relation"
)

type handlerResponse struct {
	Data []relation.Candidate `json:"data"`
}

var categories = relation.FetcherFunc(func(_ context.Context, entity string) ([]map[string]any, error) {
	switch entity {
	case "categories":
		return []map[string]any{
			{"id": "5", "name": "Transport"},
			{"id": "6", "name": "Logistique"},
			{"id": "7", "name": "Location de transport", "code": "LOC"},
			{"name": "sans id"},
		}, nil
	case "broken":
		return nil, errors.New("upstream down")
	default:
		return nil, StatusError{Code: http.StatusNotFound}
	}
})

func serve(t *testing.T, h http.Handler, method, target string) (*http.Response, handlerResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()

	var payload handlerResponse
	if res.StatusCode == http.StatusOK && method == http.MethodGet {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return res, payload
}

func TestHandlerEmptyQueryReturnsTop(t *testing.T) {
	h := Handler(WithFetcher(categories))

	res, payload := serve(t, h, http.MethodGet, "/relations/categories")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	want := []relation.Candidate{
		{Value: "5", Label: "Transport"},
		{Value: "6", Label: "Logistique"},
		{Value: "7", Label: "Location de transport"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}
}

func TestHandlerSearchRanksPrefixFirst(t *testing.T) {
	h := Handler(WithFetcher(categories), WithMaxLimit(2))

	_, payload := serve(t, h, http.MethodGet, "/relations/categories?q=transport&limit=10")
	want := []relation.Candidate{
		{Value: "5", Label: "Transport"},
		{Value: "7", Label: "Location de transport"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	_, payload = serve(t, h, http.MethodGet, "/relations/categories?q=transport&limit=1")
	if len(payload.Data) != 1 {
		t.Fatalf("expected limit 1 to apply, got %d", len(payload.Data))
	}
}

func TestHandlerEmptySearchNone(t *testing.T) {
	h := Handler(WithFetcher(categories), WithEmptySearchMode(EmptySearchNone))

	_, payload := serve(t, h, http.MethodGet, "/relations/categories")
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandlerResolverAndDisplayField(t *testing.T) {
	h := Handler(WithFetcher(categories), WithResolver(func(entity string) (string, bool) {
		return "code", entity == "categories"
	}))

	_, payload := serve(t, h, http.MethodGet, "/relations/categories?q=loc")
	want := []relation.Candidate{{Value: "7", Label: "LOC"}}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("candidates mismatch (-want +got):\n%s", diff)
	}

	res, _ := serve(t, h, http.MethodGet, "/relations/users")
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unresolved entity, got %d", res.StatusCode)
	}
}

func TestHandlerErrors(t *testing.T) {
	h := Handler(WithFetcher(categories))

	if res, _ := serve(t, h, http.MethodGet, "/relations/broken"); res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 for fetch failure, got %d", res.StatusCode)
	}
	if res, _ := serve(t, h, http.MethodGet, "/relations/unknown"); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status from StatusError, got %d", res.StatusCode)
	}
	res, _ := serve(t, h, http.MethodPost, "/relations/categories")
	if res.StatusCode != http.StatusMethodNotAllowed || res.Header.Get("Allow") == "" {
		t.Fatalf("expected 405 with Allow, got %d", res.StatusCode)
	}
	if res, _ := serve(t, Handler(), http.MethodGet, "/relations/categories"); res.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without fetcher, got %d", res.StatusCode)
	}
}

func TestHandlerGuardAndHead(t *testing.T) {
	guarded := Handler(WithFetcher(categories), WithGuard(func(r *http.Request) error {
		if r.Header.Get("X-Admin") == "" {
			return StatusError{Code: http.StatusUnauthorized}
		}
		return nil
	}))
	if res, _ := serve(t, guarded, http.MethodGet, "/relations/categories"); res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected guard status 401, got %d", res.StatusCode)
	}

	res, _ := serve(t, Handler(WithFetcher(categories)), http.MethodHead, "/relations/categories")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected HEAD 200, got %d", res.StatusCode)
	}
}
