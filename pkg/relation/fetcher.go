package relation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Fetcher returns the candidate records for an entity.
type Fetcher interface {
	Fetch(ctx context.Context, entity string) ([]map[string]any, error)
}

// FetcherFunc adapts a function into a Fetcher.
type FetcherFunc func(ctx context.Context, entity string) ([]map[string]any, error)

// Fetch calls the underlying function.
func (fn FetcherFunc) Fetch(ctx context.Context, entity string) ([]map[string]any, error) {
	return fn(ctx, entity)
}

var errEmptyEntity = errors.New("relation: entity name is required")

// HTTPFetcher retrieves candidates from {BaseURL}/{entity}. The response may
// be a bare array or an envelope under ResultsPath (defaults to "data", then
// "items", then "results").
type HTTPFetcher struct {
	BaseURL     string
	Client      *http.Client
	ResultsPath string
	Query       url.Values
}

// NewHTTPFetcher constructs an HTTPFetcher with the default client.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{BaseURL: strings.TrimRight(baseURL, "/"), Client: http.DefaultClient}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, entity string) ([]map[string]any, error) {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil, errEmptyEntity
	}
	reqURL, err := url.Parse(strings.TrimRight(f.BaseURL, "/") + "/" + url.PathEscape(entity))
	if err != nil {
		return nil, fmt.Errorf("relation: parse url: %w", err)
	}
	if len(f.Query) > 0 {
		q := reqURL.Query()
		for key, values := range f.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("relation: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relation: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("relation: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("relation: decode: %w", err)
	}
	return recordsFrom(extractResults(payload, f.ResultsPath)), nil
}

func extractResults(payload any, path string) []any {
	if payload == nil {
		return nil
	}
	if path == "" {
		if list, ok := payload.([]any); ok {
			return list
		}
		if envelope, ok := payload.(map[string]any); ok {
			for _, key := range []string{"data", "items", "results"} {
				if list, ok := envelope[key].([]any); ok {
					return list
				}
			}
		}
		return nil
	}
	cur := payload
	for _, segment := range strings.Split(path, ".") {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[segment]
	}
	list, _ := cur.([]any)
	return list
}

func recordsFrom(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
