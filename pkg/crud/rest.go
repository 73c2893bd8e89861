package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RESTService is a Service backed by the JSON API served under
// {BaseURL}/{entity}.
type RESTService struct {
	BaseURL string
	Entity  string
	Client  *http.Client
}

// NewRESTService constructs a client for entity.
func NewRESTService(baseURL, entity string) *RESTService {
	return &RESTService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Entity:  entity,
		Client:  http.DefaultClient,
	}
}

// FetchItems implements Service.
func (s *RESTService) FetchItems(ctx context.Context, query ListQuery) (ListResult, error) {
	var result ListResult
	err := s.do(ctx, http.MethodGet, s.collectionURL(query.Values()), nil, &result)
	if result.Data == nil {
		result.Data = []Record{}
	}
	return result, err
}

// GetItem implements ItemGetter.
func (s *RESTService) GetItem(ctx context.Context, id string) (Record, error) {
	var item Record
	if err := s.do(ctx, http.MethodGet, s.itemURL(id), nil, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem implements Service.
func (s *RESTService) CreateItem(ctx context.Context, data Record) (Record, error) {
	var item Record
	if err := s.do(ctx, http.MethodPost, s.collectionURL(nil), data, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem implements Service.
func (s *RESTService) UpdateItem(ctx context.Context, id string, partial Record) (Record, error) {
	var item Record
	if err := s.do(ctx, http.MethodPatch, s.itemURL(id), partial, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem implements Service.
func (s *RESTService) DeleteItem(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.itemURL(id), nil, nil)
}

func (s *RESTService) collectionURL(values url.Values) string {
	out := s.BaseURL + "/" + url.PathEscape(s.Entity)
	if encoded := values.Encode(); encoded != "" {
		out += "?" + encoded
	}
	return out
}

func (s *RESTService) itemURL(id string) string {
	return s.BaseURL + "/" + url.PathEscape(s.Entity) + "/" + url.PathEscape(id)
}

type errorBody struct {
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (s *RESTService) do(ctx context.Context, method, target string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("crud: encode %s: %w", s.Entity, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("crud: request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("crud: %s %s: %w", method, s.Entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		if eb.Error == "" {
			eb.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Code: resp.StatusCode, Message: eb.Error, Fields: eb.Errors}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("crud: decode %s: %w", s.Entity, err)
	}
	return nil
}

// StatusError is returned for non-2xx API responses. Fields carries the
// per-field messages of a 422 response.
type StatusError struct {
	Code    int
	Message string
	Fields  map[string][]string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("crud: status %d: %s", e.Code, e.Message)
}
