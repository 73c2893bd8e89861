package crud

import (
	"net/url"
	"strconv"
	"strings"
)

// Direction is the sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultPageSize applies when a query carries none.
const DefaultPageSize = 10

// MaxPageSize bounds PageSize.
const MaxPageSize = 500

// Query parameter names used in shareable list URLs.
const (
	ParamSearch   = "search"
	ParamSort     = "sort"
	ParamDir      = "dir"
	ParamPage     = "page"
	ParamPageSize = "pageSize"
)

// ListQuery is the list view state. It round-trips through URL values so a
// list can be shared or bookmarked.
type ListQuery struct {
	Search   string    `json:"search,omitempty"`
	Sort     string    `json:"sort,omitempty"`
	Dir      Direction `json:"dir,omitempty"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// Normalize fills defaults: page 1, the given page size and ascending order.
func (q ListQuery) Normalize(defaultSize int) ListQuery {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Dir != Desc {
		q.Dir = Asc
	}
	return q
}

// Values encodes the query. Empty and default members are omitted.
func (q ListQuery) Values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set(ParamSearch, q.Search)
	}
	if q.Sort != "" {
		values.Set(ParamSort, q.Sort)
		if q.Dir == Desc {
			values.Set(ParamDir, string(Desc))
		}
	}
	if q.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		values.Set(ParamPageSize, strconv.Itoa(q.PageSize))
	}
	return values
}

// Key returns a stable cache key for the query.
func (q ListQuery) Key() string {
	return q.Values().Encode()
}

// With returns a copy of q with page reset when the search or sort changes.
func (q ListQuery) With(search, sort string, dir Direction) ListQuery {
	out := q
	out.Search, out.Sort, out.Dir = search, sort, dir
	if out.Search != q.Search || out.Sort != q.Sort || out.Dir != q.Dir {
		out.Page = 1
	}
	return out
}

// Toggle returns the query sorted by key, flipping the direction when key is
// already the sort column.
func (q ListQuery) Toggle(key string) ListQuery {
	dir := Asc
	if q.Sort == key && q.Dir != Desc {
		dir = Desc
	}
	return q.With(q.Search, key, dir)
}

// ParseListQuery decodes URL values. Malformed numbers are ignored.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{
		Search: strings.TrimSpace(values.Get(ParamSearch)),
		Sort:   strings.TrimSpace(values.Get(ParamSort)),
		Dir:    Asc,
	}
	if strings.EqualFold(values.Get(ParamDir), string(Desc)) {
		q.Dir = Desc
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(values.Get(ParamPageSize)); err == nil && size > 0 {
		q.PageSize = size
	}
	return q
}
