package render

import (
	"net/url"
	"sort"
	"strings"

	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/table"
)

// PageKind selects the page template.
type PageKind string

const (
	PageIndex  PageKind = "index"
	PageList   PageKind = "list"
	PageForm   PageKind = "form"
	PageDetail PageKind = "detail"
)

// EntityLink is one entry of the navigation.
type EntityLink struct {
	Entity string `json:"entity"`
	Title  string `json:"title"`
	Href   string `json:"href"`
	Active bool   `json:"active,omitempty"`
}

// SortLink is a column header. Href toggles the sort on the column.
type SortLink struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Href     string         `json:"href,omitempty"`
	Sortable bool           `json:"sortable,omitempty"`
	Active   bool           `json:"active,omitempty"`
	Dir      crud.Direction `json:"dir,omitempty"`
	Actions  bool           `json:"actions,omitempty"`
}

// PageLink is one numbered pagination link.
type PageLink struct {
	Number  int    `json:"number"`
	Href    string `json:"href"`
	Current bool   `json:"current,omitempty"`
}

// Pagination holds the links rendered under a list.
type Pagination struct {
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int        `json:"total"`
	Prev       string     `json:"prev,omitempty"`
	Next       string     `json:"next,omitempty"`
	Pages      []PageLink `json:"pages,omitempty"`
}

// DetailEntry pairs a field with its rendered value on a detail page.
type DetailEntry struct {
	Field model.FieldConfig `json:"field"`
	Cell  table.Cell        `json:"cell"`
}

// Page is the view model handed to renderers. Only the members relevant to
// Kind are populated. Row and form URLs hang off EntityPath.
type Page struct {
	Kind       PageKind          `json:"kind"`
	Title      string            `json:"title"`
	BasePath   string            `json:"basePath"`
	Entity     string            `json:"entity,omitempty"`
	EntityPath string            `json:"entityPath,omitempty"`
	Config     model.AdminConfig `json:"config"`
	Entities   []EntityLink      `json:"entities,omitempty"`
	Notice     *crud.Notice      `json:"notice,omitempty"`

	// List pages.
	Table      table.Table    `json:"table"`
	Query      crud.ListQuery `json:"query"`
	SortLinks  []SortLink     `json:"sortLinks,omitempty"`
	Pagination Pagination     `json:"pagination"`
	ListHref   string         `json:"listHref,omitempty"`
	CreateHref string         `json:"createHref,omitempty"`
	BulkAction string         `json:"bulkAction,omitempty"`

	// Form pages.
	Groups     []form.Group  `json:"groups,omitempty"`
	Action     string        `json:"action,omitempty"`
	Editing    bool          `json:"editing,omitempty"`
	FormErrors []string      `json:"formErrors,omitempty"`
	Hidden     []HiddenField `json:"hidden,omitempty"`
	Multipart  bool          `json:"multipart,omitempty"`

	// Detail pages.
	Record  crud.Record   `json:"record,omitempty"`
	Details []DetailEntry `json:"details,omitempty"`
}

// EntityPath joins base and entity into the entity's admin path.
func EntityPath(base, entity string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(entity)
}

// ItemPath returns the admin path of one record.
func ItemPath(base, entity, id string) string {
	return EntityPath(base, entity) + "/" + url.PathEscape(id)
}

// ListHref encodes q onto the list path so the view can be shared.
func ListHref(listPath string, q crud.ListQuery) string {
	encoded := q.Values().Encode()
	if encoded == "" {
		return listPath
	}
	return listPath + "?" + encoded
}

// NewSortLinks builds the header links for columns. The actions column is
// never sortable.
func NewSortLinks(listPath string, q crud.ListQuery, columns []table.Column) []SortLink {
	links := make([]SortLink, 0, len(columns))
	for _, column := range columns {
		link := SortLink{
			Key:      column.Key,
			Label:    column.Label,
			Sortable: column.Sortable && !column.Actions,
			Actions:  column.Actions,
		}
		if link.Sortable {
			link.Href = ListHref(listPath, q.Toggle(column.Key))
			if q.Sort == column.Key {
				link.Active = true
				link.Dir = q.Dir
			}
		}
		links = append(links, link)
	}
	return links
}

// pageWindow is the number of numbered links around the current page.
const pageWindow = 2

// NewPagination builds prev/next and a window of numbered links.
func NewPagination(listPath string, q crud.ListQuery, meta crud.Meta) Pagination {
	p := Pagination{Page: meta.Page, TotalPages: meta.TotalPages, Total: meta.Total}
	if p.Page < 1 {
		p.Page = 1
	}
	at := func(page int) string {
		next := q
		next.Page = page
		return ListHref(listPath, next)
	}
	if p.Page > 1 {
		p.Prev = at(p.Page - 1)
	}
	if p.Page < p.TotalPages {
		p.Next = at(p.Page + 1)
	}
	first, last := max(1, p.Page-pageWindow), min(p.TotalPages, p.Page+pageWindow)
	for n := first; n <= last; n++ {
		p.Pages = append(p.Pages, PageLink{Number: n, Href: at(n), Current: n == p.Page})
	}
	return p
}

// NewDetails renders every detail-visible field of record.
func NewDetails(renderer *table.Renderer, cfg model.AdminConfig, record crud.Record) []DetailEntry {
	fields := cfg.DetailFields()
	out := make([]DetailEntry, 0, len(fields))
	for _, field := range fields {
		out = append(out, DetailEntry{Field: field, Cell: renderer.Cell(field, record)})
	}
	return out
}

// HasUpload reports whether any form field needs a multipart submission.
func HasUpload(cfg model.AdminConfig) bool {
	for _, field := range cfg.FormFields() {
		if field.Type == model.FieldTypeImage || field.Type == model.FieldTypeFile {
			return true
		}
	}
	return false
}

// ApplyErrors maps errs onto the controls of groups and returns the messages
// that match no control.
func ApplyErrors(cfg model.AdminConfig, groups []form.Group, errs map[string][]string) []string {
	mapping := MapErrorPayload(cfg, errs)
	for gi := range groups {
		for ci := range groups[gi].Controls {
			control := &groups[gi].Controls[ci]
			if messages, ok := mapping.Fields[control.Field.Key]; ok {
				control.Errors = MergeFormErrors(control.Errors, messages...)
				delete(mapping.Fields, control.Field.Key)
			}
		}
	}
	leftover := mapping.Form
	keys := make([]string, 0, len(mapping.Fields))
	for key := range mapping.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		leftover = append(leftover, mapping.Fields[key]...)
	}
	return MergeFormErrors(nil, leftover...)
}
