package crud

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-admingen/pkg/validation"
)

// Paginate filters, sorts and slices records for q. Search matches a
// case-insensitive substring of any scalar value (or of searchFields when
// given). The input slice is not modified.
func Paginate(records []Record, q ListQuery, searchFields ...string) ListResult {
	q = q.Normalize(q.PageSize)

	filtered := make([]Record, 0, len(records))
	needle := strings.ToLower(q.Search)
	for _, record := range records {
		if needle == "" || matches(record, needle, searchFields) {
			filtered = append(filtered, record)
		}
	}

	if q.Sort != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			a, b := filtered[i][q.Sort], filtered[j][q.Sort]
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			cmp := compareValues(a, b)
			if q.Dir == Desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	total := len(filtered)
	pages := int(math.Ceil(float64(total) / float64(q.PageSize)))
	start := (q.Page - 1) * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}
	page := make([]Record, 0, end-start)
	for _, record := range filtered[start:end] {
		page = append(page, cloneRecord(record))
	}
	return ListResult{
		Data: page,
		Meta: Meta{Total: total, TotalPages: pages, Page: q.Page, PageSize: q.PageSize},
	}
}

func matches(record Record, needle string, fields []string) bool {
	check := func(value any) bool {
		switch v := value.(type) {
		case string:
			return strings.Contains(strings.ToLower(v), needle)
		case float64, int, int64:
			return strings.Contains(fmt.Sprint(v), needle)
		}
		return false
	}
	if len(fields) > 0 {
		for _, field := range fields {
			if check(record[field]) {
				return true
			}
		}
		return false
	}
	for _, value := range record {
		if check(value) {
			return true
		}
	}
	return false
}

// compareValues orders nil last, numbers numerically, bools false first and
// everything else case-insensitively as text.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if fa, ok := validation.ToFloat(a); ok {
		if fb, ok := validation.ToFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

// RecordID returns the string form of record["id"].
func RecordID(record Record) string {
	switch v := record["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// MergeRecord copies partial onto dst. A nil value deletes the key and the
// id key is never touched.
func MergeRecord(dst, partial Record) {
	for key, value := range partial {
		if key == "id" {
			continue
		}
		if value == nil {
			delete(dst, key)
			continue
		}
		dst[key] = value
	}
}

// CompactRecord drops nil values in place and returns record.
func CompactRecord(record Record) Record {
	for key, value := range record {
		if value == nil {
			delete(record, key)
		}
	}
	return record
}

// CloneRecord returns a shallow copy with nested slices and maps copied one
// level deep.
func CloneRecord(record Record) Record {
	return cloneRecord(record)
}

func cloneRecord(record Record) Record {
	if record == nil {
		return nil
	}
	out := make(Record, len(record))
	for key, value := range record {
		switch v := value.(type) {
		case []any:
			out[key] = append([]any(nil), v...)
		case []string:
			out[key] = append([]string(nil), v...)
		case map[string]any:
			inner := make(map[string]any, len(v))
			for k, iv := range v {
				inner[k] = iv
			}
			out[key] = inner
		default:
			out[key] = v
		}
	}
	return out
}
