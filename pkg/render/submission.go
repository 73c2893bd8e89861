package render

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Hidden input names understood by the admin server.
const (
	FieldCSRF   = "_csrf"
	FieldReturn = "_return"
)

// HiddenField is a hidden form input emitted alongside the visible controls.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token.
func CSRFToken(token string) HiddenField {
	return Hidden(FieldCSRF, token)
}

// ReturnTo carries the list URL (with its query state) the server redirects
// to after a successful save. Absolute URLs are rejected and yield an empty
// value.
func ReturnTo(target string) HiddenField {
	return Hidden(FieldReturn, SafeReturnPath(target, ""))
}

// SafeReturnPath returns target when it is a local path, otherwise fallback.
func SafeReturnPath(target, fallback string) string {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" || !strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, "//") {
		return fallback
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	return trimmed
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields sorts hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	clean := MergeHiddenFields(fields)
	if len(clean) == 0 {
		return nil
	}
	names := make([]string, 0, len(clean))
	for name := range clean {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}
