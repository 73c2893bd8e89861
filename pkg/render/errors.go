package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-admingen/pkg/model"
)

// ErrorMapping splits an API error payload into field-level and form-level
// messages keyed by field key.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises error payloads (JSON pointers, bracket indexes,
// body/data wrappers) onto the field keys of cfg. Unknown paths are kept as
// form-level errors.
func MapErrorPayload(cfg model.AdminConfig, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		return mapping
	}

	known := fieldPaths(cfg.Fields)
	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		key, ok := resolvePath(raw, known)
		if !ok {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resolvePath picks the longest known field path among the raw segments and
// their variants without wrapper or index segments.
func resolvePath(raw string, known map[string]struct{}) (string, bool) {
	if isFormLevelKey(raw) {
		return "", false
	}
	segments := splitPath(raw)
	if len(segments) == 0 {
		return "", false
	}

	unwrapped := dropWrappers(segments)
	best := ""
	for _, variant := range [][]string{segments, unwrapped, dropIndexes(segments), dropIndexes(unwrapped)} {
		match := longestPrefix(variant, known)
		if strings.Count(match, ".") > strings.Count(best, ".") || (best == "" && match != "") {
			best = match
		}
	}
	return best, best != ""
}

func splitPath(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)

	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		// JSON pointer escapes.
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrappers(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func dropIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestPrefix(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// fieldPaths registers every field key plus the parents of dotted keys, so
// "owner" matches when only "owner.email" is declared.
func fieldPaths(fields []model.FieldConfig) map[string]struct{} {
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}
		parts := strings.Split(key, ".")
		for i := range parts {
			known[strings.Join(parts[:i+1], ".")] = struct{}{}
		}
	}
	return known
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
