package form

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/validation"
)

// DateLayout is the value format used by date controls.
const DateLayout = "2006-01-02"

// ParseNumber converts numeric input to a float64. Invalid input yields 0.
func ParseNumber(raw any) float64 {
	if f, ok := validation.ToFloat(raw); ok {
		return f
	}
	str, ok := raw.(string)
	if !ok {
		return 0
	}
	str = strings.ReplaceAll(strings.TrimSpace(str), ",", ".")
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return f
}

// CoerceDate accepts a time.Time, an ISO string or epoch milliseconds. The
// second return value is false for anything that does not parse; callers treat
// that as unset.
func CoerceDate(raw any) (time.Time, bool) {
	return schema.ParseDate(raw)
}

// FormatDate renders raw for a date control. Unparseable values yield "".
func FormatDate(raw any) string {
	t, ok := CoerceDate(raw)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "on", "true", "yes", "oui":
		return true
	default:
		return false
	}
}

// coerce converts submitted strings into the Go value the node kind expects.
// The second return value is false when the value should be treated as unset.
func coerce(node schema.Node, raw []string, multiple bool) (any, bool) {
	inner, optional := node.Unwrap()
	first := ""
	if len(raw) > 0 {
		first = raw[0]
	}

	if inner.Kind == schema.KindArray || multiple {
		out := make([]string, 0, len(raw))
		for _, value := range raw {
			for _, part := range strings.Split(value, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
		if len(out) == 0 && optional {
			return nil, false
		}
		return out, true
	}

	switch inner.Kind {
	case schema.KindBoolean:
		return parseBool(first), true
	case schema.KindNumber:
		if strings.TrimSpace(first) == "" && optional {
			return nil, false
		}
		return ParseNumber(first), true
	case schema.KindDate:
		t, ok := CoerceDate(strings.TrimSpace(first))
		if !ok {
			return nil, false
		}
		return t.Format(DateLayout), true
	case schema.KindEnum:
		if strings.TrimSpace(first) == "" && optional {
			return nil, false
		}
		return strings.TrimSpace(first), true
	case schema.KindObject:
		if strings.TrimSpace(first) == "" {
			return nil, !optional
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(first), &obj); err != nil {
			return first, true
		}
		return obj, true
	default:
		if len(raw) == 0 && optional {
			return nil, false
		}
		return first, true
	}
}
