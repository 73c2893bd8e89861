package schema

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// InvalidDateLabel is shown wherever a date value cannot be parsed.
const InvalidDateLabel = "Date invalide"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate coerces v into a time. Accepted inputs are time.Time, *time.Time,
// ISO-8601 strings and epoch milliseconds. Anything else, including the zero
// time, reports false.
func ParseDate(v any) (time.Time, bool) {
	switch value := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return value, !value.IsZero()
	case *time.Time:
		if value == nil {
			return time.Time{}, false
		}
		return *value, !value.IsZero()
	case string:
		return parseDateString(value)
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return time.UnixMilli(i).UTC(), true
		}
		if f, err := value.Float64(); err == nil {
			return fromEpochFloat(f)
		}
		return time.Time{}, false
	case int:
		return time.UnixMilli(int64(value)).UTC(), true
	case int64:
		return time.UnixMilli(value).UTC(), true
	case int32:
		return time.UnixMilli(int64(value)).UTC(), true
	case float64:
		return fromEpochFloat(value)
	case float32:
		return fromEpochFloat(float64(value))
	default:
		return time.Time{}, false
	}
}

func parseDateString(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromEpochFloat(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)).UTC(), true
}
