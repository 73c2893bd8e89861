package relation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/pkg/model"
)

// Candidate is one selectable related record.
type Candidate struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var labelFallbacks = []string{"name", "title", "id"}

// Label picks the display label for record: displayField, then name, title
// and id. Records without any of these yield "".
func Label(record map[string]any, displayField string) string {
	fields := labelFallbacks
	if displayField != "" {
		fields = append([]string{displayField}, labelFallbacks...)
	}
	for _, field := range fields {
		if value := stringValue(record[field]); value != "" {
			return value
		}
	}
	return ""
}

// Candidates converts records into candidates. Records without an id are
// skipped.
func Candidates(records []map[string]any, displayField string) []Candidate {
	out := make([]Candidate, 0, len(records))
	for _, record := range records {
		id := stringValue(record["id"])
		if id == "" {
			continue
		}
		out = append(out, Candidate{Value: id, Label: Label(record, displayField)})
	}
	return out
}

// Options fetches candidates for cfg. A failed fetch is logged and yields an
// empty list so the widget stays usable.
func Options(ctx context.Context, fetcher Fetcher, cfg model.RelationConfig, logger *zap.Logger) []Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetcher == nil || strings.TrimSpace(cfg.Entity) == "" {
		return []Candidate{}
	}
	records, err := fetcher.Fetch(ctx, cfg.Entity)
	if err != nil {
		logger.Warn("relation fetch failed",
			zap.String("entity", cfg.Entity),
			zap.Error(err),
		)
		return []Candidate{}
	}
	return Candidates(records, cfg.DisplayField)
}

func stringValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprint(value)
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}
