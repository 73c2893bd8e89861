package table

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-admingen/pkg/model"
)

// ActionsKey identifies the trailing actions column.
const ActionsKey = "actions"

// Column describes one table column.
type Column struct {
	Key      string            `json:"key,omitempty"`
	Label    string            `json:"label,omitempty"`
	Field    model.FieldConfig `json:"field,omitempty"`
	Sortable bool              `json:"sortable,omitempty"`
	Actions  bool              `json:"actions,omitempty"`
}

var unsortable = map[model.FieldType]struct{}{
	model.FieldTypeImage:    {},
	model.FieldTypeFile:     {},
	model.FieldTypeRichText: {},
	model.FieldTypeRelation: {},
}

// Columns derives the columns for cfg: table-visible fields in display order
// followed by an actions column when update or delete is enabled.
func Columns(cfg model.AdminConfig) []Column {
	fields := cfg.TableFields()
	out := make([]Column, 0, len(fields)+1)
	for _, field := range fields {
		_, skip := unsortable[field.Type]
		out = append(out, Column{
			Key:      field.Key,
			Label:    field.Label,
			Field:    field,
			Sortable: !skip,
		})
	}
	if cfg.Actions.Update || cfg.Actions.Delete {
		out = append(out, Column{Key: ActionsKey, Label: "Actions", Actions: true})
	}
	return out
}

// Lookup resolves key on record. The flat key wins; otherwise key is walked
// as a dotted path through nested maps and slices.
func Lookup(record map[string]any, key string) (any, bool) {
	if record == nil {
		return nil, false
	}
	if value, ok := record[key]; ok {
		return value, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}
	var cur any = record
	for _, segment := range strings.Split(key, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}
