package table

import (
	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/model"
)

// Row action names.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// DefaultConfirmMessage is the confirmation shown before a delete.
const DefaultConfirmMessage = "Êtes-vous sûr de vouloir supprimer cet élément ?"

// ParseFunc transforms a row before it is handed to the edit action.
type ParseFunc func(row map[string]any) map[string]any

// ActionOptions configure RowActions.
type ActionOptions struct {
	Actions        model.Actions
	Parse          ParseFunc
	ConfirmMessage string
}

// RowAction is one entry of the row overflow menu.
type RowAction struct {
	Name           string         `json:"name,omitempty"`
	Label          string         `json:"label,omitempty"`
	ID             string         `json:"id,omitempty"`
	Row            map[string]any `json:"row,omitempty"`
	Confirm        bool           `json:"confirm,omitempty"`
	ConfirmMessage string         `json:"confirmMessage,omitempty"`
}

// RowActions returns the menu entries for row. Edit carries the row after
// opts.Parse; Delete requires confirmation.
func RowActions(row map[string]any, opts ActionOptions) []RowAction {
	id := RecordID(row)
	var out []RowAction
	if opts.Actions.Update {
		edit := row
		if opts.Parse != nil {
			edit = opts.Parse(row)
		}
		out = append(out, RowAction{Name: ActionEdit, Label: "Modifier", ID: id, Row: edit})
	}
	if opts.Actions.Delete {
		message := opts.ConfirmMessage
		if message == "" {
			message = DefaultConfirmMessage
		}
		out = append(out, RowAction{
			Name:           ActionDelete,
			Label:          "Supprimer",
			ID:             id,
			Row:            row,
			Confirm:        true,
			ConfirmMessage: message,
		})
	}
	return out
}

// RecordID returns the string form of row["id"].
func RecordID(row map[string]any) string {
	return crud.RecordID(row)
}
