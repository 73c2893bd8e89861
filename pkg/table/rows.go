package table

import "github.com/goliatone/go-admingen/pkg/model"

// Row is a rendered record: one cell per non-action column plus the action
// menu.
type Row struct {
	ID      string         `json:"id,omitempty"`
	Record  map[string]any `json:"record,omitempty"`
	Cells   []Cell         `json:"cells,omitempty"`
	Actions []RowAction    `json:"actions,omitempty"`
}

// Table bundles the columns and rendered rows for a list view.
type Table struct {
	Columns []Column `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`
}

// Build renders records for cfg. The action flags always come from cfg.
func (r *Renderer) Build(cfg model.AdminConfig, records []map[string]any, opts ActionOptions) Table {
	columns := Columns(cfg)
	opts.Actions = cfg.Actions
	out := Table{Columns: columns, Rows: make([]Row, 0, len(records))}
	for _, record := range records {
		row := Row{ID: RecordID(record), Record: record}
		for _, col := range columns {
			if col.Actions {
				continue
			}
			row.Cells = append(row.Cells, r.Cell(col.Field, record))
		}
		row.Actions = RowActions(record, opts)
		out.Rows = append(out.Rows, row)
	}
	return out
}
