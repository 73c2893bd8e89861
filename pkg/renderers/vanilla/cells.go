package vanilla

import (
	"html"
	"strings"

	"github.com/goliatone/go-admingen/pkg/table"
)

// cellMarkup renders a table cell. Every value is escaped; hrefs come from
// the table package, which only links mailto and http(s) targets.
func cellMarkup(cell table.Cell) string {
	text := html.EscapeString(cell.Text)
	switch cell.Kind {
	case table.CellPlaceholder:
		return `<span class="ag-placeholder">` + text + `</span>`
	case table.CellBadge:
		variant := strings.TrimSpace(cell.Variant)
		if variant == "" {
			variant = "default"
		}
		return `<span class="badge badge-` + html.EscapeString(variant) + `">` + text + `</span>`
	case table.CellLink:
		return `<a href="` + html.EscapeString(cell.Href) + `" rel="noopener">` + text + `</a>`
	case table.CellImage:
		return `<img src="` + html.EscapeString(cell.Src) + `" alt="` + text + `" class="ag-thumb" loading="lazy">`
	case table.CellTruncated:
		return `<span title="` + html.EscapeString(cell.Title) + `">` + text + `</span>`
	case table.CellDate:
		if cell.Invalid {
			return `<time class="ag-invalid">` + text + `</time>`
		}
		return `<time>` + text + `</time>`
	case table.CellNumber:
		return `<span class="ag-number">` + text + `</span>`
	default:
		return text
	}
}
