package gotemplate

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

func registerBuiltinFilters() {
	filters := map[string]pongo2.FilterFunction{
		"trim":       filterTrim,
		"sortarrow":  filterSortArrow,
		"badgeclass": filterBadgeClass,
	}
	for name, fn := range filters {
		if !pongo2.FilterExists(name) {
			_ = pongo2.RegisterFilter(name, fn)
		}
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterSortArrow renders a list sort direction as an arrow.
func filterSortArrow(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	switch strings.ToLower(in.String()) {
	case "asc":
		return pongo2.AsValue("▲"), nil
	case "desc":
		return pongo2.AsValue("▼"), nil
	default:
		return pongo2.AsValue(""), nil
	}
}

// filterBadgeClass maps a cell variant onto the stylesheet's badge classes.
func filterBadgeClass(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	variant := strings.TrimSpace(in.String())
	if variant == "" {
		variant = "default"
	}
	return pongo2.AsValue("badge badge-" + variant), nil
}
