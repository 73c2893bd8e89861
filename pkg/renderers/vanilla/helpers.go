package vanilla

import (
	"strings"
	"unicode"
)

// controlID derives a DOM id from a field key. Dotted keys become dashes.
func controlID(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("ag-")
	for _, r := range trimmed {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

func labelID(key string) string {
	if id := controlID(key); id != "" {
		return id + "-label"
	}
	return ""
}

// labelSupportsFor reports whether the widget renders a single labelable
// control.
func labelSupportsFor(widget string) bool {
	return widget != "relation-chips"
}
