package openapi

import (
	"path"
	"strings"
	"unicode"

	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/schema"
)

const relationshipExtensionKey = "x-relationships"

var relationshipKeyLookup = map[string]string{
	"type":         "type",
	"kind":         "type",
	"target":       "target",
	"entity":       "target",
	"displayfield": "displayField",
	"labelfield":   "displayField",
	"label":        "displayField",
	"cardinality":  "cardinality",
}

// relationFromExtensions reads x-relationships. Targets may be component
// references ("#/components/schemas/Category") or bare entity names.
func relationFromExtensions(ext map[string]any) *schema.Relation {
	raw, ok := ext[relationshipExtensionKey].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(raw))
	for key, value := range raw {
		canonical, ok := relationshipKeyLookup[normaliseKey(key)]
		if !ok {
			continue
		}
		if str, ok := value.(string); ok && strings.TrimSpace(str) != "" {
			attrs[canonical] = strings.TrimSpace(str)
		}
	}

	target := attrs["target"]
	if target == "" {
		return nil
	}
	rel := &schema.Relation{
		Entity:       strings.ToLower(path.Base(target)),
		DisplayField: attrs["displayField"],
	}
	if kind, ok := model.NormalizeRelationKind(attrs["type"]); ok {
		rel.Multiple = kind.IsMultiple()
	}
	if strings.EqualFold(attrs["cardinality"], "many") {
		rel.Multiple = true
	}
	return rel
}

func normaliseKey(raw string) string {
	var builder strings.Builder
	builder.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			builder.WriteRune(unicode.ToLower(r))
		}
	}
	return builder.String()
}
