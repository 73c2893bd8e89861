package jsonschema

import "strings"

var refPrefixes = []string{"#/$defs/", "#/definitions/"}

// resolver inlines local references. Remote references are left untouched
// and end up as opaque nodes.
type resolver struct {
	defs     map[string]any
	maxDepth int
}

func (r *resolver) inline(node map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(node))
	for key, value := range node {
		out[key] = r.value(value, depth)
	}
	ref, ok := out["$ref"].(string)
	if !ok {
		return out
	}
	target, found := r.lookup(ref)
	if !found {
		return out
	}
	delete(out, "$ref")
	if depth >= r.maxDepth {
		out["type"] = "object"
		return out
	}
	resolved := r.inline(target, depth+1)
	// Sibling keywords override the referenced schema.
	for key, value := range out {
		resolved[key] = value
	}
	return resolved
}

func (r *resolver) value(value any, depth int) any {
	switch typed := value.(type) {
	case map[string]any:
		return r.inline(typed, depth)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = r.value(item, depth)
		}
		return out
	default:
		return value
	}
}

func (r *resolver) lookup(ref string) (map[string]any, bool) {
	for _, prefix := range refPrefixes {
		if name, ok := strings.CutPrefix(ref, prefix); ok {
			def, found := r.defs[name].(map[string]any)
			return def, found
		}
	}
	return nil, false
}
