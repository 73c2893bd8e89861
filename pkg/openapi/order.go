package openapi

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

const componentRefPrefix = "#/components/schemas/"

// PropertyOrder records the key order of properties mappings, keyed by
// path: "Vehicle", "Vehicle.position", "Vehicle.stops[]". kin-openapi holds
// properties in a Go map, so the order is read back from the yaml.v3 node
// tree, which also parses JSON.
type PropertyOrder map[string][]string

func readDeclaredOrder(raw []byte) PropertyOrder {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	schemas := mappingValue(mappingValue(doc.Content[0], "components"), "schemas")
	if schemas == nil || schemas.Kind != yaml.MappingNode {
		return nil
	}
	order := PropertyOrder{}
	for i := 0; i+1 < len(schemas.Content); i += 2 {
		order.Collect(schemas.Content[i].Value, schemas.Content[i+1])
	}
	return order
}

// Collect records the properties of the schema node at path and of every
// schema nested under it.
func (o PropertyOrder) Collect(path string, node *yaml.Node) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	if props := mappingValue(node, "properties"); props != nil && props.Kind == yaml.MappingNode {
		keys := make([]string, 0, len(props.Content)/2)
		for i := 0; i+1 < len(props.Content); i += 2 {
			key := props.Content[i].Value
			keys = append(keys, key)
			o.Collect(path+"."+key, props.Content[i+1])
		}
		o[path] = keys
	}
	o.Collect(path+"[]", mappingValue(node, "items"))
}

// keys lists the properties of src in declaration order. Keys the document
// does not spell out at path, such as those merged in by allOf, follow in
// name order.
func (o PropertyOrder) keys(path string, src *openapi3.Schema) []string {
	keys := make([]string, 0, len(src.Properties))
	seen := make(map[string]struct{}, len(src.Properties))
	for _, key := range o[path] {
		if _, ok := src.Properties[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	rest := make([]string, 0, len(src.Properties)-len(keys))
	for key := range src.Properties {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// childPath follows a component reference to the component's own path.
func childPath(ref, fallback string) string {
	if name, ok := strings.CutPrefix(ref, componentRefPrefix); ok && name != "" {
		return name
	}
	return fallback
}

// MappingValue returns the value under key in a mapping node, or nil.
func MappingValue(node *yaml.Node, key string) *yaml.Node {
	return mappingValue(node, key)
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
