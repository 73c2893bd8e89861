package jsonschema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/openapi"
	"github.com/goliatone/go-admingen/pkg/schema"
)

const entityExtensionKey = "x-admin-entity"

var (
	// ErrNoEntities is returned when a document holds no object schema.
	ErrNoEntities = errors.New("jsonschema: document defines no object schema")
	// ErrUnsupportedDialect is returned for $schema values other than
	// draft 2020-12 and draft-07.
	ErrUnsupportedDialect = errors.New("jsonschema: unsupported $schema")
)

var supportedDialects = map[string]struct{}{
	"https://json-schema.org/draft/2020-12/schema": {},
	"http://json-schema.org/draft/2020-12/schema":  {},
	"http://json-schema.org/draft-07/schema":       {},
	"https://json-schema.org/draft-07/schema":      {},
}

// Adapter converts JSON Schema documents into entities.
type Adapter struct {
	maxDepth int
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithMaxRefDepth bounds reference inlining. Deeper or cyclic references are
// replaced by an opaque object.
func WithMaxRefDepth(depth int) Option {
	return func(a *Adapter) {
		if depth > 0 {
			a.maxDepth = depth
		}
	}
}

// DefaultMaxRefDepth is the reference depth used when none is configured.
const DefaultMaxRefDepth = 8

// NewAdapter constructs an Adapter.
func NewAdapter(options ...Option) *Adapter {
	a := &Adapter{maxDepth: DefaultMaxRefDepth}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Detect reports whether raw looks like a JSON Schema document rather than
// an OpenAPI document or an entity definition file.
func Detect(raw []byte) bool {
	payload, err := decode(raw)
	if err != nil {
		return false
	}
	for _, key := range []string{"openapi", "swagger", "entity", "entities"} {
		if _, ok := payload[key]; ok {
			return false
		}
	}
	for _, key := range []string{"$schema", "$id", "$defs", "definitions", "properties"} {
		if _, ok := payload[key]; ok {
			return true
		}
	}
	return false
}

// Entities parses raw (JSON or YAML) and returns its entities sorted by name.
func (a *Adapter) Entities(ctx context.Context, raw []byte) ([]schema.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if err := checkDialect(payload); err != nil {
		return nil, err
	}

	defs := definitions(payload)
	res := &resolver{defs: defs, maxDepth: a.maxDepth}
	root := documentRoot(raw)

	var entities []schema.Entity
	if isObjectSchema(payload) {
		name := rootName(payload)
		if name == "" {
			return nil, errors.New("jsonschema: root schema needs a title or x-admin-entity")
		}
		order := openapi.PropertyOrder{}
		order.Collect(name, root)
		entity, err := convert(name, res.inline(payload, 0), order)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def, ok := defs[name].(map[string]any)
		if !ok || !isObjectSchema(def) {
			continue
		}
		order := openapi.PropertyOrder{}
		order.Collect(name, definitionNode(root, name))
		entity, err := convert(name, res.inline(def, 0), order)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}

	if len(entities) == 0 {
		return nil, ErrNoEntities
	}
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities, nil
}

func convert(name string, node map[string]any, order openapi.PropertyOrder) (schema.Entity, error) {
	delete(node, "$defs")
	delete(node, "definitions")
	payload, err := json.Marshal(node)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("jsonschema: encode %s: %w", name, err)
	}
	var src openapi3.Schema
	if err := json.Unmarshal(payload, &src); err != nil {
		return schema.Entity{}, fmt.Errorf("jsonschema: decode %s: %w", name, err)
	}
	entity, err := openapi.EntityFromOrderedSchema(name, &src, order)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("jsonschema: %w", err)
	}
	return entity, nil
}

// decode accepts JSON or YAML. Mapping keys are always strings in yaml.v3
// for JSON-compatible input.
func decode(raw []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: document is empty")
	}
	var payload map[string]any
	if err := yaml.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("jsonschema: parse document: %w", err)
	}
	if payload == nil {
		return nil, errors.New("jsonschema: document is not an object")
	}
	return payload, nil
}

func checkDialect(payload map[string]any) error {
	raw, ok := payload["$schema"].(string)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	dialect := strings.TrimSuffix(strings.TrimSpace(raw), "#")
	if _, ok := supportedDialects[dialect]; !ok {
		return fmt.Errorf("%w %q", ErrUnsupportedDialect, raw)
	}
	return nil
}

func definitions(payload map[string]any) map[string]any {
	out := make(map[string]any)
	for _, key := range []string{"definitions", "$defs"} {
		if defs, ok := payload[key].(map[string]any); ok {
			for name, def := range defs {
				out[name] = def
			}
		}
	}
	return out
}

func rootName(payload map[string]any) string {
	for _, key := range []string{entityExtensionKey, "title"} {
		if value, ok := payload[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func isObjectSchema(node map[string]any) bool {
	if props, ok := node["properties"].(map[string]any); ok && len(props) > 0 {
		return true
	}
	switch typ := node["type"].(type) {
	case string:
		return typ == "object"
	case []any:
		for _, value := range typ {
			if value == "object" {
				return true
			}
		}
	}
	return false
}

// documentRoot parses raw into a yaml.v3 node tree so property order
// survives; decode only yields Go maps.
func documentRoot(raw []byte) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

func definitionNode(root *yaml.Node, name string) *yaml.Node {
	if node := openapi.MappingValue(openapi.MappingValue(root, "$defs"), name); node != nil {
		return node
	}
	return openapi.MappingValue(openapi.MappingValue(root, "definitions"), name)
}
