package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-admingen/pkg/schema"
)

const (
	adminExtensionKey  = "x-admin"
	entityExtensionKey = "x-admin-entity"
)

var errNoComponents = errors.New("openapi: document has no component schemas")

// Option configures the Adapter.
type Option func(*Adapter)

// WithExternalRefs allows kin-openapi to resolve external references.
func WithExternalRefs(allowed bool) Option {
	return func(a *Adapter) {
		a.externalRefs = allowed
	}
}

// WithSchemaFilter limits conversion to the named component schemas.
func WithSchemaFilter(names ...string) Option {
	return func(a *Adapter) {
		if len(names) == 0 {
			return
		}
		a.only = make(map[string]struct{}, len(names))
		for _, name := range names {
			a.only[strings.TrimSpace(name)] = struct{}{}
		}
	}
}

// Adapter converts OpenAPI documents into entities.
type Adapter struct {
	externalRefs bool
	only         map[string]struct{}
}

// NewAdapter constructs an Adapter.
func NewAdapter(options ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Entities parses raw (JSON or YAML) and returns one entity per object schema
// in components.schemas, sorted by entity name.
func (a *Adapter) Entities(ctx context.Context, raw []byte) ([]schema.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: a.externalRefs,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return nil, errNoComponents
	}

	order := readDeclaredOrder(raw)
	names := make([]string, 0, len(doc.Components.Schemas))
	for name := range doc.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	var entities []schema.Entity
	for _, name := range names {
		if a.only != nil {
			if _, ok := a.only[name]; !ok {
				continue
			}
		}
		ref := doc.Components.Schemas[name]
		if ref == nil || ref.Value == nil || !isObject(ref.Value) {
			continue
		}
		entity, err := entityFromSchema(name, ref.Value, order)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	sort.SliceStable(entities, func(i, j int) bool { return entities[i].Name < entities[j].Name })
	return entities, nil
}

// EntityFromSchema converts one object schema into an entity named after
// name, honouring the x-admin and x-relationships extensions. Without the
// source document the properties come out in name order.
func EntityFromSchema(name string, src *openapi3.Schema) (schema.Entity, error) {
	return EntityFromOrderedSchema(name, src, nil)
}

// EntityFromOrderedSchema is EntityFromSchema with the property order of the
// source document, recorded under name.
func EntityFromOrderedSchema(name string, src *openapi3.Schema, order PropertyOrder) (schema.Entity, error) {
	if src == nil {
		return schema.Entity{}, fmt.Errorf("openapi: schema %s is nil", name)
	}
	if !isObject(src) {
		return schema.Entity{}, fmt.Errorf("openapi: schema %s is not an object", name)
	}
	return entityFromSchema(name, src, order)
}

func entityFromSchema(name string, src *openapi3.Schema, order PropertyOrder) (schema.Entity, error) {
	entityName := strings.ToLower(name)
	if override, ok := src.Extensions[entityExtensionKey].(string); ok && strings.TrimSpace(override) != "" {
		entityName = strings.TrimSpace(override)
	}

	props, err := propertiesFromSchema(src, order, name)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("openapi: schema %s: %w", name, err)
	}

	entity := schema.NewEntity(entityName, props...)
	entity.Title = src.Title
	entity.Description = src.Description
	if raw, ok := src.Extensions[adminExtensionKey]; ok {
		var ext struct {
			Actions schema.Actions `json:"actions"`
			UI      schema.Layout  `json:"ui"`
		}
		if err := decodeExtension(raw, &ext); err != nil {
			return schema.Entity{}, fmt.Errorf("openapi: schema %s: %w", name, err)
		}
		entity.Actions = ext.Actions
		entity.Layout = ext.UI
	}
	return entity, nil
}

// propertiesFromSchema emits properties in declaration order.
func propertiesFromSchema(src *openapi3.Schema, order PropertyOrder, path string) ([]schema.Property, error) {
	required := make(map[string]struct{}, len(src.Required))
	for _, key := range src.Required {
		required[key] = struct{}{}
	}

	keys := order.keys(path, src)
	props := make([]schema.Property, 0, len(keys))
	for _, key := range keys {
		ref := src.Properties[key]
		if ref == nil || ref.Value == nil {
			continue
		}
		node, err := nodeFromSchema(ref.Value, order, childPath(ref.Ref, path+"."+key))
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}
		if _, ok := required[key]; !ok || ref.Value.Nullable {
			node = schema.Optional(node)
		}
		meta, err := metaFromExtensions(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", key, err)
		}
		props = append(props, schema.Field(key, node, meta))
	}
	return props, nil
}

// nodeFromSchema maps src onto the closed kind set. Untyped schemas and
// types without a kind of their own, such as null, become strings.
func nodeFromSchema(src *openapi3.Schema, order PropertyOrder, path string) (schema.Node, error) {
	var node schema.Node
	switch typ := firstSchemaType(src.Type); {
	case typ == "string" && len(src.Enum) > 0:
		node = schema.Enum(enumValues(src.Enum)...)
	case typ == "string" && (src.Format == "date" || src.Format == "date-time"):
		node = schema.Date()
	case typ == "string":
		node = schema.String()
	case typ == "integer" || typ == "number":
		node = schema.Number()
	case typ == "boolean":
		node = schema.Boolean()
	case typ == "array":
		elem := schema.String()
		if src.Items != nil && src.Items.Value != nil {
			item, err := nodeFromSchema(src.Items.Value, order, childPath(src.Items.Ref, path+"[]"))
			if err != nil {
				return schema.Node{}, err
			}
			elem = item
		}
		node = schema.Array(elem)
	case typ == "object" || len(src.Properties) > 0:
		props, err := propertiesFromSchema(src, order, path)
		if err != nil {
			return schema.Node{}, err
		}
		node = schema.Object(props...)
	default:
		node = schema.String()
	}

	if src.MinLength != 0 {
		node = node.MinLen(int(src.MinLength))
	}
	if src.MaxLength != nil {
		node = node.MaxLen(int(*src.MaxLength))
	}
	if src.Min != nil {
		node = node.Min(*src.Min)
	}
	if src.Max != nil {
		node = node.Max(*src.Max)
	}
	if src.Pattern != "" {
		node = node.Matches(src.Pattern)
	}
	if src.Format == "email" || src.Format == "uri" {
		node = node.Format(src.Format)
	}
	return node, nil
}

func metaFromExtensions(src *openapi3.Schema) (schema.Meta, error) {
	var meta schema.Meta
	if raw, ok := src.Extensions[adminExtensionKey]; ok {
		if err := decodeExtension(raw, &meta); err != nil {
			return schema.Meta{}, err
		}
	}
	if meta.Description == "" {
		meta.Description = src.Description
	}
	if meta.Relation == nil {
		meta.Relation = relationFromExtensions(src.Extensions)
	}
	if meta.Relation == nil && src.Items != nil && src.Items.Value != nil {
		meta.Relation = relationFromExtensions(src.Items.Value.Extensions)
	}
	return meta, nil
}

// decodeExtension round-trips the generic extension payload through JSON so
// it lands in typed structs.
func decodeExtension(raw any, target any) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode %s extension: %w", adminExtensionKey, err)
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s extension: %w", adminExtensionKey, err)
	}
	return nil
}

func isObject(src *openapi3.Schema) bool {
	return firstSchemaType(src.Type) == "object" || len(src.Properties) > 0
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func enumValues(values []any) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if str, ok := value.(string); ok {
			out = append(out, str)
			continue
		}
		out = append(out, fmt.Sprint(value))
	}
	return out
}
