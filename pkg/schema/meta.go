package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Meta is the presentation metadata paired with a property. It lives next to
// the node in a Property and is never stored on the node itself.
type Meta struct {
	Label       string            `json:"label,omitempty" yaml:"label,omitempty"`
	Type        string            `json:"type,omitempty" yaml:"type,omitempty"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Display     Display           `json:"display,omitempty" yaml:"display,omitempty"`
	Relation    *Relation         `json:"relation,omitempty" yaml:"relation,omitempty"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Display overrides. Nil pointers leave the derived default in place.
type Display struct {
	ShowInTable  *bool `json:"showInTable,omitempty" yaml:"showInTable,omitempty"`
	ShowInForm   *bool `json:"showInForm,omitempty" yaml:"showInForm,omitempty"`
	ShowInDetail *bool `json:"showInDetail,omitempty" yaml:"showInDetail,omitempty"`
	Order        *int  `json:"order,omitempty" yaml:"order,omitempty"`
}

// Relation describes a reference to records of another entity.
type Relation struct {
	Entity       string `json:"entity" yaml:"entity"`
	DisplayField string `json:"displayField,omitempty" yaml:"displayField,omitempty"`
	Multiple     bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// Option is a select choice. Documents may write it as a bare scalar, which
// serves as both value and label, or as a {value, label} mapping.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

type optionFields Option

// UnmarshalYAML accepts a scalar or a mapping.
func (o *Option) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*o = Option{Value: node.Value, Label: node.Value}
		return nil
	}
	var fields optionFields
	if err := node.Decode(&fields); err != nil {
		return err
	}
	*o = Option(fields).withLabel()
	return nil
}

// UnmarshalJSON accepts a string, number, boolean or object.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '{':
		var fields optionFields
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return err
		}
		*o = Option(fields).withLabel()
		return nil
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*o = Option{Value: value, Label: value}
		return nil
	case '[':
		return fmt.Errorf("schema: option must be a scalar or an object, got %s", trimmed)
	default:
		value := string(trimmed)
		*o = Option{Value: value, Label: value}
		return nil
	}
}

func (o Option) withLabel() Option {
	if o.Label == "" {
		o.Label = o.Value
	}
	return o
}

// IsZero reports whether no metadata has been attached.
func (m Meta) IsZero() bool {
	return m.Label == "" && m.Type == "" && m.Placeholder == "" && m.Description == "" &&
		len(m.Options) == 0 && m.Relation == nil && len(m.Extra) == 0 &&
		m.Display == (Display{})
}

// Property pairs a key with its node and metadata.
type Property struct {
	Key  string `json:"key"`
	Node Node   `json:"node"`
	Meta Meta   `json:"meta,omitempty"`
}

// Field builds a Property. At most one Meta is honoured.
func Field(key string, node Node, meta ...Meta) Property {
	prop := Property{Key: key, Node: node}
	if len(meta) > 0 {
		prop.Meta = meta[0]
	}
	return prop
}

// Actions toggles for the entity CRUD surface. Nil entries keep defaults.
type Actions struct {
	Create *bool `json:"create,omitempty" yaml:"create,omitempty"`
	Read   *bool `json:"read,omitempty" yaml:"read,omitempty"`
	Update *bool `json:"update,omitempty" yaml:"update,omitempty"`
	Delete *bool `json:"delete,omitempty" yaml:"delete,omitempty"`
	Bulk   *bool `json:"bulk,omitempty" yaml:"bulk,omitempty"`
	Export *bool `json:"export,omitempty" yaml:"export,omitempty"`
	Import *bool `json:"import,omitempty" yaml:"import,omitempty"`
}

// Section groups form fields under a title.
type Section struct {
	Title  string   `json:"title" yaml:"title"`
	Fields []string `json:"fields" yaml:"fields"`
}

// Layout carries entity level UI hints.
type Layout struct {
	PageSize int       `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Entity is an object-shaped schema with a name and entity level metadata.
type Entity struct {
	Name        string     `json:"name"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Properties  []Property `json:"properties"`
	Actions     Actions    `json:"actions,omitempty"`
	Layout      Layout     `json:"layout,omitempty"`
}

var (
	ErrEntityNameMissing = errors.New("schema: entity name is required")
	ErrNoProperties      = errors.New("schema: entity has no properties")
	ErrUnknownProperty   = errors.New("schema: unknown property")
)

// NewEntity builds an entity from ordered properties.
func NewEntity(name string, props ...Property) Entity {
	return Entity{Name: name, Properties: cloneProperties(props)}
}

// Lookup returns the property registered under key.
func (e Entity) Lookup(key string) (Property, bool) {
	for _, prop := range e.Properties {
		if prop.Key == key {
			return prop, true
		}
	}
	return Property{}, false
}

// Keys returns property keys in declaration order.
func (e Entity) Keys() []string {
	keys := make([]string, 0, len(e.Properties))
	for _, prop := range e.Properties {
		keys = append(keys, prop.Key)
	}
	return keys
}

// Annotate returns a copy of the entity with meta attached to key. The
// receiver is left untouched.
func (e Entity) Annotate(key string, meta Meta) (Entity, error) {
	out := e
	out.Properties = cloneProperties(e.Properties)
	for i := range out.Properties {
		if out.Properties[i].Key == key {
			out.Properties[i].Meta = meta
			return out, nil
		}
	}
	return e, ErrUnknownProperty
}

// Shape returns the entity as an object node.
func (e Entity) Shape() Node {
	return Object(e.Properties...)
}

// Bool returns a pointer to v. Handy for Display and Actions literals.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
