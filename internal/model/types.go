package model

import "sort"

// FieldType is the widget-level type assigned to a field. Metadata may carry
// any string; the constants below are the ones the renderers understand.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeRichText FieldType = "rich-text"
	FieldTypeImage    FieldType = "image"
	FieldTypeFile     FieldType = "file"
	FieldTypeRelation FieldType = "relation"
)

// hiddenFromTable lists the types whose showInTable defaults to false.
var hiddenFromTable = map[FieldType]struct{}{
	FieldTypeTextarea: {},
	FieldTypeRichText: {},
	FieldTypeImage:    {},
	FieldTypeFile:     {},
}

const (
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleFormat    = "format"
)

// ValidationRule mirrors a schema constraint. Bounds travel in
// Params["value"], patterns in Params["pattern"].
type ValidationRule struct {
	Kind   string            `json:"kind"`
	Params map[string]string `json:"params,omitempty"`
}

// Option is a select choice.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Display holds resolved visibility flags. Order is nil when unset.
type Display struct {
	ShowInTable  bool `json:"showInTable"`
	ShowInForm   bool `json:"showInForm"`
	ShowInDetail bool `json:"showInDetail"`
	Order        *int `json:"order,omitempty"`
}

// RelationConfig describes the entity a relation field points to.
type RelationConfig struct {
	Entity       string `json:"entity"`
	DisplayField string `json:"displayField"`
	Multiple     bool   `json:"multiple"`
}

// FieldConfig is the normalized description of one entity field.
type FieldConfig struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	Type        FieldType         `json:"type"`
	Required    bool              `json:"required"`
	Placeholder string            `json:"placeholder,omitempty"`
	Description string            `json:"description,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Display     Display           `json:"display"`
	Relation    *RelationConfig   `json:"relation,omitempty"`
	Validations []ValidationRule  `json:"validations,omitempty"`
	Widget      string            `json:"widget,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// OptionLabel returns the label registered for value, or value itself.
func (f FieldConfig) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Actions toggles the CRUD operations exposed for an entity.
type Actions struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
	Bulk   bool `json:"bulk"`
	Export bool `json:"export"`
	Import bool `json:"import"`
}

// Section groups form fields.
type Section struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}

// UIHints carries layout hints for list and form views.
type UIHints struct {
	PageSize int       `json:"pageSize"`
	Sections []Section `json:"sections,omitempty"`
}

// AdminConfig is the aggregate configuration for one entity's admin surface.
type AdminConfig struct {
	Entity      string        `json:"entity"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Fields      []FieldConfig `json:"fields"`
	Actions     Actions       `json:"actions"`
	UI          UIHints       `json:"ui"`
}

// Field looks up a field by key.
func (c AdminConfig) Field(key string) (FieldConfig, bool) {
	for _, field := range c.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldConfig{}, false
}

// FormFields returns the fields shown in forms, sorted by display order.
func (c AdminConfig) FormFields() []FieldConfig {
	return SortByOrder(filterFields(c.Fields, func(f FieldConfig) bool { return f.Display.ShowInForm }))
}

// TableFields returns the fields shown in tables, sorted by display order.
func (c AdminConfig) TableFields() []FieldConfig {
	return SortByOrder(filterFields(c.Fields, func(f FieldConfig) bool { return f.Display.ShowInTable }))
}

// DetailFields returns the fields shown in detail views, sorted by display
// order.
func (c AdminConfig) DetailFields() []FieldConfig {
	return SortByOrder(filterFields(c.Fields, func(f FieldConfig) bool { return f.Display.ShowInDetail }))
}

// SortByOrder returns a copy of fields sorted by Display.Order. Fields without
// an order keep their declaration position after the ordered ones.
func SortByOrder(fields []FieldConfig) []FieldConfig {
	out := append([]FieldConfig(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Display.Order, out[j].Display.Order
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
	return out
}

func filterFields(fields []FieldConfig, keep func(FieldConfig) bool) []FieldConfig {
	out := make([]FieldConfig, 0, len(fields))
	for _, field := range fields {
		if keep(field) {
			out = append(out, field)
		}
	}
	return out
}
