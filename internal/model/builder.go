package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-admingen/pkg/schema"
)

var (
	errEntityNameMissing = errors.New("model builder: entity name is required")
	errNoProperties      = errors.New("model builder: entity has no properties")
	errDuplicateKey      = errors.New("model builder: duplicate property key")
)

// Builder walks an annotated entity schema and produces an AdminConfig. It
// holds no state between calls.
type Builder struct {
	opts Options
}

// New constructs a Builder. Zero-valued options fall back to defaults.
func New(options Options) *Builder {
	return &Builder{opts: options.withDefaults()}
}

// Build derives the admin configuration for entity.
func (b *Builder) Build(entity schema.Entity) (AdminConfig, error) {
	if strings.TrimSpace(entity.Name) == "" {
		return AdminConfig{}, errEntityNameMissing
	}
	if len(entity.Properties) == 0 {
		return AdminConfig{}, fmt.Errorf("%w: %s", errNoProperties, entity.Name)
	}

	fields, err := b.Fields(entity)
	if err != nil {
		return AdminConfig{}, err
	}

	cfg := AdminConfig{
		Entity:      entity.Name,
		Title:       entity.Title,
		Description: entity.Description,
		Fields:      fields,
		Actions:     resolveActions(entity.Actions),
		UI:          b.resolveLayout(entity.Layout, fields),
	}
	if cfg.Title == "" {
		cfg.Title = b.opts.Labeler(entity.Name)
	}
	return cfg, nil
}

// Fields derives one FieldConfig per property in declaration order.
func (b *Builder) Fields(entity schema.Entity) ([]FieldConfig, error) {
	seen := make(map[string]struct{}, len(entity.Properties))
	fields := make([]FieldConfig, 0, len(entity.Properties))
	for _, prop := range entity.Properties {
		key := strings.TrimSpace(prop.Key)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", errDuplicateKey, key)
		}
		seen[key] = struct{}{}
		fields = append(fields, b.field(prop))
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoProperties, entity.Name)
	}
	return fields, nil
}

func (b *Builder) field(prop schema.Property) FieldConfig {
	node, optional := prop.Node.Unwrap()
	meta := prop.Meta

	field := FieldConfig{
		Key:         prop.Key,
		Label:       meta.Label,
		Required:    !optional,
		Placeholder: meta.Placeholder,
		Description: meta.Description,
		Metadata:    filterMetadata(meta.Extra),
	}
	if field.Label == "" {
		field.Label = b.opts.Labeler(prop.Key)
	}

	field.Relation = resolveRelation(meta.Relation, node, b.opts.DefaultDisplayField)
	switch {
	case meta.Type != "":
		field.Type = FieldType(meta.Type)
	case field.Relation != nil:
		field.Type = FieldTypeRelation
	default:
		field.Type = InferType(prop.Key, node)
	}
	if field.Type == FieldTypeRelation && field.Relation == nil && meta.Relation != nil {
		field.Relation = &RelationConfig{DisplayField: b.opts.DefaultDisplayField}
	}

	field.Options = resolveOptions(node, meta.Options)
	field.Display = resolveDisplay(field.Type, meta.Display)
	field.Validations = validationsFromConstraints(node)
	return field
}

// InferType maps a schema node to a field type. Strings consult key
// substrings; kinds without a widget of their own degrade to text.
func InferType(key string, node schema.Node) FieldType {
	switch node.Kind {
	case schema.KindString:
		return inferStringType(key)
	case schema.KindNumber:
		return FieldTypeNumber
	case schema.KindBoolean:
		return FieldTypeBoolean
	case schema.KindEnum:
		return FieldTypeSelect
	case schema.KindDate:
		return FieldTypeDate
	default:
		return FieldTypeText
	}
}

var stringKeyRules = []struct {
	needles []string
	typ     FieldType
}{
	{needles: []string{"email"}, typ: FieldTypeEmail},
	{needles: []string{"url", "website"}, typ: FieldTypeURL},
	{needles: []string{"description", "comment", "content"}, typ: FieldTypeTextarea},
	{needles: []string{"image", "photo", "avatar"}, typ: FieldTypeImage},
}

func inferStringType(key string) FieldType {
	lowered := strings.ToLower(key)
	for _, rule := range stringKeyRules {
		for _, needle := range rule.needles {
			if strings.Contains(lowered, needle) {
				return rule.typ
			}
		}
	}
	return FieldTypeText
}

func resolveOptions(node schema.Node, overrides []schema.Option) []Option {
	if len(overrides) > 0 {
		out := make([]Option, 0, len(overrides))
		for _, opt := range overrides {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			out = append(out, Option{Value: opt.Value, Label: label})
		}
		return out
	}
	if node.Kind != schema.KindEnum || len(node.Values) == 0 {
		return nil
	}
	out := make([]Option, 0, len(node.Values))
	for _, value := range node.Values {
		out = append(out, Option{Value: value, Label: value})
	}
	return out
}

func resolveDisplay(typ FieldType, meta schema.Display) Display {
	_, hidden := hiddenFromTable[typ]
	display := Display{
		ShowInTable:  !hidden,
		ShowInForm:   true,
		ShowInDetail: true,
	}
	if meta.ShowInTable != nil {
		display.ShowInTable = *meta.ShowInTable
	}
	if meta.ShowInForm != nil {
		display.ShowInForm = *meta.ShowInForm
	}
	if meta.ShowInDetail != nil {
		display.ShowInDetail = *meta.ShowInDetail
	}
	if meta.Order != nil {
		order := *meta.Order
		display.Order = &order
	}
	return display
}

func validationsFromConstraints(node schema.Node) []ValidationRule {
	c := node.Constraints
	var rules []ValidationRule
	addValue := func(kind, value string) {
		rules = append(rules, ValidationRule{Kind: kind, Params: map[string]string{"value": value}})
	}
	if c.Minimum != nil {
		addValue(ValidationRuleMin, strconv.FormatFloat(*c.Minimum, 'f', -1, 64))
	}
	if c.Maximum != nil {
		addValue(ValidationRuleMax, strconv.FormatFloat(*c.Maximum, 'f', -1, 64))
	}
	if c.MinLength != nil {
		addValue(ValidationRuleMinLength, strconv.Itoa(*c.MinLength))
	}
	if c.MaxLength != nil {
		addValue(ValidationRuleMaxLength, strconv.Itoa(*c.MaxLength))
	}
	if c.Pattern != "" {
		rules = append(rules, ValidationRule{Kind: ValidationRulePattern, Params: map[string]string{"pattern": c.Pattern}})
	}
	if c.Format != "" {
		addValue(ValidationRuleFormat, c.Format)
	}
	return rules
}

func resolveActions(meta schema.Actions) Actions {
	actions := Actions{
		Create: true,
		Read:   true,
		Update: true,
		Delete: true,
		Bulk:   true,
	}
	apply := func(target *bool, override *bool) {
		if override != nil {
			*target = *override
		}
	}
	apply(&actions.Create, meta.Create)
	apply(&actions.Read, meta.Read)
	apply(&actions.Update, meta.Update)
	apply(&actions.Delete, meta.Delete)
	apply(&actions.Bulk, meta.Bulk)
	apply(&actions.Export, meta.Export)
	apply(&actions.Import, meta.Import)
	return actions
}

// resolveLayout drops section entries that do not name a derived field.
func (b *Builder) resolveLayout(layout schema.Layout, fields []FieldConfig) UIHints {
	hints := UIHints{PageSize: layout.PageSize}
	if hints.PageSize <= 0 {
		hints.PageSize = b.opts.DefaultPageSize
	}
	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[field.Key] = struct{}{}
	}
	for _, section := range layout.Sections {
		var keys []string
		for _, key := range section.Fields {
			if _, ok := known[key]; ok {
				keys = append(keys, key)
			}
		}
		if len(keys) == 0 {
			continue
		}
		hints.Sections = append(hints.Sections, Section{Title: section.Title, Fields: keys})
	}
	return hints
}

// CloneConfig returns a deep copy so decorators cannot alias builder output.
func CloneConfig(cfg AdminConfig) AdminConfig {
	out := cfg
	out.Fields = make([]FieldConfig, len(cfg.Fields))
	for i, field := range cfg.Fields {
		out.Fields[i] = cloneField(field)
	}
	if len(cfg.UI.Sections) > 0 {
		out.UI.Sections = make([]Section, len(cfg.UI.Sections))
		for i, section := range cfg.UI.Sections {
			out.UI.Sections[i] = Section{Title: section.Title, Fields: append([]string(nil), section.Fields...)}
		}
	}
	return out
}

func cloneField(field FieldConfig) FieldConfig {
	out := field
	out.Options = append([]Option(nil), field.Options...)
	out.Relation = cloneRelation(field.Relation)
	out.Metadata = cloneStringMap(field.Metadata)
	if field.Display.Order != nil {
		order := *field.Display.Order
		out.Display.Order = &order
	}
	if len(field.Validations) > 0 {
		out.Validations = make([]ValidationRule, len(field.Validations))
		for i, rule := range field.Validations {
			out.Validations[i] = ValidationRule{Kind: rule.Kind, Params: cloneStringMap(rule.Params)}
		}
	}
	return out
}
