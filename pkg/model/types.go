package model

import internalmodel "github.com/goliatone/go-admingen/internal/model"

// FieldType re-exports the internal FieldType enumeration.
type FieldType = internalmodel.FieldType

const (
	FieldTypeText     = internalmodel.FieldTypeText
	FieldTypeNumber   = internalmodel.FieldTypeNumber
	FieldTypeBoolean  = internalmodel.FieldTypeBoolean
	FieldTypeSelect   = internalmodel.FieldTypeSelect
	FieldTypeTextarea = internalmodel.FieldTypeTextarea
	FieldTypeDate     = internalmodel.FieldTypeDate
	FieldTypeEmail    = internalmodel.FieldTypeEmail
	FieldTypeURL      = internalmodel.FieldTypeURL
	FieldTypeRichText = internalmodel.FieldTypeRichText
	FieldTypeImage    = internalmodel.FieldTypeImage
	FieldTypeFile     = internalmodel.FieldTypeFile
	FieldTypeRelation = internalmodel.FieldTypeRelation
)

const (
	ValidationRuleMin       = internalmodel.ValidationRuleMin
	ValidationRuleMax       = internalmodel.ValidationRuleMax
	ValidationRuleMinLength = internalmodel.ValidationRuleMinLength
	ValidationRuleMaxLength = internalmodel.ValidationRuleMaxLength
	ValidationRulePattern   = internalmodel.ValidationRulePattern
	ValidationRuleFormat    = internalmodel.ValidationRuleFormat
)

type (
	ValidationRule = internalmodel.ValidationRule
	Option         = internalmodel.Option
	Display        = internalmodel.Display
	RelationConfig = internalmodel.RelationConfig
	FieldConfig    = internalmodel.FieldConfig
	Actions        = internalmodel.Actions
	Section        = internalmodel.Section
	UIHints        = internalmodel.UIHints
	AdminConfig    = internalmodel.AdminConfig
	RelationKind   = internalmodel.RelationKind
)

// SortByOrder sorts a copy of fields by display order.
func SortByOrder(fields []FieldConfig) []FieldConfig {
	return internalmodel.SortByOrder(fields)
}

// InferType exposes the type inference used by the builder.
var InferType = internalmodel.InferType

// DefaultLabeler exposes the label generator used when metadata has none.
var DefaultLabeler = internalmodel.DefaultLabeler

// NormalizeRelationKind parses ORM-style relation kinds.
var NormalizeRelationKind = internalmodel.NormalizeRelationKind

// Clone returns a deep copy of cfg.
func Clone(cfg AdminConfig) AdminConfig {
	return internalmodel.CloneConfig(cfg)
}
