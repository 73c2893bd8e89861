package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/model"
)

// Transformer mutates a derived AdminConfig before decorators run.
type Transformer interface {
	Transform(ctx context.Context, cfg *model.AdminConfig) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, cfg *model.AdminConfig) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, cfg *model.AdminConfig) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, cfg)
}

// Transformers chains transformers in order.
type Transformers []Transformer

// Transform runs every transformer and stops at the first error.
func (ts Transformers) Transform(ctx context.Context, cfg *model.AdminConfig) error {
	for _, t := range ts {
		if t == nil {
			continue
		}
		if err := t.Transform(ctx, cfg); err != nil {
			return err
		}
	}
	return nil
}

// Overrides patches derived configurations from a declarative YAML or JSON
// document keyed by entity name:
//
//	vehicles:
//	  title: Véhicules
//	  pageSize: 25
//	  actions: {bulk: false}
//	  fields:
//	    plate: {label: Immatriculation, order: 1}
//	    notes: {showInTable: false, widget: rich-text}
//
// Entities absent from the document pass through unchanged.
type Overrides struct {
	entities map[string]entityPatch
}

type entityPatch struct {
	Title       string                `yaml:"title" json:"title"`
	Description string                `yaml:"description" json:"description"`
	PageSize    int                   `yaml:"pageSize" json:"pageSize"`
	Actions     map[string]bool       `yaml:"actions" json:"actions"`
	Fields      map[string]fieldPatch `yaml:"fields" json:"fields"`
}

type fieldPatch struct {
	Label        string            `yaml:"label" json:"label"`
	Description  string            `yaml:"description" json:"description"`
	Placeholder  string            `yaml:"placeholder" json:"placeholder"`
	Widget       string            `yaml:"widget" json:"widget"`
	ShowInTable  *bool             `yaml:"showInTable" json:"showInTable"`
	ShowInForm   *bool             `yaml:"showInForm" json:"showInForm"`
	ShowInDetail *bool             `yaml:"showInDetail" json:"showInDetail"`
	Order        *int              `yaml:"order" json:"order"`
	Metadata     map[string]string `yaml:"metadata" json:"metadata"`
}

// ParseOverrides decodes an overrides document. JSON is accepted since it is
// valid YAML.
func ParseOverrides(data []byte) (*Overrides, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("admin overrides: document is empty")
	}
	var entities map[string]entityPatch
	if err := yaml.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("admin overrides: parse document: %w", err)
	}
	return &Overrides{entities: entities}, nil
}

// LoadOverrides reads an overrides document from fsys.
func LoadOverrides(fsys fs.FS, path string) (*Overrides, error) {
	if fsys == nil {
		return nil, errors.New("admin overrides: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("admin overrides: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("admin overrides: read %s: %w", path, err)
	}
	return ParseOverrides(data)
}

// Transform applies the patch registered for cfg.Entity. A patch naming an
// unknown field or action is an error.
func (o *Overrides) Transform(ctx context.Context, cfg *model.AdminConfig) error {
	if cfg == nil {
		return errors.New("admin overrides: config is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, ok := o.entities[cfg.Entity]
	if !ok {
		return nil
	}

	if patch.Title != "" {
		cfg.Title = patch.Title
	}
	if patch.Description != "" {
		cfg.Description = patch.Description
	}
	if patch.PageSize > 0 {
		cfg.UI.PageSize = patch.PageSize
	}
	for name, enabled := range patch.Actions {
		flag := actionFlag(&cfg.Actions, name)
		if flag == nil {
			return fmt.Errorf("admin overrides: unknown action %q for %q", name, cfg.Entity)
		}
		*flag = enabled
	}
	for key, fp := range patch.Fields {
		idx := fieldIndex(cfg.Fields, key)
		if idx < 0 {
			return fmt.Errorf("admin overrides: field %q not found in %q", key, cfg.Entity)
		}
		applyFieldPatch(&cfg.Fields[idx], fp)
	}
	return nil
}

func applyFieldPatch(field *model.FieldConfig, patch fieldPatch) {
	if patch.Label != "" {
		field.Label = patch.Label
	}
	if patch.Description != "" {
		field.Description = patch.Description
	}
	if patch.Placeholder != "" {
		field.Placeholder = patch.Placeholder
	}
	if patch.Widget != "" {
		field.Widget = patch.Widget
	}
	if patch.ShowInTable != nil {
		field.Display.ShowInTable = *patch.ShowInTable
	}
	if patch.ShowInForm != nil {
		field.Display.ShowInForm = *patch.ShowInForm
	}
	if patch.ShowInDetail != nil {
		field.Display.ShowInDetail = *patch.ShowInDetail
	}
	if patch.Order != nil {
		order := *patch.Order
		field.Display.Order = &order
	}
	if len(patch.Metadata) > 0 {
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
	}
}

func actionFlag(actions *model.Actions, name string) *bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "create":
		return &actions.Create
	case "read":
		return &actions.Read
	case "update":
		return &actions.Update
	case "delete":
		return &actions.Delete
	case "bulk":
		return &actions.Bulk
	case "export":
		return &actions.Export
	case "import":
		return &actions.Import
	default:
		return nil
	}
}

func fieldIndex(fields []model.FieldConfig, key string) int {
	for i := range fields {
		if fields[i].Key == key {
			return i
		}
	}
	return -1
}

func mergeStringMap(dst, src map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
