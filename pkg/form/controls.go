package form

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/widgets"
)

// Choice is one entry of a dropdown.
type Choice struct {
	Value    string `json:"value,omitempty"`
	Label    string `json:"label,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Control is the render-ready view of one form field.
type Control struct {
	Field       model.FieldConfig    `json:"field,omitempty"`
	Widget      string               `json:"widget,omitempty"`
	Value       string               `json:"value,omitempty"`
	Checked     bool                 `json:"checked,omitempty"`
	Choices     []Choice             `json:"choices,omitempty"`
	Chips       []relation.Candidate `json:"chips,omitempty"`
	Multiple    bool                 `json:"multiple,omitempty"`
	NoOptions   bool                 `json:"noOptions,omitempty"`
	DateHint    string               `json:"dateHint,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
	Placeholder string               `json:"placeholder,omitempty"`
}

// Group is a titled set of controls. The trailing group collects fields that
// no section names and has an empty title.
type Group struct {
	Title    string    `json:"title,omitempty"`
	Controls []Control `json:"controls,omitempty"`
}

// Controls builds one control per form-visible field, in display order.
// Relation candidates are fetched through the configured fetcher.
func (f *Form) Controls(ctx context.Context) []Control {
	fields := f.cfg.FormFields()
	values := f.Values()
	errs := f.Errors()
	registry := widgets.NewRegistry()

	out := make([]Control, 0, len(fields))
	for _, field := range fields {
		ctrl := Control{
			Field:       field,
			Widget:      registry.WidgetFor(field),
			Errors:      errs[field.Key],
			Placeholder: field.Placeholder,
		}
		value := values[field.Key]

		switch field.Type {
		case model.FieldTypeBoolean:
			ctrl.Checked, _ = value.(bool)
		case model.FieldTypeNumber:
			ctrl.Value = formatNumber(value)
		case model.FieldTypeDate:
			ctrl.Value = FormatDate(value)
			if f.InvalidDate(field.Key) {
				ctrl.DateHint = schema.InvalidDateLabel
			}
		case model.FieldTypeSelect:
			ctrl.Value = stringOf(value)
			ctrl.Choices = selectChoices(field, ctrl.Value)
		case model.FieldTypeRelation:
			f.relationControl(ctx, &ctrl, value)
		default:
			ctrl.Value = stringOf(value)
		}
		if ctrl.Widget == widgets.WidgetDropdown && ctrl.Choices == nil {
			ctrl.Choices = selectChoices(field, ctrl.Value)
		}
		out = append(out, ctrl)
	}
	return out
}

// Groups arranges Controls by the configured sections.
func (f *Form) Groups(ctx context.Context) []Group {
	controls := f.Controls(ctx)
	if len(f.cfg.UI.Sections) == 0 {
		return []Group{{Controls: controls}}
	}
	byKey := make(map[string]Control, len(controls))
	for _, ctrl := range controls {
		byKey[ctrl.Field.Key] = ctrl
	}
	placed := make(map[string]struct{}, len(controls))
	groups := make([]Group, 0, len(f.cfg.UI.Sections)+1)
	for _, section := range f.cfg.UI.Sections {
		group := Group{Title: section.Title}
		for _, key := range section.Fields {
			ctrl, ok := byKey[key]
			if !ok {
				continue
			}
			if _, done := placed[key]; done {
				continue
			}
			placed[key] = struct{}{}
			group.Controls = append(group.Controls, ctrl)
		}
		if len(group.Controls) > 0 {
			groups = append(groups, group)
		}
	}
	var rest Group
	for _, ctrl := range controls {
		if _, ok := placed[ctrl.Field.Key]; !ok {
			rest.Controls = append(rest.Controls, ctrl)
		}
	}
	if len(rest.Controls) > 0 {
		groups = append(groups, rest)
	}
	return groups
}

func (f *Form) relationControl(ctx context.Context, ctrl *Control, value any) {
	cfg := model.RelationConfig{}
	if ctrl.Field.Relation != nil {
		cfg = *ctrl.Field.Relation
	}
	candidates := relation.Options(ctx, f.fetcher, cfg, f.logger)
	sel := relation.NewSelection(cfg, candidates, value)
	ctrl.Multiple = cfg.Multiple
	ctrl.NoOptions = len(candidates) == 0

	if cfg.Multiple {
		ctrl.Chips = sel.Selected()
		for _, c := range sel.Available() {
			ctrl.Choices = append(ctrl.Choices, Choice{Value: c.Value, Label: c.Label})
		}
		return
	}

	ctrl.Value = stringOf(sel.Value())
	ctrl.Choices = append(ctrl.Choices, Choice{Value: "", Label: relation.NoneLabel, Selected: ctrl.Value == ""})
	for _, c := range candidates {
		ctrl.Choices = append(ctrl.Choices, Choice{Value: c.Value, Label: c.Label, Selected: c.Value == ctrl.Value})
	}
}

func selectChoices(field model.FieldConfig, current string) []Choice {
	out := make([]Choice, 0, len(field.Options)+1)
	if !field.Required {
		out = append(out, Choice{Value: "", Label: "", Selected: current == ""})
	}
	for _, opt := range field.Options {
		out = append(out, Choice{Value: opt.Value, Label: opt.Label, Selected: opt.Value == current})
	}
	return out
}

func formatNumber(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
