package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-admingen/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput         = "input"
	WidgetNumeric       = "numeric"
	WidgetToggle        = "toggle"
	WidgetDropdown      = "dropdown"
	WidgetCalendar      = "calendar"
	WidgetTextarea      = "textarea"
	WidgetRichText      = "rich-text"
	WidgetFile          = "file"
	WidgetRelationOne   = "relation-select"
	WidgetRelationChips = "relation-chips"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.FieldConfig) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit metadata or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Metadata["widget"] is honoured
// before matcher evaluation.
func (r *Registry) Resolve(field model.FieldConfig) (string, bool) {
	if explicit := strings.TrimSpace(field.Metadata["widget"]); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator and fills FieldConfig.Widget for every
// field that does not carry one yet.
func (r *Registry) Decorate(cfg *model.AdminConfig) error {
	if r == nil || cfg == nil {
		return nil
	}
	for idx := range cfg.Fields {
		if cfg.Fields[idx].Widget != "" {
			continue
		}
		if widget, ok := r.Resolve(cfg.Fields[idx]); ok {
			cfg.Fields[idx].Widget = widget
		}
	}
	return nil
}

// WidgetFor resolves a widget for a field that skipped decoration.
func (r *Registry) WidgetFor(field model.FieldConfig) string {
	if field.Widget != "" {
		return field.Widget
	}
	if widget, ok := r.Resolve(field); ok {
		return widget
	}
	return WidgetInput
}

func isType(types ...model.FieldType) Matcher {
	return func(field model.FieldConfig) bool {
		for _, typ := range types {
			if field.Type == typ {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetRelationChips, 100, func(field model.FieldConfig) bool {
		return field.Type == model.FieldTypeRelation && field.Relation != nil && field.Relation.Multiple
	})
	r.Register(WidgetRelationOne, 95, isType(model.FieldTypeRelation))
	r.Register(WidgetToggle, 90, isType(model.FieldTypeBoolean))
	r.Register(WidgetDropdown, 80, func(field model.FieldConfig) bool {
		return field.Type == model.FieldTypeSelect || (field.Type == model.FieldTypeText && len(field.Options) > 0)
	})
	r.Register(WidgetCalendar, 70, isType(model.FieldTypeDate))
	r.Register(WidgetNumeric, 60, isType(model.FieldTypeNumber))
	r.Register(WidgetRichText, 50, isType(model.FieldTypeRichText))
	r.Register(WidgetTextarea, 40, isType(model.FieldTypeTextarea))
	r.Register(WidgetFile, 30, isType(model.FieldTypeImage, model.FieldTypeFile))
	r.Register(WidgetInput, 0, func(model.FieldConfig) bool { return true })
}
