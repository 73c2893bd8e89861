package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
)

const templatePrefix = "templates/components/"

// ScriptSrc is the behaviour script shared by the interactive widgets. The
// layout resolves it against the theme's asset prefix.
const ScriptSrc = "admin.js"

// NewDefaultRegistry returns a registry with one component per built-in
// widget.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, name := range []string{NameInput, NameNumeric, NameToggle, NameDropdown, NameCalendar, NameTextarea, NameFile, NameRelationOne} {
		registry.MustRegister(name, Descriptor{Renderer: templateComponentRenderer(name)})
	}
	interactive := []Script{{Src: ScriptSrc, Defer: true}}
	registry.MustRegister(NameRichText, Descriptor{Renderer: templateComponentRenderer(NameRichText), Scripts: interactive})
	registry.MustRegister(NameRelationChips, Descriptor{Renderer: templateComponentRenderer(NameRelationChips), Scripts: interactive})
	return registry
}

// PartialKey is the theme partial that overrides the template of name.
func PartialKey(name string) string {
	return "forms." + name
}

func templateComponentRenderer(name string) Renderer {
	templatePath := templatePrefix + name + ".tmpl"
	return func(buf *bytes.Buffer, control form.Control, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templatePath)
		}
		resolved := templatePath
		if candidate := strings.TrimSpace(data.Partials[PartialKey(name)]); candidate != "" {
			resolved = candidate
		}

		rendered, err := data.Template.RenderTemplate(resolved, map[string]any{
			"control":    control,
			"id":         data.ID,
			"inputType":  inputType(control.Field.Type),
			"noneLabel":  relation.NoneLabel,
			"emptyLabel": relation.EmptyLabel,
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolved, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func inputType(typ model.FieldType) string {
	switch typ {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeURL:
		return "url"
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeDate:
		return "date"
	default:
		return "text"
	}
}
