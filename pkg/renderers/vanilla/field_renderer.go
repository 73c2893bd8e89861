package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/render/template"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-admingen/pkg/widgets"
)

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string

	used map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates: templates,
		registry:  registry,
		partials:  partials,
		used:      make(map[string]struct{}),
	}
}

// render returns the control wrapped in its label, description, hint and
// error chrome.
func (r *componentRenderer) render(control form.Control) (string, error) {
	name := control.Widget
	if name == "" {
		name = widgets.WidgetInput
	}
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", name, control.Field.Key)
	}

	var markup bytes.Buffer
	data := components.ComponentData{
		Template: r.templates,
		Partials: r.partials,
		ID:       controlID(control.Field.Key),
	}
	if err := descriptor.Renderer(&markup, control, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", name, control.Field.Key, err)
	}
	r.used[name] = struct{}{}
	return buildFieldMarkup(control, name, markup.String()), nil
}

func (r *componentRenderer) groups(groups []form.Group) ([]groupView, error) {
	out := make([]groupView, 0, len(groups))
	for _, group := range groups {
		view := groupView{Title: group.Title}
		for _, control := range group.Controls {
			markup, err := r.render(control)
			if err != nil {
				return nil, err
			}
			view.Fields = append(view.Fields, markup)
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *componentRenderer) assets() ([]string, []components.Script) {
	if len(r.used) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.used))
	for name := range r.used {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

func buildFieldMarkup(control form.Control, widget, markup string) string {
	field := control.Field
	id := controlID(field.Key)

	var b strings.Builder
	b.Grow(len(markup) + 256)
	b.WriteString(`<div class="ag-field ag-field-`)
	b.WriteString(html.EscapeString(string(field.Type)))
	if len(control.Errors) > 0 {
		b.WriteString(` ag-field-invalid`)
	}
	b.WriteString(`" data-field="`)
	b.WriteString(html.EscapeString(field.Key))
	b.WriteString(`">`)

	if label := strings.TrimSpace(field.Label); label != "" {
		if labelSupportsFor(widget) {
			fmt.Fprintf(&b, `<label id="%s" for="%s" class="ag-label">`, html.EscapeString(labelID(field.Key)), html.EscapeString(id))
		} else {
			fmt.Fprintf(&b, `<label id="%s" class="ag-label">`, html.EscapeString(labelID(field.Key)))
		}
		b.WriteString(html.EscapeString(label))
		if field.Required {
			b.WriteString(`<span class="ag-required" aria-hidden="true">*</span>`)
		}
		b.WriteString(`</label>`)
	}

	b.WriteString(markup)

	if desc := strings.TrimSpace(field.Description); desc != "" {
		b.WriteString(`<p class="ag-description">`)
		b.WriteString(html.EscapeString(desc))
		b.WriteString(`</p>`)
	}
	if len(control.Errors) > 0 {
		b.WriteString(`<ul class="ag-field-errors" role="alert">`)
		for _, message := range control.Errors {
			b.WriteString(`<li>`)
			b.WriteString(html.EscapeString(message))
			b.WriteString(`</li>`)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
