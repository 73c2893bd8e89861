// Package jsonpage renders admin pages as JSON for script clients that build
// their own UI from the derived configuration.
package jsonpage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/theme"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Renderer serializes render.Page values.
type Renderer struct {
	indent bool
}

var _ render.Renderer = (*Renderer)(nil)

// Option customises the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent() Option {
	return func(r *Renderer) {
		r.indent = true
	}
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "application/json" }

type themeView struct {
	Name     string            `json:"name,omitempty"`
	Variant  string            `json:"variant,omitempty"`
	CSSVars  map[string]string `json:"cssVars,omitempty"`
	Assets   map[string]string `json:"assets,omitempty"`
	Partials map[string]string `json:"partials,omitempty"`
}

type document struct {
	render.Page
	Hidden []render.HiddenField `json:"hidden,omitempty"`
	Theme  *themeView           `json:"theme,omitempty"`
}

// Render encodes page. Option errors are mapped onto form controls the same
// way the HTML renderer does; unmatched messages join FormErrors.
func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page.Kind == render.PageForm && len(options.Errors) > 0 {
		groups := make([]form.Group, len(page.Groups))
		for i, group := range page.Groups {
			groups[i] = form.Group{Title: group.Title, Controls: append([]form.Control(nil), group.Controls...)}
		}
		page.FormErrors = render.MergeFormErrors(page.FormErrors, render.ApplyErrors(page.Config, groups, options.Errors)...)
		page.Groups = groups
	}

	doc := document{
		Page:   page,
		Hidden: render.SortedHiddenFields(render.MergeHiddenFields(options.Hidden, page.Hidden...)),
	}
	if cfg := options.Theme; cfg != nil {
		view := &themeView{Name: cfg.Theme, Variant: cfg.Variant, CSSVars: cfg.CSSVars, Partials: cfg.Partials}
		if cfg.AssetURL != nil {
			view.Assets = map[string]string{}
			for _, key := range []string{theme.AssetStylesheet, theme.AssetScript} {
				if url := cfg.AssetURL(key); url != "" {
					view.Assets[key] = url
				}
			}
		}
		doc.Theme = view
	}

	var (
		out []byte
		err error
	)
	if r.indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("json renderer: marshal %s page: %w", page.Kind, err)
	}
	return out, nil
}
