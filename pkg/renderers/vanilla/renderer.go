package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/render"
	rendertemplate "github.com/goliatone/go-admingen/pkg/render/template"
	gotemplate "github.com/goliatone/go-admingen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-admingen/pkg/table"
	"github.com/goliatone/go-admingen/pkg/theme"
)

// Name is the registry name of the HTML renderer.
const Name = "vanilla"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default widget components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// Renderer renders admin pages to HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, registry: cfg.registry}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type groupView struct {
	Title  string   `json:"title,omitempty"`
	Fields []string `json:"fields"`
}

type actionView struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	Href           string `json:"href"`
	Confirm        bool   `json:"confirm,omitempty"`
	ConfirmMessage string `json:"confirmMessage,omitempty"`
}

type rowView struct {
	ID      string       `json:"id"`
	Cells   []string     `json:"cells"`
	Actions []actionView `json:"actions,omitempty"`
}

type detailView struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Render renders page into the theme layout. Errors in options are mapped
// onto form controls; unmatched messages are shown above the form.
func (r *Renderer) Render(ctx context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	partials := resolvePartials(options.Theme)
	cr := newComponentRenderer(r.templates, r.registry, partials)

	content, err := r.content(page, options, partials, cr)
	if err != nil {
		return nil, err
	}

	stylesheets, scripts := cr.assets()
	layout := map[string]any{
		"page":        page,
		"title":       page.Title,
		"content":     content,
		"stylesheets": stylesheets,
		"scripts":     resolveScripts(scripts, options.Theme),
	}
	if cfg := options.Theme; cfg != nil {
		layout["theme"] = map[string]string{"name": cfg.Theme, "variant": cfg.Variant}
		layout["cssVars"] = theme.CSSVarsStyle(cfg.CSSVars)
		layout["stylesheet"] = assetURL(cfg, theme.AssetStylesheet)
	}
	if layout["stylesheet"] == nil || layout["stylesheet"] == "" {
		layout["inlineStyle"] = readAsset(StylesheetName)
	}

	result, err := r.templates.RenderTemplate(partials[theme.PartialLayout], layout)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) content(page render.Page, options render.RenderOptions, partials map[string]string, cr *componentRenderer) (string, error) {
	key, ok := pagePartials[page.Kind]
	if !ok {
		return "", fmt.Errorf("vanilla renderer: unknown page kind %q", page.Kind)
	}

	data := map[string]any{
		"page":           page,
		"hidden":         render.SortedHiddenFields(render.MergeHiddenFields(options.Hidden, page.Hidden...)),
		"confirmMessage": table.DefaultConfirmMessage,
	}
	switch page.Kind {
	case render.PageList:
		rows := rowViews(page)
		data["rows"] = rows
		colspan := len(page.SortLinks)
		if page.BulkAction != "" {
			colspan++
		}
		data["colspan"] = colspan
	case render.PageForm:
		groups := cloneGroups(page.Groups)
		formErrors := page.FormErrors
		if len(options.Errors) > 0 {
			formErrors = render.MergeFormErrors(formErrors, render.ApplyErrors(page.Config, groups, options.Errors)...)
		}
		views, err := cr.groups(groups)
		if err != nil {
			return "", fmt.Errorf("vanilla renderer: %w", err)
		}
		data["groups"] = views
		data["formErrors"] = formErrors
	case render.PageDetail:
		data["details"] = detailViews(page.Details)
		if id := table.RecordID(page.Record); id != "" && page.Config.Actions.Update {
			data["editHref"] = itemHref(page.EntityPath, id, "edit")
		}
	}

	result, err := r.templates.RenderTemplate(partials[key], data)
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: render %s page: %w", page.Kind, err)
	}
	return result, nil
}

var pagePartials = map[render.PageKind]string{
	render.PageIndex:  theme.PartialIndex,
	render.PageList:   theme.PartialList,
	render.PageForm:   theme.PartialForm,
	render.PageDetail: theme.PartialDetail,
}

// resolvePartials layers theme partials over the embedded defaults. Keys the
// theme does not set keep their default template.
func resolvePartials(cfg *gotheme.RendererConfig) map[string]string {
	partials := theme.DefaultPartials()
	if cfg == nil {
		return partials
	}
	for key, value := range cfg.Partials {
		if strings.TrimSpace(value) != "" {
			partials[key] = value
		}
	}
	return partials
}

func assetURL(cfg *gotheme.RendererConfig, key string) string {
	if cfg == nil || cfg.AssetURL == nil {
		return ""
	}
	return cfg.AssetURL(key)
}

// resolveScripts points the shared behaviour script at the theme asset, or
// inlines the embedded copy when the theme serves none.
func resolveScripts(scripts []components.Script, cfg *gotheme.RendererConfig) []components.Script {
	out := make([]components.Script, 0, len(scripts))
	for _, script := range scripts {
		if script.Src == components.ScriptSrc {
			if src := assetURL(cfg, theme.AssetScript); src != "" {
				script.Src = src
			} else {
				script = components.Script{Inline: readAsset(ScriptName)}
			}
		}
		out = append(out, script)
	}
	return out
}

func rowViews(page render.Page) []rowView {
	rows := make([]rowView, 0, len(page.Table.Rows))
	for _, row := range page.Table.Rows {
		view := rowView{ID: row.ID, Cells: make([]string, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			view.Cells = append(view.Cells, cellMarkup(cell))
		}
		for _, action := range row.Actions {
			if action.ID == "" {
				continue
			}
			view.Actions = append(view.Actions, actionView{
				Name:           action.Name,
				Label:          action.Label,
				Href:           itemHref(page.EntityPath, action.ID, action.Name),
				Confirm:        action.Confirm,
				ConfirmMessage: action.ConfirmMessage,
			})
		}
		rows = append(rows, view)
	}
	return rows
}

func detailViews(entries []render.DetailEntry) []detailView {
	out := make([]detailView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, detailView{Label: entry.Field.Label, Value: cellMarkup(entry.Cell)})
	}
	return out
}

func itemHref(entityPath, id, action string) string {
	return strings.TrimRight(entityPath, "/") + "/" + url.PathEscape(id) + "/" + action
}

func cloneGroups(groups []form.Group) []form.Group {
	out := make([]form.Group, len(groups))
	for i, group := range groups {
		out[i] = form.Group{Title: group.Title, Controls: append([]form.Control(nil), group.Controls...)}
	}
	return out
}
