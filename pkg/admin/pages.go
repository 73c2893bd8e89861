package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/table"
)

// Page titles.
const (
	IndexTitle  = "Administration"
	CreateTitle = "Nouvel élément"
	EditTitle   = "Modifier l'élément"
)

// Links returns the navigation entries; active marks the current entity.
func (a *Admin) Links(active string) []render.EntityLink {
	entities := a.Entities()
	links := make([]render.EntityLink, 0, len(entities))
	for _, entity := range entities {
		links = append(links, render.EntityLink{
			Entity: entity.Name(),
			Title:  entity.Config.Title,
			Href:   render.EntityPath(a.basePath, entity.Name()),
			Active: entity.Name() == active,
		})
	}
	return links
}

// IndexPage lists the registered entities.
func (a *Admin) IndexPage() render.Page {
	return render.Page{
		Kind:     render.PageIndex,
		Title:    IndexTitle,
		BasePath: a.basePath,
		Entities: a.Links(""),
	}
}

// ListPage loads one page of records for name and builds the table view.
func (a *Admin) ListPage(ctx context.Context, name string, query crud.ListQuery) (render.Page, error) {
	entity, err := a.Entity(name)
	if err != nil {
		return render.Page{}, err
	}
	cfg := entity.Config
	query = query.Normalize(cfg.UI.PageSize)
	result, err := entity.Controller.List(ctx, query)
	if err != nil {
		return render.Page{}, err
	}

	tbl := a.cells(ctx, cfg, cfg.TableFields()).Build(cfg, result.Data, table.ActionOptions{})
	listPath := render.EntityPath(a.basePath, name)
	page := a.basePage(render.PageList, cfg.Title, entity)
	page.Table = tbl
	page.Query = query
	page.SortLinks = render.NewSortLinks(listPath, query, tbl.Columns)
	page.Pagination = render.NewPagination(listPath, query, result.Meta)
	page.ListHref = render.ListHref(listPath, query)
	if cfg.Actions.Create {
		page.CreateHref = listPath + "/new"
	}
	if cfg.Actions.Bulk && cfg.Actions.Delete {
		page.BulkAction = listPath + "/bulk-delete"
	}
	return page, nil
}

// FormPage builds the create (id == "") or edit page for f.
func (a *Admin) FormPage(ctx context.Context, name string, f *form.Form, id string) (render.Page, error) {
	entity, err := a.Entity(name)
	if err != nil {
		return render.Page{}, err
	}
	title, action := CreateTitle, render.EntityPath(a.basePath, name)
	if id != "" {
		title, action = EditTitle, render.ItemPath(a.basePath, name, id)
	}
	page := a.basePage(render.PageForm, entity.Config.Title+" · "+title, entity)
	page.Groups = f.Groups(ctx)
	page.Action = action
	page.Editing = id != ""
	page.Multipart = render.HasUpload(entity.Config)
	page.ListHref = render.EntityPath(a.basePath, name)
	return page, nil
}

// DetailPage loads record id of name.
func (a *Admin) DetailPage(ctx context.Context, name, id string) (render.Page, error) {
	entity, err := a.Entity(name)
	if err != nil {
		return render.Page{}, err
	}
	record, err := entity.Controller.Get(ctx, id)
	if err != nil {
		return render.Page{}, fmt.Errorf("admin: load %s/%s: %w", name, id, err)
	}
	cfg := entity.Config
	title := relation.Label(record, "")
	if title == "" {
		title = id
	}
	page := a.basePage(render.PageDetail, cfg.Title+" · "+title, entity)
	page.Record = record
	page.Details = render.NewDetails(a.cells(ctx, cfg, cfg.DetailFields()), cfg, record)
	page.ListHref = render.EntityPath(a.basePath, name)
	return page, nil
}

func (a *Admin) basePage(kind render.PageKind, title string, entity *Entity) render.Page {
	return render.Page{
		Kind:       kind,
		Title:      title,
		BasePath:   a.basePath,
		Entity:     entity.Name(),
		EntityPath: render.EntityPath(a.basePath, entity.Name()),
		Config:     entity.Config,
		Entities:   a.Links(entity.Name()),
	}
}

// cells builds a cell renderer that knows the labels of every relation shown
// among fields.
func (a *Admin) cells(ctx context.Context, cfg model.AdminConfig, fields []model.FieldConfig) *table.Renderer {
	options := []table.RendererOption{table.WithLanguage(a.language)}
	seen := make(map[string]struct{})
	for _, field := range fields {
		if field.Relation == nil || strings.TrimSpace(field.Relation.Entity) == "" {
			continue
		}
		if _, done := seen[field.Relation.Entity]; done {
			continue
		}
		seen[field.Relation.Entity] = struct{}{}
		candidates := relation.Options(ctx, a.relations, *field.Relation, a.logger.Named(cfg.Entity))
		options = append(options, table.WithRelationLabels(field.Relation.Entity, candidates))
	}
	return table.NewRenderer(options...)
}

// RenderRequest selects the renderer and theme for one page.
type RenderRequest struct {
	// Renderer names a registered renderer. It wins over Accept.
	Renderer string
	// Accept is the request Accept header used for negotiation.
	Accept  string
	Theme   string
	Variant string
	Options render.RenderOptions
}

// Render renders page and returns the output with its content type.
func (a *Admin) Render(ctx context.Context, page render.Page, req RenderRequest) ([]byte, string, error) {
	var (
		renderer render.Renderer
		err      error
	)
	if req.Renderer != "" {
		renderer, err = a.registry.Get(req.Renderer)
	} else {
		renderer, err = a.registry.Negotiate(req.Accept)
	}
	if err != nil {
		return nil, "", fmt.Errorf("admin: %w", err)
	}

	options := req.Options
	if options.Theme == nil {
		options.Theme, err = a.Theme(req.Theme, req.Variant)
		if err != nil {
			return nil, "", err
		}
	}
	out, err := renderer.Render(ctx, page, options)
	if err != nil {
		return nil, "", fmt.Errorf("admin: render %s page: %w", page.Kind, err)
	}
	return out, renderer.ContentType(), nil
}
