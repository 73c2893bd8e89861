package admin

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/renderers/jsonpage"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla"
	"github.com/goliatone/go-admingen/pkg/testsupport"
)

func TestIndexPageLinks(t *testing.T) {
	fx := newFixture(t)

	page := fx.admin.IndexPage()
	if page.Kind != render.PageIndex || page.Title != IndexTitle {
		t.Fatalf("unexpected index page %q/%q", page.Kind, page.Title)
	}
	var hrefs []string
	for _, link := range page.Entities {
		hrefs = append(hrefs, link.Href)
		if link.Active {
			t.Fatalf("index page must not mark %q active", link.Entity)
		}
	}
	if diff := cmp.Diff([]string{"/admin/categories", "/admin/vehicles"}, hrefs); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestListPageResolvesRelationLabels(t *testing.T) {
	fx := newFixture(t)

	page, err := fx.admin.ListPage(context.Background(), "vehicles", crud.ListQuery{Sort: "name", Dir: crud.Desc})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if page.Kind != render.PageList {
		t.Fatalf("kind = %q", page.Kind)
	}
	if len(page.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Table.Rows))
	}
	if got := page.Table.Rows[0].ID; got != "v2" {
		t.Fatalf("first row = %q, want v2 (name desc)", got)
	}

	var texts []string
	for _, cell := range page.Table.Rows[1].Cells {
		texts = append(texts, cell.Text)
	}
	if !containsString(texts, "Transport") {
		t.Fatalf("expected relation label Transport among cells %v", texts)
	}
	if page.CreateHref != "/admin/vehicles/new" {
		t.Fatalf("create href = %q", page.CreateHref)
	}
	if !strings.Contains(page.ListHref, "sort=name") {
		t.Fatalf("list href lost the query: %q", page.ListHref)
	}
	if page.Pagination.Total != 2 || page.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected pagination %+v", page.Pagination)
	}
	for _, link := range page.Entities {
		if link.Active != (link.Entity == "vehicles") {
			t.Fatalf("active flag wrong for %q", link.Entity)
		}
	}
}

func TestListPageServedFromCacheUntilWrite(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := fx.admin.ListPage(ctx, "categories", crud.ListQuery{}); err != nil {
			t.Fatalf("list page: %v", err)
		}
	}
	if got := fx.categories.fetchCount(); got != 1 {
		t.Fatalf("expected one fetch for repeated list, got %d", got)
	}

	entity, _ := fx.admin.Entity("categories")
	if out := entity.Controller.Create(ctx, crud.Record{"name": "Loisirs"}); out.Err != nil {
		t.Fatalf("create: %v", out.Err)
	}
	page, err := fx.admin.ListPage(ctx, "categories", crud.ListQuery{})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page.Table.Rows) != 3 {
		t.Fatalf("expected the new record after invalidation, got %d rows", len(page.Table.Rows))
	}
}

func TestFormPageCreateAndEdit(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	f, err := fx.admin.NewForm("vehicles", nil)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	create, err := fx.admin.FormPage(ctx, "vehicles", f, "")
	if err != nil {
		t.Fatalf("form page: %v", err)
	}
	if create.Editing || create.Action != "/admin/vehicles" {
		t.Fatalf("unexpected create page editing=%v action=%q", create.Editing, create.Action)
	}
	if !strings.HasSuffix(create.Title, CreateTitle) {
		t.Fatalf("create title = %q", create.Title)
	}
	if len(create.Groups) == 0 {
		t.Fatalf("expected form groups")
	}

	edit, err := fx.admin.FormPage(ctx, "vehicles", f, "v1")
	if err != nil {
		t.Fatalf("form page: %v", err)
	}
	if !edit.Editing || edit.Action != "/admin/vehicles/v1" {
		t.Fatalf("unexpected edit page editing=%v action=%q", edit.Editing, edit.Action)
	}
}

func TestDetailPage(t *testing.T) {
	fx := newFixture(t)

	page, err := fx.admin.DetailPage(context.Background(), "vehicles", "v1")
	if err != nil {
		t.Fatalf("detail page: %v", err)
	}
	if !strings.HasSuffix(page.Title, "Bus") {
		t.Fatalf("detail title = %q", page.Title)
	}
	if len(page.Details) == 0 {
		t.Fatalf("expected detail entries")
	}
	if _, err := fx.admin.DetailPage(context.Background(), "vehicles", "nope"); err == nil {
		t.Fatalf("expected error for missing record")
	}
}

func TestRenderNegotiatesRenderer(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	page, err := fx.admin.ListPage(ctx, "vehicles", crud.ListQuery{})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}

	html, contentType, err := fx.admin.Render(ctx, page, RenderRequest{Accept: "text/html"})
	if err != nil {
		t.Fatalf("render html: %v", err)
	}
	if !strings.HasPrefix(contentType, "text/html") || !strings.Contains(string(html), "<table") {
		t.Fatalf("expected html table, got %q", contentType)
	}

	out, contentType, err := fx.admin.Render(ctx, page, RenderRequest{Accept: "application/json"})
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("content type = %q", contentType)
	}
	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("decode json page: %v", err)
	}
	if doc["kind"] != string(render.PageList) {
		t.Fatalf("json kind = %v", doc["kind"])
	}

	if _, _, err := fx.admin.Render(ctx, page, RenderRequest{Renderer: "pdf"}); err == nil {
		t.Fatalf("expected error for unknown renderer")
	}
	if _, ct, err := fx.admin.Render(ctx, page, RenderRequest{Renderer: jsonpage.Name, Accept: "text/html"}); err != nil || ct != "application/json" {
		t.Fatalf("explicit renderer must win over Accept, got %q (%v)", ct, err)
	}
	if _, ct, err := fx.admin.Render(ctx, page, RenderRequest{Renderer: vanilla.Name, Variant: "dark"}); err != nil || !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("vanilla dark render failed: %q (%v)", ct, err)
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func TestFormPageFollowsDefinitionSections(t *testing.T) {
	a, err := New()
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	ctx := context.Background()
	for _, name := range []string{"categories", "amenities", "vehicles"} {
		entity := testsupport.MustLoadEntity(t, "../definitions/defaults/"+name+".yaml", name)
		a.MustRegister(ctx, entity, seed())
	}

	f, err := a.NewForm("vehicles", nil)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	page, err := a.FormPage(ctx, "vehicles", f, "")
	if err != nil {
		t.Fatalf("form page: %v", err)
	}
	var titles []string
	for _, group := range page.Groups {
		titles = append(titles, group.Title)
	}
	if diff := cmp.Diff([]string{"Vehicle", "Details"}, titles); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if page.Editing || page.Action != "/admin/vehicles" {
		t.Fatalf("unexpected create form action %q", page.Action)
	}
}
