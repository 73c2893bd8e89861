package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/widgets"
)

type fakeService struct {
	mu      sync.Mutex
	items   []crud.Record
	fetches int
	next    int
}

func (s *fakeService) FetchItems(_ context.Context, q crud.ListQuery) (crud.ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	return crud.Paginate(s.items, q), nil
}

func (s *fakeService) CreateItem(_ context.Context, data crud.Record) (crud.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	item := crud.CloneRecord(data)
	item["id"] = fmt.Sprintf("n%d", s.next)
	s.items = append(s.items, item)
	return crud.CloneRecord(item), nil
}

func (s *fakeService) UpdateItem(_ context.Context, id string, partial crud.Record) (crud.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if crud.RecordID(item) == id {
			for k, v := range partial {
				item[k] = v
			}
			return crud.CloneRecord(item), nil
		}
	}
	return nil, crud.ErrNotFound
}

func (s *fakeService) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if crud.RecordID(item) == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return crud.ErrNotFound
}

func (s *fakeService) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func seed(records ...crud.Record) *fakeService {
	return &fakeService{items: records}
}

func categoriesEntity() schema.Entity {
	return schema.NewEntity("categories",
		schema.Field("name", schema.String().NonEmpty()),
	)
}

func vehiclesEntity() schema.Entity {
	return schema.NewEntity("vehicles",
		schema.Field("name", schema.String().NonEmpty()),
		schema.Field("isActive", schema.Boolean()),
		schema.Field("category", schema.String(), schema.Meta{
			Relation: &schema.Relation{Entity: "categories"},
		}),
	)
}

type fixture struct {
	admin      *Admin
	categories *fakeService
	vehicles   *fakeService
}

func newFixture(t *testing.T, options ...Option) fixture {
	t.Helper()
	a, err := New(options...)
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	fx := fixture{
		admin: a,
		categories: seed(
			crud.Record{"id": "5", "name": "Transport"},
			crud.Record{"id": "6", "name": "Logistique"},
		),
		vehicles: seed(
			crud.Record{"id": "v1", "name": "Bus", "isActive": true, "category": "5"},
			crud.Record{"id": "v2", "name": "Van", "isActive": false, "category": "6"},
		),
	}
	ctx := context.Background()
	a.MustRegister(ctx, categoriesEntity(), fx.categories)
	a.MustRegister(ctx, vehiclesEntity(), fx.vehicles)
	return fx
}

func TestRegisterDerivesConfig(t *testing.T) {
	fx := newFixture(t)

	entity, err := fx.admin.Entity("vehicles")
	if err != nil {
		t.Fatalf("entity: %v", err)
	}
	category, ok := entity.Config.Field("category")
	if !ok {
		t.Fatalf("category field missing")
	}
	if category.Widget != widgets.WidgetRelationOne {
		t.Fatalf("category widget = %q, want %q", category.Widget, widgets.WidgetRelationOne)
	}
	if diff := cmp.Diff([]string{"categories", "vehicles"}, fx.admin.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	var order []string
	for _, e := range fx.admin.Entities() {
		order = append(order, e.Name())
	}
	if diff := cmp.Diff([]string{"categories", "vehicles"}, order); diff != "" {
		t.Fatalf("registration order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterErrors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	if _, err := fx.admin.Register(ctx, categoriesEntity(), seed()); !errors.Is(err, ErrEntityExists) {
		t.Fatalf("duplicate register error = %v, want ErrEntityExists", err)
	}
	if _, err := fx.admin.Register(ctx, schema.NewEntity("tags"), nil); !errors.Is(err, ErrNilService) {
		t.Fatalf("nil service error = %v, want ErrNilService", err)
	}
	if _, err := fx.admin.Entity("missing"); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("unknown entity error = %v, want ErrUnknownEntity", err)
	}
}

func TestDeriveRunsTransformerBeforeDecorators(t *testing.T) {
	var calls []string
	transformer := TransformerFunc(func(_ context.Context, cfg *model.AdminConfig) error {
		calls = append(calls, "transform")
		cfg.Title = "Flotte"
		return nil
	})
	decorator := model.DecoratorFunc(func(cfg *model.AdminConfig) error {
		calls = append(calls, "decorate:"+cfg.Title)
		return nil
	})
	a, err := New(WithTransformer(transformer), WithDecorators(decorator))
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}

	cfg, err := a.Derive(context.Background(), vehiclesEntity())
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if cfg.Title != "Flotte" {
		t.Fatalf("title = %q, want Flotte", cfg.Title)
	}
	if diff := cmp.Diff([]string{"transform", "decorate:Flotte"}, calls); diff != "" {
		t.Fatalf("pipeline order mismatch (-want +got):\n%s", diff)
	}
	if len(a.Names()) != 0 {
		t.Fatalf("derive must not register, got %v", a.Names())
	}
}

func TestDeriveWrapsTransformerError(t *testing.T) {
	boom := errors.New("boom")
	a, err := New(WithTransformer(TransformerFunc(func(context.Context, *model.AdminConfig) error {
		return boom
	})))
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	if _, err := a.Derive(context.Background(), vehiclesEntity()); !errors.Is(err, boom) {
		t.Fatalf("derive error = %v, want wrapped boom", err)
	}
}

func TestRelationCacheInvalidatedOnWrite(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	relations := fx.admin.Relations()

	first, err := relations.Fetch(ctx, "categories")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(first))
	}
	if _, err := relations.Fetch(ctx, "categories"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := fx.categories.fetchCount(); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}

	entity, _ := fx.admin.Entity("categories")
	if out := entity.Controller.Delete(ctx, "6"); out.Err != nil {
		t.Fatalf("delete: %v", out.Err)
	}

	after, err := relations.Fetch(ctx, "categories")
	if err != nil {
		t.Fatalf("fetch after delete: %v", err)
	}
	if got := fx.categories.fetchCount(); got != 2 {
		t.Fatalf("expected a refetch after delete, got %d upstream fetches", got)
	}
	if len(after) != 1 {
		t.Fatalf("expected 1 candidate after delete, got %d", len(after))
	}
}

func TestRelationFetchUnknownEntity(t *testing.T) {
	fx := newFixture(t)
	if _, err := fx.admin.Relations().Fetch(context.Background(), "missing"); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("fetch error = %v, want ErrUnknownEntity", err)
	}
}

func TestNewFormUsesRegisteredConfig(t *testing.T) {
	fx := newFixture(t)

	f, err := fx.admin.NewForm("vehicles", map[string]any{"name": "Bus", "category": "5"})
	if err != nil {
		t.Fatalf("new form: %v", err)
	}
	if got := f.Values()["name"]; got != "Bus" {
		t.Fatalf("initial name = %v, want Bus", got)
	}
	if _, err := fx.admin.NewForm("missing", nil); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("new form error = %v, want ErrUnknownEntity", err)
	}
}

func TestThemeResolution(t *testing.T) {
	a, err := New(WithBasePath("/backoffice/"))
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	if a.BasePath() != "/backoffice" {
		t.Fatalf("base path = %q", a.BasePath())
	}
	dark, err := a.Theme("", "dark")
	if err != nil {
		t.Fatalf("theme: %v", err)
	}
	if got := dark.CSSVars["--color-bg"]; got != "#111827" {
		t.Fatalf("dark --color-bg = %q", got)
	}
	if _, err := a.Theme("neon", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}
