package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gotheme "github.com/goliatone/go-theme"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/goliatone/go-admingen/pkg/crud"
	"github.com/goliatone/go-admingen/pkg/form"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/render"
	"github.com/goliatone/go-admingen/pkg/renderers/jsonpage"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/theme"
	"github.com/goliatone/go-admingen/pkg/widgets"
)

// DefaultBasePath is the mount point of the HTML pages.
const DefaultBasePath = "/admin"

var (
	// ErrUnknownEntity is returned when no entity is registered under a name.
	ErrUnknownEntity = errors.New("admin: unknown entity")
	// ErrEntityExists is returned when an entity name is registered twice.
	ErrEntityExists = errors.New("admin: entity already registered")
	// ErrNilService is returned when Register receives no service.
	ErrNilService = errors.New("admin: service is required")
)

// Option customises the Admin configuration.
type Option func(*Admin)

// WithModelBuilder injects a custom config builder.
func WithModelBuilder(builder model.Builder) Option {
	return func(a *Admin) {
		a.builder = builder
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(a *Admin) {
		a.registry = registry
	}
}

// WithDefaultRenderer names the renderer used when a request names none and
// sends no Accept header.
func WithDefaultRenderer(name string) Option {
	return func(a *Admin) {
		a.defaultRenderer = strings.TrimSpace(name)
	}
}

// WithTransformer registers a Transformer that runs after derivation and
// before the decorators.
func WithTransformer(t Transformer) Option {
	return func(a *Admin) {
		a.transformer = t
	}
}

// WithDecorators registers decorators run against every derived config.
// The widget registry always runs last so decorators may pin a widget.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(a *Admin) {
		a.decorators = append(a.decorators, decorators...)
	}
}

// WithWidgets replaces the widget registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(a *Admin) {
		if registry != nil {
			a.widgets = registry
		}
	}
}

// WithRelationFetcher replaces the in-process relation source, for instance
// with a relation.HTTPFetcher pointing at another admin.
func WithRelationFetcher(fetcher relation.Fetcher) Option {
	return func(a *Admin) {
		a.upstream = fetcher
	}
}

// WithRelationTTL sets the lifetime of cached relation candidates.
func WithRelationTTL(ttl time.Duration) Option {
	return func(a *Admin) {
		if ttl > 0 {
			a.relationTTL = ttl
		}
	}
}

// WithThemes supplies the theme resolver and the theme applied by default.
func WithThemes(resolver *theme.Resolver, name, variant string) Option {
	return func(a *Admin) {
		a.themes = resolver
		a.themeName = strings.TrimSpace(name)
		a.themeVariant = strings.TrimSpace(variant)
	}
}

// WithLogger attaches a logger shared with controllers and forms.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Admin) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithBulkPolicy sets the bulk delete policy of every controller.
func WithBulkPolicy(policy crud.BulkPolicy) Option {
	return func(a *Admin) {
		a.policy = policy
	}
}

// WithBasePath mounts the HTML pages under path.
func WithBasePath(path string) Option {
	return func(a *Admin) {
		if trimmed := strings.TrimRight(strings.TrimSpace(path), "/"); trimmed != "" {
			a.basePath = trimmed
		}
	}
}

// WithUploader sets the uploader used by forms with file fields.
func WithUploader(uploader form.Uploader) Option {
	return func(a *Admin) {
		a.uploader = uploader
	}
}

// WithPageSize sets the list page size for entities that declare none. It
// only applies to the default builder.
func WithPageSize(size int) Option {
	return func(a *Admin) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

// WithLanguage sets the locale used to format numbers in cells.
func WithLanguage(tag language.Tag) Option {
	return func(a *Admin) {
		a.language = tag
	}
}

// Entity is a registered entity: its schema, the derived configuration and
// the controller bound to its service.
type Entity struct {
	Schema     schema.Entity
	Config     model.AdminConfig
	Controller *crud.Controller
}

// Name returns the entity name.
func (e *Entity) Name() string { return e.Config.Entity }

// Admin holds the registered entities and the shared caches.
type Admin struct {
	builder         model.Builder
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	decorators      []model.Decorator
	widgets         *widgets.Registry
	upstream        relation.Fetcher
	relationTTL     time.Duration
	relations       *relation.CachedFetcher
	cache           *crud.QueryCache
	themes          *theme.Resolver
	themeName       string
	themeVariant    string
	logger          *zap.Logger
	policy          crud.BulkPolicy
	basePath        string
	uploader        form.Uploader
	pageSize        int
	language        language.Tag

	mu       sync.RWMutex
	entities map[string]*Entity
	order    []string
}

// New constructs an Admin. Missing collaborators get the built-in
// implementations: the vanilla and JSON renderers, the bundled theme and the
// in-process relation source.
func New(options ...Option) (*Admin, error) {
	a := &Admin{
		defaultRenderer: vanilla.Name,
		relationTTL:     relation.DefaultTTL,
		cache:           crud.NewQueryCache(),
		logger:          zap.NewNop(),
		policy:          crud.AbortOnFirstError,
		basePath:        DefaultBasePath,
		pageSize:        crud.DefaultPageSize,
		language:        language.French,
		entities:        make(map[string]*Entity),
	}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	if a.builder == nil {
		a.builder = model.NewBuilder(model.WithDefaultPageSize(a.pageSize))
	}
	if a.widgets == nil {
		a.widgets = widgets.NewRegistry()
	}
	if a.registry == nil {
		a.registry = render.NewRegistry()
		html, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("admin: default renderer: %w", err)
		}
		a.registry.MustRegister(html)
		a.registry.MustRegister(jsonpage.New())
	}
	if a.defaultRenderer != "" && a.registry.Has(a.defaultRenderer) {
		if err := a.registry.SetDefault(a.defaultRenderer); err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
	}
	if a.themes == nil {
		manifest, err := theme.Default()
		if err != nil {
			return nil, fmt.Errorf("admin: default theme: %w", err)
		}
		a.themes = theme.NewResolver(theme.DefaultName, a.themeVariant)
		if err := a.themes.Register(manifest); err != nil {
			return nil, fmt.Errorf("admin: %w", err)
		}
	}
	if a.upstream == nil {
		a.upstream = serviceFetcher{admin: a}
	}
	a.relations = relation.NewCachedFetcher(a.upstream, relation.WithTTL(a.relationTTL))
	a.cache.OnInvalidate(a.relations.Invalidate)
	return a, nil
}

// Derive runs the pipeline for entity without registering it: build,
// transform, decorate, then resolve widgets.
func (a *Admin) Derive(ctx context.Context, entity schema.Entity) (model.AdminConfig, error) {
	if err := ctx.Err(); err != nil {
		return model.AdminConfig{}, err
	}
	cfg, err := a.builder.Build(entity)
	if err != nil {
		return model.AdminConfig{}, fmt.Errorf("admin: build %q: %w", entity.Name, err)
	}
	if a.transformer != nil {
		if err := a.transformer.Transform(ctx, &cfg); err != nil {
			return model.AdminConfig{}, fmt.Errorf("admin: transform %q: %w", entity.Name, err)
		}
	}
	if err := model.ApplyDecorators(&cfg, append(append([]model.Decorator(nil), a.decorators...), a.widgets)...); err != nil {
		return model.AdminConfig{}, fmt.Errorf("admin: decorate %q: %w", entity.Name, err)
	}
	return cfg, nil
}

// Register derives entity and binds service to it.
func (a *Admin) Register(ctx context.Context, entity schema.Entity, service crud.Service) (*Entity, error) {
	if service == nil {
		return nil, ErrNilService
	}
	cfg, err := a.Derive(ctx, entity)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.entities[cfg.Entity]; exists {
		return nil, fmt.Errorf("%w: %q", ErrEntityExists, cfg.Entity)
	}
	registered := &Entity{
		Schema: entity,
		Config: cfg,
		Controller: crud.NewController(cfg.Entity, service,
			crud.WithCache(a.cache),
			crud.WithBulkPolicy(a.policy),
			crud.WithLogger(a.logger.Named(cfg.Entity)),
			crud.WithPageSize(cfg.UI.PageSize),
		),
	}
	a.entities[cfg.Entity] = registered
	a.order = append(a.order, cfg.Entity)
	a.logger.Debug("entity registered",
		zap.String("entity", cfg.Entity),
		zap.Int("fields", len(cfg.Fields)),
	)
	return registered, nil
}

// MustRegister panics when Register fails.
func (a *Admin) MustRegister(ctx context.Context, entity schema.Entity, service crud.Service) *Entity {
	registered, err := a.Register(ctx, entity, service)
	if err != nil {
		panic(err)
	}
	return registered
}

// Entity returns the entity registered under name.
func (a *Admin) Entity(name string) (*Entity, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entity, ok := a.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return entity, nil
}

// Entities returns the registered entities in registration order.
func (a *Admin) Entities() []*Entity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Entity, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, a.entities[name])
	}
	return out
}

// Names returns the registered entity names, sorted.
func (a *Admin) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := append([]string(nil), a.order...)
	sort.Strings(names)
	return names
}

// NewForm creates form state for the named entity, wired to the shared
// relation cache and uploader.
func (a *Admin) NewForm(name string, initial map[string]any) (*form.Form, error) {
	entity, err := a.Entity(name)
	if err != nil {
		return nil, err
	}
	options := []form.Option{
		form.WithRelationFetcher(a.relations),
		form.WithLogger(a.logger.Named(name)),
	}
	if a.uploader != nil {
		options = append(options, form.WithUploader(a.uploader))
	}
	return form.New(entity.Config, entity.Schema, initial, options...), nil
}

// Relations returns the cached relation fetcher.
func (a *Admin) Relations() *relation.CachedFetcher { return a.relations }

// Cache returns the list cache shared by every controller.
func (a *Admin) Cache() *crud.QueryCache { return a.cache }

// Logger returns the configured logger.
func (a *Admin) Logger() *zap.Logger { return a.logger }

// BasePath returns the mount point of the HTML pages.
func (a *Admin) BasePath() string { return a.basePath }

// Registry returns the renderer registry.
func (a *Admin) Registry() *render.Registry { return a.registry }

// Theme resolves a theme configuration. Empty names use the admin defaults.
func (a *Admin) Theme(name, variant string) (*gotheme.RendererConfig, error) {
	if strings.TrimSpace(name) == "" {
		name = a.themeName
	}
	if strings.TrimSpace(variant) == "" {
		variant = a.themeVariant
	}
	cfg, err := a.themes.Config(name, variant)
	if err != nil {
		return nil, fmt.Errorf("admin: %w", err)
	}
	return cfg, nil
}

// serviceFetcher serves relation candidates from the registered services.
type serviceFetcher struct {
	admin *Admin
}

func (f serviceFetcher) Fetch(ctx context.Context, entity string) ([]map[string]any, error) {
	registered, err := f.admin.Entity(entity)
	if err != nil {
		return nil, err
	}
	query := crud.ListQuery{Page: 1, PageSize: crud.MaxPageSize}.Normalize(crud.MaxPageSize)
	result, err := registered.Controller.Service().FetchItems(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("admin: relation candidates for %q: %w", entity, err)
	}
	return result.Data, nil
}
