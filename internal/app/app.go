// Package app wires configuration, storage and definitions into a running
// admin. The serve and prompt commands share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-admingen/internal/config"
	"github.com/goliatone/go-admingen/internal/store"
	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/schema"
	"github.com/goliatone/go-admingen/pkg/theme"
)

// App is a configured admin bound to its store.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Admin    *admin.Admin
	Store    store.Provider
	Entities []schema.Entity
}

// New opens the store, loads the definitions and registers every entity.
// Demo records are seeded when the bundled definitions are served and
// seeding is enabled.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	entities, err := LoadDefinitions(ctx, cfg.Definitions)
	if err != nil {
		return nil, err
	}
	options, err := AdminOptions(cfg, logger)
	if err != nil {
		return nil, err
	}
	a, err := admin.New(options...)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	provider, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	application := &App{
		Config:   cfg,
		Logger:   logger,
		Admin:    a,
		Store:    provider,
		Entities: entities,
	}

	for _, entity := range entities {
		if _, err := a.Register(ctx, entity, provider.For(entity.Name)); err != nil {
			_ = provider.Close()
			return nil, fmt.Errorf("app: %w", err)
		}
	}
	logger.Info("entities registered",
		zap.Strings("entities", a.Names()),
		zap.String("storage", cfg.Storage.Driver),
	)

	if cfg.Definitions.Seed && usesBundledDefinitions(cfg.Definitions) {
		records, err := DemoSeed()
		if err == nil {
			err = application.Seed(ctx, records)
		}
		if err != nil {
			_ = provider.Close()
			return nil, err
		}
	}
	return application, nil
}

// Close releases the store.
func (a *App) Close() error {
	if a == nil || a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// AdminOptions translates the admin section of cfg into admin options.
func AdminOptions(cfg *config.Config, logger *zap.Logger) ([]admin.Option, error) {
	manifest, err := theme.Default()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	resolver := theme.NewResolver(cfg.Admin.Theme, cfg.Admin.ThemeVariant)
	if err := resolver.Register(manifest); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	options := []admin.Option{
		admin.WithLogger(logger),
		admin.WithBasePath(cfg.Server.BasePath),
		admin.WithPageSize(cfg.Admin.PageSize),
		admin.WithRelationTTL(cfg.Admin.RelationTTL),
		admin.WithBulkPolicy(cfg.Policy()),
		admin.WithThemes(resolver, cfg.Admin.Theme, cfg.Admin.ThemeVariant),
	}
	if renderer := strings.TrimSpace(cfg.Admin.Renderer); renderer != "" {
		options = append(options, admin.WithDefaultRenderer(renderer))
	}
	if path := strings.TrimSpace(cfg.Definitions.Overrides); path != "" {
		overrides, err := admin.LoadOverrides(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, fmt.Errorf("app: overrides: %w", err)
		}
		options = append(options, admin.WithTransformer(overrides))
	}
	return options, nil
}

func usesBundledDefinitions(cfg config.DefinitionsConfig) bool {
	return strings.TrimSpace(cfg.Dir) == "" && len(cfg.Sources) == 0
}
