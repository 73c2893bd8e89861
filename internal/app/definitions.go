package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	admingen "github.com/goliatone/go-admingen"
	"github.com/goliatone/go-admingen/internal/config"
	"github.com/goliatone/go-admingen/internal/loader"
	"github.com/goliatone/go-admingen/pkg/definitions"
	"github.com/goliatone/go-admingen/pkg/schema"
)

// sourceTimeout bounds each remote definition fetch.
const sourceTimeout = 30 * time.Second

// LoadDefinitions collects the entities named by cfg: every file under Dir,
// then each of Sources (definition, OpenAPI or JSON Schema documents). With
// neither set the bundled demo definitions are used. An entity name may only
// appear once.
func LoadDefinitions(ctx context.Context, cfg config.DefinitionsConfig) ([]schema.Entity, error) {
	var fsys fs.FS
	switch {
	case strings.TrimSpace(cfg.Dir) != "":
		fsys = os.DirFS(cfg.Dir)
	case len(cfg.Sources) == 0:
		fsys = definitions.DefaultsFS()
	}

	var out []schema.Entity
	origin := make(map[string]string)
	add := func(entity schema.Entity, source string) error {
		if prev, exists := origin[entity.Name]; exists {
			return fmt.Errorf("app: entity %q defined by %s and %s", entity.Name, prev, source)
		}
		origin[entity.Name] = source
		out = append(out, entity)
		return nil
	}

	if fsys != nil {
		store, err := definitions.LoadFS(fsys)
		if err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
		for _, name := range store.Names() {
			entity, _ := store.Entity(name)
			if err := add(entity, store.Source(name)); err != nil {
				return nil, err
			}
		}
	}

	l := loader.New(loader.Options{AllowHTTP: true, Timeout: sourceTimeout})
	for _, raw := range cfg.Sources {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		entities, err := LoadSource(ctx, l, raw)
		if err != nil {
			return nil, err
		}
		for _, entity := range entities {
			if err := add(entity, raw); err != nil {
				return nil, err
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("app: no entities defined")
	}
	return out, nil
}

// LoadSource fetches one document through l and converts it to entities,
// detecting its format.
func LoadSource(ctx context.Context, l *loader.Loader, raw string) ([]schema.Entity, error) {
	src, err := loader.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	data, err := l.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	entities, err := admingen.LoadEntities(ctx, data, src.String())
	if err != nil {
		return nil, fmt.Errorf("app: %s: %w", src, err)
	}
	return entities, nil
}
