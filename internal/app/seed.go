package app

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/crud"
)

//go:embed seed/*.yaml
var seedFiles embed.FS

// DemoSeed returns the records bundled for the demo definitions, keyed by
// entity.
func DemoSeed() (map[string][]crud.Record, error) {
	return LoadSeed(seedFiles, "seed/demo.yaml")
}

// LoadSeed reads an entity -> records YAML document from fsys.
func LoadSeed(fsys fs.FS, name string) (map[string][]crud.Record, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("app: read seed %s: %w", name, err)
	}
	var doc map[string][]crud.Record
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("app: parse seed %s: %w", name, err)
	}
	return doc, nil
}

// Seed inserts records into every registered entity whose store is empty.
// Entities that already hold data are left alone.
func (a *App) Seed(ctx context.Context, records map[string][]crud.Record) error {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entity, err := a.Admin.Entity(name)
		if err != nil {
			a.Logger.Debug("seed skipped", zap.String("entity", name), zap.Error(err))
			continue
		}
		svc := entity.Controller.Service()
		existing, err := svc.FetchItems(ctx, crud.ListQuery{Page: 1, PageSize: 1})
		if err != nil {
			return fmt.Errorf("app: seed %s: %w", name, err)
		}
		if existing.Meta.Total > 0 {
			continue
		}
		for _, record := range records[name] {
			if _, err := svc.CreateItem(ctx, record); err != nil {
				return fmt.Errorf("app: seed %s: %w", name, err)
			}
		}
		a.Admin.Cache().Invalidate(name)
		a.Logger.Info("seeded entity", zap.String("entity", name), zap.Int("records", len(records[name])))
	}
	return nil
}
