package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-admingen/internal/config"
	"github.com/goliatone/go-admingen/pkg/crud"
)

const driversDefinition = `
entity: drivers
title: Drivers
fields:
  - key: name
    kind: string
    minLength: 1
`

const tagsOpenAPI = `
openapi: 3.0.3
info: {title: Tags, version: 1.0.0}
paths: {}
components:
  schemas:
    Tag:
      type: object
      properties:
        label: {type: string}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func total(t *testing.T, a *App, entity string) int {
	t.Helper()
	registered, err := a.Admin.Entity(entity)
	require.NoError(t, err)
	result, err := registered.Controller.Service().FetchItems(context.Background(), crud.ListQuery{Page: 1, PageSize: 1})
	require.NoError(t, err)
	return result.Meta.Total
}

func TestNewServesBundledDefinitionsWithSeed(t *testing.T) {
	cfg := config.DefaultConfig()

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, []string{"amenities", "categories", "users", "vehicles"}, a.Admin.Names())
	assert.Equal(t, 3, total(t, a, "vehicles"))
	assert.Equal(t, 3, total(t, a, "categories"))
}

func TestNewSkipsSeedWhenDisabled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Definitions.Seed = false

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Zero(t, total(t, a, "vehicles"))
}

func TestSeedLeavesPopulatedStoresAlone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = filepath.Join(t.TempDir(), "admin.db")

	first, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, 3, total(t, first, "users"))
	require.NoError(t, first.Close())

	second, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	assert.Equal(t, 3, total(t, second, "users"))
}

func TestLoadDefinitionsFromDirAndSources(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "defs")
	require.NoError(t, os.Mkdir(defs, 0o755))
	writeFile(t, defs, "drivers.yaml", driversDefinition)
	tags := writeFile(t, dir, "tags.yaml", tagsOpenAPI)

	entities, err := LoadDefinitions(context.Background(), config.DefinitionsConfig{
		Dir:     defs,
		Sources: []string{tags},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.Name)
	}
	assert.Equal(t, []string{"drivers", "tag"}, names)
}

func TestLoadDefinitionsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	defs := filepath.Join(dir, "defs")
	require.NoError(t, os.Mkdir(defs, 0o755))
	writeFile(t, defs, "drivers.yaml", driversDefinition)
	again := writeFile(t, dir, "drivers-again.yaml", driversDefinition)

	_, err := LoadDefinitions(context.Background(), config.DefinitionsConfig{
		Dir:     defs,
		Sources: []string{again},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"drivers"`)
}

func TestLoadDefinitionsMissingSource(t *testing.T) {
	_, err := LoadDefinitions(context.Background(), config.DefinitionsConfig{
		Sources: []string{filepath.Join(t.TempDir(), "missing.yaml")},
	})
	assert.Error(t, err)
}

func TestNewAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Definitions.Overrides = writeFile(t, dir, "overrides.yaml", `
categories:
  title: Catégories
  fields:
    slug: {label: Identifiant}
`)

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	entity, err := a.Admin.Entity("categories")
	require.NoError(t, err)
	assert.Equal(t, "Catégories", entity.Config.Title)
	slug, ok := entity.Config.Field("slug")
	require.True(t, ok)
	assert.Equal(t, "Identifiant", slug.Label)
}

func TestDemoSeedCoversBundledEntities(t *testing.T) {
	records, err := DemoSeed()
	require.NoError(t, err)

	for _, name := range []string{"amenities", "categories", "users", "vehicles"} {
		assert.NotEmpty(t, records[name], name)
	}
}
