// Package admingen derives admin CRUD surfaces from annotated entity schemas.
//
// Entities come from definition files, OpenAPI component schemas or JSON
// Schema documents. Each is turned into an AdminConfig, bound to a
// crud.Service, and served as HTML pages, JSON documents or terminal prompts.
//
// Quick start:
//
//	a, _ := admingen.New()
//	entities, _ := admingen.LoadEntities(ctx, raw, "vehicles.yaml")
//	for _, entity := range entities {
//		a.MustRegister(ctx, entity, store.For(entity.Name))
//	}
package admingen

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/admin"
	"github.com/goliatone/go-admingen/pkg/definitions"
	"github.com/goliatone/go-admingen/pkg/jsonschema"
	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/openapi"
	"github.com/goliatone/go-admingen/pkg/renderers/vanilla"
	"github.com/goliatone/go-admingen/pkg/schema"
)

// Format names a supported source document format.
type Format string

const (
	FormatDefinitions Format = "definitions"
	FormatOpenAPI     Format = "openapi"
	FormatJSONSchema  Format = "jsonschema"
)

// DetectFormat inspects raw. Documents that are neither OpenAPI nor JSON
// Schema are treated as entity definitions.
func DetectFormat(raw []byte) Format {
	var probe map[string]any
	if err := yaml.Unmarshal(raw, &probe); err == nil {
		if _, ok := probe["openapi"]; ok {
			return FormatOpenAPI
		}
		if _, ok := probe["swagger"]; ok {
			return FormatOpenAPI
		}
	}
	if jsonschema.Detect(raw) {
		return FormatJSONSchema
	}
	return FormatDefinitions
}

// LoadEntities parses raw in whatever format it is written in. source only
// labels errors.
func LoadEntities(ctx context.Context, raw []byte, source string) ([]schema.Entity, error) {
	if len(raw) == 0 {
		return nil, errors.New("admingen: document is empty")
	}
	switch DetectFormat(raw) {
	case FormatOpenAPI:
		return openapi.NewAdapter().Entities(ctx, raw)
	case FormatJSONSchema:
		return jsonschema.NewAdapter().Entities(ctx, raw)
	default:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return definitions.Parse(raw, source)
	}
}

// New constructs an Admin with the built-in renderers and theme.
func New(options ...admin.Option) (*admin.Admin, error) {
	return admin.New(options...)
}

// Derive returns the AdminConfig of every entity in raw without registering
// them anywhere.
func Derive(ctx context.Context, raw []byte, source string, options ...admin.Option) ([]model.AdminConfig, error) {
	entities, err := LoadEntities(ctx, raw, source)
	if err != nil {
		return nil, err
	}
	a, err := admin.New(options...)
	if err != nil {
		return nil, err
	}
	out := make([]model.AdminConfig, 0, len(entities))
	for _, entity := range entities {
		cfg, err := a.Derive(ctx, entity)
		if err != nil {
			return nil, fmt.Errorf("admingen: %w", err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// EmbeddedTemplates exposes the built-in page templates so callers can copy
// or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet and script served under the theme's asset
// prefix.
//
// Typical mount:
//
//	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(admingen.AssetsFS())))
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
