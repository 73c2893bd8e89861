package admingen_test

import (
	"context"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen"
	"github.com/goliatone/go-admingen/pkg/definitions"
)

const openAPIDocument = `
openapi: 3.0.3
info: {title: Fleet, version: 1.0.0}
paths: {}
components:
  schemas:
    Category:
      type: object
      required: [name]
      properties:
        name: {type: string}
`

const jsonSchemaDocument = `{"$defs": {"Tag": {"type": "object", "properties": {"label": {"type": "string"}}}}}`

func TestDetectFormat(t *testing.T) {
	defaults, err := fs.ReadFile(definitions.DefaultsFS(), "vehicles.yaml")
	if err != nil {
		t.Fatalf("read defaults: %v", err)
	}
	cases := []struct {
		name string
		raw  string
		want admingen.Format
	}{
		{name: "openapi", raw: openAPIDocument, want: admingen.FormatOpenAPI},
		{name: "jsonschema", raw: jsonSchemaDocument, want: admingen.FormatJSONSchema},
		{name: "definitions", raw: string(defaults), want: admingen.FormatDefinitions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := admingen.DetectFormat([]byte(tc.raw)); got != tc.want {
				t.Fatalf("DetectFormat = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDeriveFromEachFormat(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "openapi", raw: openAPIDocument, want: []string{"category"}},
		{name: "jsonschema", raw: jsonSchemaDocument, want: []string{"tag"}},
		{name: "definitions", raw: "entity: drivers\nfields:\n  - key: name\n    kind: string\n", want: []string{"drivers"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			configs, err := admingen.Derive(ctx, []byte(tc.raw), tc.name)
			if err != nil {
				t.Fatalf("derive: %v", err)
			}
			var got []string
			for _, cfg := range configs {
				got = append(got, cfg.Entity)
				if len(cfg.Fields) == 0 {
					t.Fatalf("%s derived no fields", cfg.Entity)
				}
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("entities mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadEntitiesRejectsEmpty(t *testing.T) {
	if _, err := admingen.LoadEntities(context.Background(), nil, "empty"); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestEmbeddedFilesystems(t *testing.T) {
	if _, err := fs.Stat(admingen.AssetsFS(), "admin.css"); err != nil {
		t.Fatalf("admin.css missing: %v", err)
	}
	if _, err := fs.Stat(admingen.EmbeddedTemplates(), "templates/layout.tmpl"); err != nil {
		t.Fatalf("layout.tmpl missing: %v", err)
	}
}
