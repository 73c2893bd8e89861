package admin

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/model"
)

const vehicleOverrides = `
vehicles:
  title: Flotte
  pageSize: 25
  actions:
    bulk: false
  fields:
    name:
      label: Nom
      placeholder: Bus 12
      order: 1
      metadata:
        hint: visible
    isActive:
      showInTable: false
`

func derivedVehicles(t *testing.T) model.AdminConfig {
	t.Helper()
	cfg, err := model.NewBuilder().Build(vehiclesEntity())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return cfg
}

func TestOverridesPatchConfig(t *testing.T) {
	overrides, err := ParseOverrides([]byte(vehicleOverrides))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg := derivedVehicles(t)
	if err := overrides.Transform(context.Background(), &cfg); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if cfg.Title != "Flotte" || cfg.UI.PageSize != 25 {
		t.Fatalf("title/pageSize not applied: %q/%d", cfg.Title, cfg.UI.PageSize)
	}
	if cfg.Actions.Bulk {
		t.Fatalf("bulk action should be disabled")
	}
	name, _ := cfg.Field("name")
	if name.Label != "Nom" || name.Placeholder != "Bus 12" {
		t.Fatalf("name not patched: %+v", name)
	}
	if name.Display.Order == nil || *name.Display.Order != 1 {
		t.Fatalf("name order not applied")
	}
	if diff := cmp.Diff("visible", name.Metadata["hint"]); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
	active, _ := cfg.Field("isActive")
	if active.Display.ShowInTable {
		t.Fatalf("isActive should be hidden from the table")
	}
	if !active.Display.ShowInForm {
		t.Fatalf("unset toggles must keep their derived value")
	}
}

func TestOverridesIgnoreOtherEntities(t *testing.T) {
	overrides, err := ParseOverrides([]byte(`{"categories": {"title": "Catégories"}}`))
	if err != nil {
		t.Fatalf("parse json: %v", err)
	}
	cfg := derivedVehicles(t)
	before := model.Clone(cfg)
	if err := overrides.Transform(context.Background(), &cfg); err != nil {
		t.Fatalf("transform: %v", err)
	}
	if diff := cmp.Diff(before, cfg); diff != "" {
		t.Fatalf("unrelated entity changed (-want +got):\n%s", diff)
	}
}

func TestOverridesErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown field", doc: "vehicles:\n  fields:\n    colour: {label: Couleur}\n", want: `field "colour"`},
		{name: "unknown action", doc: "vehicles:\n  actions: {archive: true}\n", want: `unknown action "archive"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			overrides, err := ParseOverrides([]byte(tc.doc))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			cfg := derivedVehicles(t)
			err = overrides.Transform(context.Background(), &cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want %q", err, tc.want)
			}
		})
	}

	if _, err := ParseOverrides([]byte("  ")); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if _, err := ParseOverrides([]byte("vehicles: [")); err == nil {
		t.Fatalf("expected error for malformed document")
	}
}

func TestLoadOverridesFromFS(t *testing.T) {
	fsys := fstest.MapFS{"admin/overrides.yaml": {Data: []byte(vehicleOverrides)}}
	overrides, err := LoadOverrides(fsys, "admin/overrides.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	a, err := New(WithTransformer(Transformers{overrides}))
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	entity, err := a.Register(context.Background(), vehiclesEntity(), seed())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if entity.Config.Title != "Flotte" {
		t.Fatalf("override not applied at registration: %q", entity.Config.Title)
	}

	if _, err := LoadOverrides(fsys, "missing.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadOverrides(nil, "x.yaml"); err == nil {
		t.Fatalf("expected error for nil filesystem")
	}
}
