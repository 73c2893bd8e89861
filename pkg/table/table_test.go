package table

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/goliatone/go-admingen/pkg/model"
	"github.com/goliatone/go-admingen/pkg/relation"
	"github.com/goliatone/go-admingen/pkg/schema"
)

func fleetConfig(t *testing.T) model.AdminConfig {
	t.Helper()
	entity := schema.NewEntity("vehicles",
		schema.Field("name", schema.String(), schema.Meta{Display: schema.Display{Order: schema.Int(2)}}),
		schema.Field("plate", schema.String(), schema.Meta{Display: schema.Display{Order: schema.Int(1)}}),
		schema.Field("description", schema.Optional(schema.String())),
		schema.Field("isActive", schema.Boolean()),
		schema.Field("internal", schema.String(), schema.Meta{Display: schema.Display{ShowInTable: schema.Bool(false)}}),
	)
	cfg, err := model.NewBuilder().Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return cfg
}

func TestColumnsOrderAndActions(t *testing.T) {
	cfg := fleetConfig(t)
	var keys []string
	for _, col := range Columns(cfg) {
		keys = append(keys, col.Key)
	}
	want := []string{"plate", "name", "isActive", ActionsKey}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}

	cfg.Actions.Update = false
	cfg.Actions.Delete = false
	cols := Columns(cfg)
	if cols[len(cols)-1].Actions {
		t.Fatalf("actions column should be omitted when update and delete are disabled")
	}
}

func TestRenderCellByType(t *testing.T) {
	relationField := model.FieldConfig{
		Key:      "category",
		Type:     model.FieldTypeRelation,
		Relation: &model.RelationConfig{Entity: "categories", DisplayField: "name"},
	}
	selectField := model.FieldConfig{
		Key:     "status",
		Type:    model.FieldTypeSelect,
		Options: []model.Option{{Value: "active", Label: "Actif"}},
	}
	long := strings.Repeat("é", 60)

	cases := []struct {
		name   string
		field  model.FieldConfig
		record map[string]any
		want   Cell
	}{
		{"bool true", model.FieldConfig{Key: "ok", Type: model.FieldTypeBoolean}, map[string]any{"ok": true},
			Cell{Kind: CellBadge, Text: YesLabel, Variant: "success"}},
		{"bool false", model.FieldConfig{Key: "ok", Type: model.FieldTypeBoolean}, map[string]any{"ok": false},
			Cell{Kind: CellBadge, Text: NoLabel, Variant: "secondary"}},
		{"date", model.FieldConfig{Key: "at", Type: model.FieldTypeDate}, map[string]any{"at": "2024-03-09T10:00:00Z"},
			Cell{Kind: CellDate, Text: "09/03/2024"}},
		{"date value", model.FieldConfig{Key: "at", Type: model.FieldTypeDate}, map[string]any{"at": time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
			Cell{Kind: CellDate, Text: "01/12/2023"}},
		{"invalid date", model.FieldConfig{Key: "at", Type: model.FieldTypeDate}, map[string]any{"at": "not-a-date"},
			Cell{Kind: CellDate, Text: schema.InvalidDateLabel, Invalid: true}},
		{"email", model.FieldConfig{Key: "email", Type: model.FieldTypeEmail}, map[string]any{"email": "a@b.co"},
			Cell{Kind: CellLink, Text: "a@b.co", Href: "mailto:a@b.co"}},
		{"url", model.FieldConfig{Key: "site", Type: model.FieldTypeURL}, map[string]any{"site": "https://x.dev"},
			Cell{Kind: CellLink, Text: "https://x.dev", Href: "https://x.dev"}},
		{"unsafe url", model.FieldConfig{Key: "site", Type: model.FieldTypeURL}, map[string]any{"site": "javascript:alert(1)"},
			Cell{Kind: CellText, Text: "javascript:alert(1)"}},
		{"image", model.FieldConfig{Key: "photo", Label: "Photo", Type: model.FieldTypeImage}, map[string]any{"photo": "/p.png"},
			Cell{Kind: CellImage, Src: "/p.png", Text: "Photo"}},
		{"textarea long", model.FieldConfig{Key: "d", Type: model.FieldTypeTextarea}, map[string]any{"d": long},
			Cell{Kind: CellTruncated, Text: strings.Repeat("é", 50) + "...", Title: long}},
		{"rich text", model.FieldConfig{Key: "d", Type: model.FieldTypeRichText}, map[string]any{"d": "<p>Fish &amp; chips</p>"},
			Cell{Kind: CellTruncated, Text: "Fish & chips", Title: "Fish & chips"}},
		{"select", selectField, map[string]any{"status": "active"},
			Cell{Kind: CellBadge, Text: "Actif", Variant: "outline"}},
		{"relation object", relationField, map[string]any{"category": map[string]any{"id": "5", "name": "Transport"}},
			Cell{Kind: CellBadge, Text: "Transport", Variant: "outline"}},
		{"number", model.FieldConfig{Key: "n", Type: model.FieldTypeNumber}, map[string]any{"n": float64(1234567)},
			Cell{Kind: CellNumber, Text: "1,234,567"}},
		{"missing", model.FieldConfig{Key: "n", Type: model.FieldTypeNumber}, map[string]any{},
			Cell{Kind: CellPlaceholder, Text: Placeholder}},
		{"nil", model.FieldConfig{Key: "n", Type: model.FieldTypeText}, map[string]any{"n": nil},
			Cell{Kind: CellPlaceholder, Text: Placeholder}},
		{"nested path", model.FieldConfig{Key: "owner.name", Type: model.FieldTypeText}, map[string]any{"owner": map[string]any{"name": "Ada"}},
			Cell{Kind: CellText, Text: "Ada"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, RenderCell(tc.field, tc.record)); diff != "" {
				t.Fatalf("cell mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRelationIDsUseRegisteredLabels(t *testing.T) {
	field := model.FieldConfig{
		Key:      "tags",
		Type:     model.FieldTypeRelation,
		Relation: &model.RelationConfig{Entity: "tags", Multiple: true},
	}
	r := NewRenderer(WithRelationLabels("tags", []relation.Candidate{{Value: "a", Label: "Alpha"}}))
	got := r.Cell(field, map[string]any{"tags": []any{"a", "b"}})
	if got.Text != "Alpha, b" {
		t.Fatalf("relation text: got %q", got.Text)
	}
}

func TestNumberLocale(t *testing.T) {
	r := NewRenderer(WithLanguage(language.German))
	got := r.Cell(model.FieldConfig{Key: "n", Type: model.FieldTypeNumber}, map[string]any{"n": 1234})
	if got.Text != "1.234" {
		t.Fatalf("german grouping: got %q", got.Text)
	}
}

func TestLookup(t *testing.T) {
	record := map[string]any{
		"a.b":   "flat",
		"owner": map[string]any{"address": map[string]any{"city": "Lyon"}},
		"items": []any{map[string]any{"sku": "X1"}},
	}
	cases := []struct {
		key  string
		want any
		ok   bool
	}{
		{"a.b", "flat", true},
		{"owner.address.city", "Lyon", true},
		{"items.0.sku", "X1", true},
		{"items.3.sku", nil, false},
		{"owner.missing", nil, false},
		{"nothing", nil, false},
	}
	for _, tc := range cases {
		got, ok := Lookup(record, tc.key)
		if ok != tc.ok || !cmp.Equal(got, tc.want) {
			t.Fatalf("Lookup(%q): want (%v, %v), got (%v, %v)", tc.key, tc.want, tc.ok, got, ok)
		}
	}
}

func TestRowActions(t *testing.T) {
	row := map[string]any{"id": float64(7), "name": "Bus"}
	parse := func(in map[string]any) map[string]any {
		out := map[string]any{"id": in["id"], "name": strings.ToUpper(in["name"].(string))}
		return out
	}
	actions := RowActions(row, ActionOptions{
		Actions: model.Actions{Update: true, Delete: true},
		Parse:   parse,
	})
	if len(actions) != 2 {
		t.Fatalf("expected edit and delete, got %d", len(actions))
	}
	if actions[0].Name != ActionEdit || actions[0].Row["name"] != "BUS" || actions[0].ID != "7" {
		t.Fatalf("unexpected edit action %+v", actions[0])
	}
	if !actions[1].Confirm || actions[1].ConfirmMessage != DefaultConfirmMessage {
		t.Fatalf("delete must require confirmation: %+v", actions[1])
	}

	if got := RowActions(row, ActionOptions{Actions: model.Actions{Delete: true}}); len(got) != 1 || got[0].Name != ActionDelete {
		t.Fatalf("expected only delete, got %+v", got)
	}
}

func TestBuildRowsSkipActionsColumn(t *testing.T) {
	cfg := fleetConfig(t)
	tbl := NewRenderer().Build(cfg, []map[string]any{{"id": "1", "plate": "AB-1", "name": "Bus", "isActive": true}}, ActionOptions{})
	if len(tbl.Rows) != 1 {
		t.Fatalf("expected one row")
	}
	row := tbl.Rows[0]
	if len(row.Cells) != len(tbl.Columns)-1 {
		t.Fatalf("cells %d vs columns %d", len(row.Cells), len(tbl.Columns))
	}
	if row.Cells[0].Text != "AB-1" || row.ID != "1" || len(row.Actions) != 2 {
		t.Fatalf("unexpected row %+v", row)
	}
}
