package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-admingen/pkg/schema"
)

func TestBuild_BasicScenario(t *testing.T) {
	entity := schema.NewEntity("people",
		schema.Field("name", schema.String().NonEmpty()),
		schema.Field("age", schema.Optional(schema.Number())),
		schema.Field("isActive", schema.Boolean()),
	)

	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cfg.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(cfg.Fields))
	}

	want := []struct {
		key      string
		typ      FieldType
		required bool
	}{
		{"name", FieldTypeText, true},
		{"age", FieldTypeNumber, false},
		{"isActive", FieldTypeBoolean, true},
	}
	for i, w := range want {
		got := cfg.Fields[i]
		if got.Key != w.key || got.Type != w.typ || got.Required != w.required {
			t.Fatalf("field %d: want %s/%s/%v, got %s/%s/%v", i, w.key, w.typ, w.required, got.Key, got.Type, got.Required)
		}
	}
	if cfg.Title != "People" {
		t.Fatalf("title mismatch: got %q", cfg.Title)
	}
	if cfg.UI.PageSize != defaultPageSize {
		t.Fatalf("page size mismatch: got %d", cfg.UI.PageSize)
	}
}

func TestInferType_StringKeyRules(t *testing.T) {
	cases := []struct {
		key  string
		want FieldType
	}{
		{"userEmail", FieldTypeEmail},
		{"EMAIL", FieldTypeEmail},
		{"profileUrl", FieldTypeURL},
		{"website", FieldTypeURL},
		{"bioDescription", FieldTypeTextarea},
		{"comment", FieldTypeTextarea},
		{"content", FieldTypeTextarea},
		{"coverImage", FieldTypeImage},
		{"photo", FieldTypeImage},
		{"avatar", FieldTypeImage},
		{"name", FieldTypeText},
		// email wins over the later rules
		{"emailContent", FieldTypeEmail},
	}
	for _, tc := range cases {
		if got := InferType(tc.key, schema.String()); got != tc.want {
			t.Fatalf("infer %q: want %q, got %q", tc.key, tc.want, got)
		}
	}
}

func TestInferType_Kinds(t *testing.T) {
	cases := map[string]struct {
		node schema.Node
		want FieldType
	}{
		"number":  {schema.Number(), FieldTypeNumber},
		"boolean": {schema.Boolean(), FieldTypeBoolean},
		"enum":    {schema.Enum("a", "b"), FieldTypeSelect},
		"date":    {schema.Date(), FieldTypeDate},
		"object":  {schema.Object(), FieldTypeText},
		"array":   {schema.Array(schema.String()), FieldTypeText},
		"unknown": {schema.Node{Kind: "binary"}, FieldTypeText},
	}
	for name, tc := range cases {
		if got := InferType("field", tc.node); got != tc.want {
			t.Fatalf("%s: want %q, got %q", name, tc.want, got)
		}
	}
}

func TestBuild_MetadataTypeWins(t *testing.T) {
	types := []string{"rich-text", "file", "email", "custom-widget", "number"}
	for _, typ := range types {
		entity := schema.NewEntity("posts",
			schema.Field("userEmail", schema.String(), schema.Meta{Type: typ}),
		)
		cfg, err := New(Options{}).Build(entity)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if got := cfg.Fields[0].Type; got != FieldType(typ) {
			t.Fatalf("metadata type %q not honoured, got %q", typ, got)
		}
	}
}

func TestBuild_DisplayDefaults(t *testing.T) {
	entity := schema.NewEntity("articles",
		schema.Field("title", schema.String()),
		schema.Field("content", schema.String()),
		schema.Field("body", schema.String(), schema.Meta{Type: "rich-text"}),
		schema.Field("avatar", schema.String()),
		schema.Field("attachment", schema.String(), schema.Meta{Type: "file"}),
		schema.Field("summary", schema.String(), schema.Meta{
			Type:    "textarea",
			Display: schema.Display{ShowInTable: schema.Bool(true), ShowInForm: schema.Bool(false)},
		}),
	)
	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := map[string]Display{
		"title":      {ShowInTable: true, ShowInForm: true, ShowInDetail: true},
		"content":    {ShowInTable: false, ShowInForm: true, ShowInDetail: true},
		"body":       {ShowInTable: false, ShowInForm: true, ShowInDetail: true},
		"avatar":     {ShowInTable: false, ShowInForm: true, ShowInDetail: true},
		"attachment": {ShowInTable: false, ShowInForm: true, ShowInDetail: true},
		"summary":    {ShowInTable: true, ShowInForm: false, ShowInDetail: true},
	}
	for _, field := range cfg.Fields {
		if diff := cmp.Diff(want[field.Key], field.Display); diff != "" {
			t.Fatalf("%s display mismatch (-want +got):\n%s", field.Key, diff)
		}
	}
}

func TestBuild_RelationDescriptor(t *testing.T) {
	entity := schema.NewEntity("vehicles",
		schema.Field("category", schema.String(), schema.Meta{
			Relation: &schema.Relation{Entity: "categories"},
		}),
		schema.Field("tags", schema.Optional(schema.Array(schema.String())), schema.Meta{
			Type:     "relation",
			Relation: &schema.Relation{Entity: "tags", DisplayField: "title"},
		}),
	)
	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	category := cfg.Fields[0]
	if category.Type != FieldTypeRelation {
		t.Fatalf("relation type not applied, got %q", category.Type)
	}
	if diff := cmp.Diff(&RelationConfig{Entity: "categories", DisplayField: "name"}, category.Relation); diff != "" {
		t.Fatalf("category relation mismatch (-want +got):\n%s", diff)
	}

	tags := cfg.Fields[1]
	if diff := cmp.Diff(&RelationConfig{Entity: "tags", DisplayField: "title", Multiple: true}, tags.Relation); diff != "" {
		t.Fatalf("tags relation mismatch (-want +got):\n%s", diff)
	}
	if tags.Required {
		t.Fatalf("optional relation should not be required")
	}
}

func TestBuild_EnumOptions(t *testing.T) {
	entity := schema.NewEntity("bookings",
		schema.Field("status", schema.Enum("pending", "paid")),
		schema.Field("seat", schema.Enum("a", "b"), schema.Meta{
			Options: []schema.Option{{Value: "a", Label: "Aisle"}, {Value: "b"}},
		}),
	)
	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]Option{{"pending", "pending"}, {"paid", "paid"}}, cfg.Fields[0].Options); diff != "" {
		t.Fatalf("status options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Option{{"a", "Aisle"}, {"b", "b"}}, cfg.Fields[1].Options); diff != "" {
		t.Fatalf("seat options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_OnlySchemaKeys(t *testing.T) {
	entity := schema.NewEntity("users",
		schema.Field("firstName", schema.String()),
		schema.Field("lastName", schema.String()),
		schema.Field("birthDate", schema.Optional(schema.Date())),
	)
	entity.Layout.Sections = []schema.Section{{Title: "Main", Fields: []string{"firstName", "ghost"}}}

	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	keys := make([]string, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		keys = append(keys, f.Key)
	}
	if diff := cmp.Diff(entity.Keys(), keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Section{{Title: "Main", Fields: []string{"firstName"}}}, cfg.UI.Sections); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	entity := schema.NewEntity("vehicles",
		schema.Field("plate", schema.String().NonEmpty().MaxLen(12), schema.Meta{Display: schema.Display{Order: schema.Int(2)}}),
		schema.Field("seats", schema.Number().Min(1).Max(80)),
		schema.Field("photo", schema.Optional(schema.String())),
		schema.Field("category", schema.String(), schema.Meta{Relation: &schema.Relation{Entity: "categories"}}),
	)
	builder := New(Options{})
	first, err := builder.Build(entity)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := builder.Build(entity)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("derivation not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuild_Validations(t *testing.T) {
	entity := schema.NewEntity("vehicles",
		schema.Field("plate", schema.String().NonEmpty().Matches(`^[A-Z0-9-]+$`)),
		schema.Field("seats", schema.Optional(schema.Number().Min(1))),
	)
	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wantPlate := []ValidationRule{
		{Kind: ValidationRuleMinLength, Params: map[string]string{"value": "1"}},
		{Kind: ValidationRulePattern, Params: map[string]string{"pattern": `^[A-Z0-9-]+$`}},
	}
	if diff := cmp.Diff(wantPlate, cfg.Fields[0].Validations); diff != "" {
		t.Fatalf("plate validations mismatch (-want +got):\n%s", diff)
	}
	wantSeats := []ValidationRule{{Kind: ValidationRuleMin, Params: map[string]string{"value": "1"}}}
	if diff := cmp.Diff(wantSeats, cfg.Fields[1].Validations); diff != "" {
		t.Fatalf("seats validations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := New(Options{}).Build(schema.Entity{}); !errors.Is(err, errEntityNameMissing) {
		t.Fatalf("expected missing name error, got %v", err)
	}
	if _, err := New(Options{}).Build(schema.NewEntity("empty")); !errors.Is(err, errNoProperties) {
		t.Fatalf("expected no properties error, got %v", err)
	}
	dup := schema.NewEntity("dup", schema.Field("a", schema.String()), schema.Field("a", schema.Number()))
	if _, err := New(Options{}).Build(dup); !errors.Is(err, errDuplicateKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestBuild_Actions(t *testing.T) {
	entity := schema.NewEntity("logs", schema.Field("message", schema.String()))
	entity.Actions = schema.Actions{Delete: schema.Bool(false), Export: schema.Bool(true)}

	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := Actions{Create: true, Read: true, Update: true, Delete: false, Bulk: true, Export: true}
	if diff := cmp.Diff(want, cfg.Actions); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByOrder(t *testing.T) {
	fields := []FieldConfig{
		{Key: "a"},
		{Key: "b", Display: Display{Order: intPtr(2)}},
		{Key: "c"},
		{Key: "d", Display: Display{Order: intPtr(1)}},
	}
	sorted := SortByOrder(fields)
	var keys []string
	for _, f := range sorted {
		keys = append(keys, f.Key)
	}
	if diff := cmp.Diff([]string{"d", "b", "a", "c"}, keys); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if fields[0].Key != "a" {
		t.Fatalf("input slice mutated")
	}
}

func TestBuild_MetadataAllowlist(t *testing.T) {
	entity := schema.NewEntity("posts",
		schema.Field("title", schema.String(), schema.Meta{Extra: map[string]string{
			"HelpText": " Shown under the input ",
			"onclick":  "alert(1)",
		}}),
	)
	cfg, err := New(Options{}).Build(entity)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"helpText": "Shown under the input"}, cfg.Fields[0].Metadata); diff != "" {
		t.Fatalf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func intPtr(v int) *int { return &v }
