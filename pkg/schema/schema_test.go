package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestOptional_UnwrapsOneLevel(t *testing.T) {
	node := Optional(Optional(Number()))
	inner, optional := node.Unwrap()
	if !optional {
		t.Fatalf("expected optional wrapper")
	}
	if inner.Kind != KindNumber {
		t.Fatalf("double wrap should collapse, got %q", inner.Kind)
	}
	if _, optional := Number().Unwrap(); optional {
		t.Fatalf("plain node reported optional")
	}
}

func TestConstraints_LandOnInnerNode(t *testing.T) {
	node := Optional(String()).NonEmpty().MaxLen(4)
	inner, _ := node.Unwrap()
	if inner.Constraints.MinLength == nil || *inner.Constraints.MinLength != 1 {
		t.Fatalf("min length not set on inner node: %#v", inner.Constraints)
	}
	if node.Constraints.MaxLength != nil {
		t.Fatalf("wrapper should not carry constraints")
	}
}

func TestNodeBuildersDoNotAlias(t *testing.T) {
	base := String()
	_ = base.MinLen(3)
	if base.Constraints.MinLength != nil {
		t.Fatalf("builder mutated receiver")
	}
}

func TestAnnotate_ReturnsCopy(t *testing.T) {
	entity := NewEntity("users", Field("email", String()))
	annotated, err := entity.Annotate("email", Meta{Label: "E-mail"})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if entity.Properties[0].Meta.Label != "" {
		t.Fatalf("annotate mutated original entity")
	}
	prop, ok := annotated.Lookup("email")
	if !ok || prop.Meta.Label != "E-mail" {
		t.Fatalf("annotation missing: %#v", prop)
	}
	if _, err := entity.Annotate("ghost", Meta{}); !errors.Is(err, ErrUnknownProperty) {
		t.Fatalf("expected ErrUnknownProperty, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"integer":   KindNumber,
		"Bool":      KindBoolean,
		"date-time": KindDate,
		"list":      KindArray,
	}
	for in, want := range cases {
		got, ok := ParseKind(in)
		if !ok || got != want {
			t.Fatalf("parse %q: want %q, got %q (ok=%v)", in, want, got, ok)
		}
	}
	if _, ok := ParseKind("binary"); ok {
		t.Fatalf("unknown kind accepted")
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		value any
		ok    bool
	}{
		{"time", want, true},
		{"pointer", &want, true},
		{"iso date", "2024-03-15", true},
		{"rfc3339", "2024-03-15T00:00:00Z", true},
		{"epoch ms int64", want.UnixMilli(), true},
		{"epoch ms float", float64(want.UnixMilli()), true},
		{"garbage", "not-a-date", false},
		{"empty", "", false},
		{"zero time", time.Time{}, false},
		{"nil", nil, false},
		{"bool", true, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.value)
		if ok != tc.ok {
			t.Fatalf("%s: ok mismatch, want %v got %v", tc.name, tc.ok, ok)
		}
		if ok && !got.Equal(want) {
			t.Fatalf("%s: want %s got %s", tc.name, want, got)
		}
	}
}

func TestEntityKeysPreserveOrder(t *testing.T) {
	entity := NewEntity("e", Field("b", String()), Field("a", String()), Field("c", String()))
	if diff := cmp.Diff([]string{"b", "a", "c"}, entity.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}
