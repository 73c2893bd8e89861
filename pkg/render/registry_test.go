package render

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stubRenderer struct {
	name        string
	contentType string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return s.contentType }
func (s stubRenderer) Render(context.Context, Page, RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(stubRenderer{name: "vanilla", contentType: "text/html; charset=utf-8"})
	registry.MustRegister(stubRenderer{name: "json", contentType: "application/json"})

	if err := registry.Register(stubRenderer{name: "json"}); !errors.Is(err, ErrRendererExists) {
		t.Fatalf("expected ErrRendererExists, got %v", err)
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
	if diff := cmp.Diff([]string{"json", "vanilla"}, registry.List()); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}

	got, err := registry.Get("")
	if err != nil || got.Name() != "vanilla" {
		t.Fatalf("default renderer: got %v, %v", got, err)
	}
	if _, err := registry.Get("preact"); !errors.Is(err, ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
	if err := registry.SetDefault("missing"); !errors.Is(err, ErrRendererNotFound) {
		t.Fatalf("SetDefault: expected ErrRendererNotFound, got %v", err)
	}
}

func TestRegistryNegotiate(t *testing.T) {
	registry := NewRegistry()
	registry.MustRegister(stubRenderer{name: "vanilla", contentType: "text/html; charset=utf-8"})
	registry.MustRegister(stubRenderer{name: "json", contentType: "application/json"})

	cases := map[string]string{
		"application/json":                  "json",
		"text/html,application/xhtml+xml":   "vanilla",
		"application/xml, application/json": "json",
		"*/*":                               "vanilla",
		"":                                  "vanilla",
	}
	for accept, want := range cases {
		got, err := registry.Negotiate(accept)
		if err != nil {
			t.Fatalf("Negotiate(%q): %v", accept, err)
		}
		if got.Name() != want {
			t.Fatalf("Negotiate(%q): want %s, got %s", accept, want, got.Name())
		}
	}

	if err := registry.SetDefault("json"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	got, _ := registry.Negotiate("image/png")
	if got.Name() != "json" {
		t.Fatalf("fallback after SetDefault: got %s", got.Name())
	}
}
