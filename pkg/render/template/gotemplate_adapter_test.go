package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-admingen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-admingen/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	assertGolden(t, "hello.golden", result, written)
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})
	assertGolden(t, "use-global.golden", result, written)
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"}, w)
	})
	assertGolden(t, "use-filter.golden", result, written)
}

type sortLink struct {
	Label string `json:"label"`
	Dir   string `json:"dir,omitempty"`
}

func TestGoTemplateEngine_StructDataAndAdminFilters(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		SortLinks []sortLink `json:"sortLinks"`
		Variant   string     `json:"variant"`
		Text      string     `json:"text"`
	}{
		SortLinks: []sortLink{{Label: "Name", Dir: "desc"}, {Label: "Year"}},
		Variant:   "success",
		Text:      "  Oui ",
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("header.tmpl", data, w)
	})
	assertGolden(t, "header.golden", result, written)
}

func TestGoTemplateEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	out, err := engine.Render("{{ count }} items", map[string]any{"count": 3})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "3 items" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func assertGolden(t *testing.T, name, result, written string) {
	t.Helper()
	path := filepath.Join("testdata", name)
	if testsupport.WriteMaybeGolden(t, path, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, path)
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
