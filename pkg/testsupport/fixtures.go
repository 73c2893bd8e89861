package testsupport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-admingen/pkg/definitions"
	"github.com/goliatone/go-admingen/pkg/schema"
)

// MustLoadEntity reads a definition file and returns the named entity.
func MustLoadEntity(t *testing.T, path, name string) schema.Entity {
	t.Helper()

	entity, err := LoadEntity(path, name)
	if err != nil {
		t.Fatalf("load entity: %v", err)
	}
	return entity
}

// LoadEntity returns an entity from a definition file without requiring
// testing.T, so callers can wire fixtures in setup functions.
func LoadEntity(path, name string) (schema.Entity, error) {
	if path == "" {
		return schema.Entity{}, errors.New("testsupport: definition path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("testsupport: read definition: %w", err)
	}
	entities, err := definitions.Parse(data, path)
	if err != nil {
		return schema.Entity{}, fmt.Errorf("testsupport: parse definition: %w", err)
	}
	for _, entity := range entities {
		if entity.Name == name {
			return entity, nil
		}
	}
	return schema.Entity{}, fmt.Errorf("testsupport: entity %q not found in %s", name, path)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput runs a render function that also writes to an
// io.Writer and returns both the result and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
