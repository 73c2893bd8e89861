package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	src, err := Parse("https://example.com/openapi.yaml")
	require.NoError(t, err)
	assert.Equal(t, KindURL, src.Kind)

	src, err = Parse(" defs/vehicles.yaml ")
	require.NoError(t, err)
	assert.Equal(t, FromFile("defs/vehicles.yaml"), src)

	_, err = Parse("  ")
	assert.Error(t, err)
}

func TestLoadFileAndFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vehicles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entity: vehicles\n"), 0o644))

	l := New(Options{FileSystem: fstest.MapFS{"defs/a.yaml": {Data: []byte("entity: a\n")}}})

	data, err := l.Load(context.Background(), FromFile(path))
	require.NoError(t, err)
	assert.Equal(t, "entity: vehicles\n", string(data))

	data, err = l.Load(context.Background(), FromFS("defs/a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "entity: a\n", string(data))

	_, err = l.Load(context.Background(), FromFile(filepath.Join(dir, "missing.yaml")))
	assert.Error(t, err)
}

func TestLoadHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"openapi":"3.0.3"}`))
	}))
	defer server.Close()

	_, err := New(Options{}).Load(context.Background(), FromURL(server.URL))
	assert.ErrorContains(t, err, "http support disabled")

	l := New(Options{HTTPClient: server.Client()})
	data, err := l.Load(context.Background(), FromURL(server.URL+"/doc"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"openapi":"3.0.3"}`, string(data))

	_, err = l.Load(context.Background(), FromURL(server.URL+"/missing"))
	assert.ErrorContains(t, err, "404")
}

func TestLoadHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).Load(ctx, FromFile("whatever.yaml"))
	assert.ErrorIs(t, err, context.Canceled)
}
