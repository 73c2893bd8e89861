package render

import (
	"errors"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrRendererNotFound is returned when no renderer matches a lookup.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrRendererExists is returned when a name is registered twice.
	ErrRendererExists = errors.New("render: renderer already registered")
)

// Registry holds page renderers by name. The first registered renderer is
// the default unless SetDefault says otherwise.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds renderer under its Name.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("%w: %q", ErrRendererExists, name)
	}
	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// SetDefault selects the renderer returned when negotiation finds no match.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	r.fallback = name
	return nil
}

// Get retrieves a renderer by name. An empty name returns the default.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if strings.TrimSpace(name) == "" {
		name = r.fallback
	}
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// Negotiate picks the renderer whose content type appears first in an
// Accept header. Wildcards and unknown types fall back to the default.
func (r *Registry) Negotiate(accept string) (Renderer, error) {
	r.mu.RLock()
	byType := make(map[string]Renderer, len(r.renderers))
	for _, renderer := range r.renderers {
		mediaType, _, err := mime.ParseMediaType(renderer.ContentType())
		if err != nil {
			continue
		}
		if _, taken := byType[mediaType]; !taken {
			byType[mediaType] = renderer
		}
	}
	r.mu.RUnlock()

	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if renderer, ok := byType[mediaType]; ok {
			return renderer, nil
		}
	}
	return r.Get("")
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[name]
	return ok
}
