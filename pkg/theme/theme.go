package theme

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

var (
	// ErrThemeNotFound is returned when a theme name is not registered.
	ErrThemeNotFound = errors.New("theme: not found")
	// ErrVariantNotFound is returned when a manifest has no such variant.
	ErrVariantNotFound = errors.New("theme: variant not found")
)

// Partial keys understood by the HTML renderer. Each maps to a template path.
const (
	PartialLayout = "layout"
	PartialIndex  = "pages.index"
	PartialList   = "pages.list"
	PartialForm   = "pages.form"
	PartialDetail = "pages.detail"
)

// Asset keys resolved through Config.AssetURL.
const (
	AssetStylesheet = "admin.stylesheet"
	AssetScript     = "admin.script"
)

// DefaultPartials are used when a manifest leaves a partial unset.
func DefaultPartials() map[string]string {
	return map[string]string{
		PartialLayout: "templates/layout.tmpl",
		PartialIndex:  "templates/index.tmpl",
		PartialList:   "templates/list.tmpl",
		PartialForm:   "templates/form.tmpl",
		PartialDetail: "templates/detail.tmpl",
	}
}

type manifestRegistry interface {
	Register(manifest *gotheme.Manifest) error
}

// Resolver keeps registered manifests and resolves a theme/variant pair
// into a renderer configuration.
type Resolver struct {
	mu             sync.RWMutex
	registry       manifestRegistry
	manifests      map[string]*gotheme.Manifest
	defaultTheme   string
	defaultVariant string
	fallbacks      map[string]string
}

// NewResolver builds a resolver whose defaults apply when Select receives
// empty names.
func NewResolver(defaultTheme, defaultVariant string) *Resolver {
	return &Resolver{
		registry:       gotheme.NewRegistry(),
		manifests:      make(map[string]*gotheme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
		fallbacks:      DefaultPartials(),
	}
}

// Register validates manifest through go-theme and stores it.
func (r *Resolver) Register(manifest *gotheme.Manifest) error {
	if manifest == nil {
		return errors.New("theme: manifest is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.registry.Register(manifest); err != nil {
		return fmt.Errorf("theme: register %q: %w", manifest.Name, err)
	}
	r.manifests[manifest.Name] = manifest
	if r.defaultTheme == "" {
		r.defaultTheme = manifest.Name
	}
	return nil
}

// Names lists the registered themes.
func (r *Resolver) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.manifests))
	for name := range r.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves name and variant, falling back to the resolver defaults.
func (r *Resolver) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if strings.TrimSpace(name) == "" {
		name = r.defaultTheme
	}
	if strings.TrimSpace(variant) == "" && name == r.defaultTheme {
		variant = r.defaultVariant
	}
	manifest, ok := r.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q/%q", ErrVariantNotFound, name, variant)
		}
	}
	return &gotheme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Config selects a theme and builds the renderer configuration. When no theme
// is registered it returns the fallback-only configuration.
func (r *Resolver) Config(name, variant string) (*gotheme.RendererConfig, error) {
	if len(r.Names()) == 0 {
		return RendererConfig(nil, r.fallbacks), nil
	}
	selection, err := r.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return RendererConfig(selection, r.fallbacks), nil
}

// RendererConfig merges the manifest and its variant: variant tokens,
// templates and asset files override the base ones; fallbacks fill partials
// neither defines. Each token becomes a "--token" CSS variable.
func RendererConfig(selection *gotheme.Selection, fallbacks map[string]string) *gotheme.RendererConfig {
	cfg := &gotheme.RendererConfig{
		Partials: copyMap(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if cfg.Partials == nil {
		cfg.Partials = map[string]string{}
	}
	prefix := ""
	files := map[string]string{}

	if selection != nil && selection.Manifest != nil {
		manifest := selection.Manifest
		cfg.Theme = selection.Theme
		cfg.Variant = selection.Variant

		merge(cfg.Tokens, manifest.Tokens)
		merge(cfg.Partials, manifest.Templates)
		merge(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if variant, ok := manifest.Variants[selection.Variant]; ok {
			merge(cfg.Tokens, variant.Tokens)
			merge(cfg.Partials, variant.Templates)
			merge(files, variant.Assets.Files)
			if variant.Assets.Prefix != "" {
				prefix = variant.Assets.Prefix
			}
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		file, ok := files[key]
		if !ok || file == "" {
			return ""
		}
		if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") || strings.HasPrefix(file, "/") {
			return file
		}
		if prefix == "" {
			return file
		}
		return path.Join(prefix, file)
	}
}

// CSSVarsStyle renders vars as a :root rule with sorted keys.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString("  ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func merge(dst, src map[string]string) {
	for key, value := range src {
		if strings.TrimSpace(value) == "" {
			continue
		}
		dst[key] = value
	}
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
