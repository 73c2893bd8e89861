package render

import gotheme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the page.
type RenderOptions struct {
	// Theme carries resolved partials, tokens and asset URLs. Renderers fall
	// back to their embedded defaults when it is nil.
	Theme *gotheme.RendererConfig
	// Hidden adds hidden inputs (CSRF tokens, return paths) to form pages.
	Hidden map[string]string
	// Errors surfaces server-side validation feedback keyed by field path.
	// Paths are normalised with MapErrorPayload; unknown paths become
	// form-level messages.
	Errors map[string][]string
}
