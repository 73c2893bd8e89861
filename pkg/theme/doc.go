// Package theme resolves go-theme manifests into the configuration consumed by
// the HTML renderer: template partials, design tokens, CSS variables and an
// asset URL resolver.
package theme
