package render

import (
	"context"
)

// Renderer converts an admin Page into a byte representation (HTML, JSON...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, page Page, options RenderOptions) ([]byte, error)
}
