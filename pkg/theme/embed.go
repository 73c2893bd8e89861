package theme

import (
	"embed"

	gotheme "github.com/goliatone/go-theme"
)

//go:embed defaults/*.yaml
var defaultManifests embed.FS

// DefaultName is the name of the bundled manifest.
const DefaultName = "default"

// Default returns the bundled manifest.
func Default() (*gotheme.Manifest, error) {
	return LoadManifest(defaultManifests, "defaults/default.yaml")
}
