package definitions

import (
	"embed"
	"io/fs"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// DefaultsFS returns the bundled demo definitions (categories, vehicles,
// amenities, users).
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}
