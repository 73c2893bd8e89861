package theme

import (
	"fmt"
	"io/fs"

	gotheme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

// LoadManifest reads a YAML manifest from fsys.
func LoadManifest(fsys fs.FS, name string) (*gotheme.Manifest, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("theme: read manifest %s: %w", name, err)
	}
	return ParseManifest(data)
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*gotheme.Manifest, error) {
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("theme: decode manifest: %w", err)
	}
	manifest := &gotheme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    gotheme.Assets{Prefix: file.Assets.Prefix, Files: file.Assets.Files},
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]gotheme.Variant, len(file.Variants))
		for name, v := range file.Variants {
			manifest.Variants[name] = gotheme.Variant{
				Tokens:    v.Tokens,
				Templates: v.Templates,
				Assets:    gotheme.Assets{Prefix: v.Assets.Prefix, Files: v.Assets.Files},
			}
		}
	}
	return manifest, nil
}
