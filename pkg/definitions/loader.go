package definitions

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admingen/pkg/schema"
)

// Store holds the entities parsed from a definitions tree, keyed by name.
type Store struct {
	entities map[string]schema.Entity
	sources  map[string]string
}

// LoadFS walks fsys and parses every JSON/YAML definition file. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		entities: make(map[string]schema.Entity),
		sources:  make(map[string]string),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definitions: read %s: %w", path, err)
		}
		entities, err := Parse(data, path)
		if err != nil {
			return err
		}
		for _, entity := range entities {
			if prev, exists := store.sources[entity.Name]; exists {
				return fmt.Errorf("definitions: duplicate entity %q (files %s and %s)", entity.Name, prev, path)
			}
			store.entities[entity.Name] = entity
			store.sources[entity.Name] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single definition document. The document may declare one
// entity at the top level, a list under "entities", or both.
func Parse(data []byte, source string) ([]schema.Entity, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}

	var files []entityFile
	if strings.TrimSpace(doc.Entity) != "" {
		files = append(files, doc.entityFile)
	}
	files = append(files, doc.Entities...)
	if len(files) == 0 {
		return nil, fmt.Errorf("definitions: file %s declares no entity", source)
	}

	out := make([]schema.Entity, 0, len(files))
	for _, file := range files {
		entity, err := normaliseEntity(file, source)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// Entity returns the entity registered under name.
func (s *Store) Entity(name string) (schema.Entity, bool) {
	if s == nil {
		return schema.Entity{}, false
	}
	entity, ok := s.entities[name]
	return entity, ok
}

// Names returns the sorted entity names.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.entities))
	for name := range s.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source reports the file an entity was loaded from.
func (s *Store) Source(name string) string {
	if s == nil {
		return ""
	}
	return s.sources[name]
}

// Empty reports whether the store holds any entities.
func (s *Store) Empty() bool {
	return s == nil || len(s.entities) == 0
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("definitions: file %s is empty", source)
	}
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("definitions: parse %s: %w", source, err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("definitions: parse %s: %w", source, err)
	}
	return doc, nil
}

func normaliseEntity(file entityFile, source string) (schema.Entity, error) {
	name := strings.TrimSpace(file.Entity)
	if name == "" {
		return schema.Entity{}, fmt.Errorf("definitions: file %s defines an entity without a name", source)
	}
	props, err := normaliseFields(file.Fields, name, source)
	if err != nil {
		return schema.Entity{}, err
	}
	if len(props) == 0 {
		return schema.Entity{}, fmt.Errorf("definitions: entity %q (file %s) has no fields", name, source)
	}
	entity := schema.NewEntity(name, props...)
	entity.Title = strings.TrimSpace(file.Title)
	entity.Description = strings.TrimSpace(file.Description)
	entity.Actions = file.Actions
	entity.Layout = file.UI
	return entity, nil
}

func normaliseFields(fields []fieldFile, entity, source string) ([]schema.Property, error) {
	seen := make(map[string]struct{}, len(fields))
	props := make([]schema.Property, 0, len(fields))
	for idx, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			return nil, fmt.Errorf("definitions: entity %q (file %s) field %d has an empty key", entity, source, idx)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("definitions: entity %q (file %s) defines duplicate field %q", entity, source, key)
		}
		seen[key] = struct{}{}

		node, err := nodeFromField(field, entity, source)
		if err != nil {
			return nil, err
		}
		props = append(props, schema.Field(key, node, field.Admin))
	}
	return props, nil
}

func nodeFromField(field fieldFile, entity, source string) (schema.Node, error) {
	kind, ok := schema.ParseKind(field.Kind)
	if !ok {
		if strings.TrimSpace(field.Kind) != "" {
			return schema.Node{}, fmt.Errorf("definitions: entity %q (file %s) field %q has unknown kind %q", entity, source, field.Key, field.Kind)
		}
		kind = schema.KindString
	}

	var node schema.Node
	switch kind {
	case schema.KindEnum:
		if len(field.Values) == 0 {
			return schema.Node{}, fmt.Errorf("definitions: entity %q (file %s) enum field %q has no values", entity, source, field.Key)
		}
		node = schema.Enum(field.Values...)
	case schema.KindArray:
		elem := schema.String()
		if field.Items != nil {
			item, err := nodeFromField(*field.Items, entity, source)
			if err != nil {
				return schema.Node{}, err
			}
			elem = item
		}
		node = schema.Array(elem)
	case schema.KindObject:
		props, err := normaliseFields(field.Fields, entity, source)
		if err != nil {
			return schema.Node{}, err
		}
		node = schema.Object(props...)
	default:
		node = schema.Node{Kind: kind}
	}

	node = applyConstraints(node, field)
	if field.Optional {
		node = schema.Optional(node)
	}
	return node, nil
}

func applyConstraints(node schema.Node, field fieldFile) schema.Node {
	if field.MinLength != nil {
		node = node.MinLen(*field.MinLength)
	}
	if field.MaxLength != nil {
		node = node.MaxLen(*field.MaxLength)
	}
	if field.Min != nil {
		node = node.Min(*field.Min)
	}
	if field.Max != nil {
		node = node.Max(*field.Max)
	}
	if field.Pattern != "" {
		node = node.Matches(field.Pattern)
	}
	if field.Format != "" {
		node = node.Format(field.Format)
	}
	return node
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
