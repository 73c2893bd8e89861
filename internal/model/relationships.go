package model

import (
	"strings"

	"github.com/goliatone/go-admingen/pkg/schema"
)

// RelationKind names the ORM-style relationship vocabulary accepted by
// definition files and OpenAPI extensions.
type RelationKind string

const (
	RelationBelongsTo  RelationKind = "belongsTo"
	RelationHasOne     RelationKind = "hasOne"
	RelationHasMany    RelationKind = "hasMany"
	RelationManyToMany RelationKind = "manyToMany"
)

// NormalizeRelationKind accepts loosely spelled kinds ("has_many", "HASMANY").
func NormalizeRelationKind(raw string) (RelationKind, bool) {
	switch normalizeKey(raw) {
	case "belongsto":
		return RelationBelongsTo, true
	case "hasone":
		return RelationHasOne, true
	case "hasmany":
		return RelationHasMany, true
	case "manytomany", "belongstomany":
		return RelationManyToMany, true
	default:
		return "", false
	}
}

// IsMultiple reports whether the kind references many records.
func (k RelationKind) IsMultiple() bool {
	return k == RelationHasMany || k == RelationManyToMany
}

// resolveRelation copies the descriptor and fills defaults. Array nodes always
// select multiple mode.
func resolveRelation(rel *schema.Relation, node schema.Node, displayField string) *RelationConfig {
	if rel == nil {
		return nil
	}
	entity := strings.TrimSpace(rel.Entity)
	if entity == "" {
		return nil
	}
	out := &RelationConfig{
		Entity:       entity,
		DisplayField: strings.TrimSpace(rel.DisplayField),
		Multiple:     rel.Multiple || node.Kind == schema.KindArray,
	}
	if out.DisplayField == "" {
		out.DisplayField = displayField
	}
	return out
}

func cloneRelation(rel *RelationConfig) *RelationConfig {
	if rel == nil {
		return nil
	}
	clone := *rel
	return &clone
}

func normalizeKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
