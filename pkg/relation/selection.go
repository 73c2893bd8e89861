package relation

import "github.com/goliatone/go-admingen/pkg/model"

// NoneLabel is shown for the empty single-select choice.
const NoneLabel = "Aucun"

// EmptyLabel is shown when no candidates are available.
const EmptyLabel = "Aucune option"

// Selection binds a relation field value to its candidate list. Single mode
// holds at most one id; multiple mode holds an ordered list of ids.
type Selection struct {
	Multiple   bool
	Candidates []Candidate
	values     []string
}

// NewSelection builds a selection for cfg seeded from a bound value (a
// string id, a []any / []string of ids or nil).
func NewSelection(cfg model.RelationConfig, candidates []Candidate, bound any) *Selection {
	s := &Selection{Multiple: cfg.Multiple, Candidates: candidates}
	s.values = normalizeBound(bound)
	if !s.Multiple && len(s.values) > 1 {
		s.values = s.values[:1]
	}
	return s
}

// Select replaces the value in single mode and appends in multiple mode.
// Selecting an id that is already chosen is a no-op in multiple mode.
func (s *Selection) Select(id string) {
	if id == "" {
		if !s.Multiple {
			s.Clear()
		}
		return
	}
	if !s.Multiple {
		s.values = []string{id}
		return
	}
	for _, existing := range s.values {
		if existing == id {
			return
		}
	}
	s.values = append(s.values, id)
}

// Remove filters id out of the selection.
func (s *Selection) Remove(id string) {
	out := s.values[:0:0]
	for _, existing := range s.values {
		if existing != id {
			out = append(out, existing)
		}
	}
	s.values = out
}

// Clear empties the selection. It backs the explicit "none" choice.
func (s *Selection) Clear() {
	s.values = nil
}

// Value returns the bound value: a string (or nil) in single mode and a
// []string in multiple mode.
func (s *Selection) Value() any {
	if s.Multiple {
		return append([]string{}, s.values...)
	}
	if len(s.values) == 0 {
		return nil
	}
	return s.values[0]
}

// IDs returns the selected ids.
func (s *Selection) IDs() []string {
	return append([]string(nil), s.values...)
}

// Selected returns the candidates matching the selection, in selection order.
// Ids without a candidate are reported with the id as label.
func (s *Selection) Selected() []Candidate {
	out := make([]Candidate, 0, len(s.values))
	for _, id := range s.values {
		out = append(out, s.lookup(id))
	}
	return out
}

// Available returns the candidates that can still be picked. In multiple
// mode the already selected ones are excluded.
func (s *Selection) Available() []Candidate {
	if !s.Multiple {
		return append([]Candidate(nil), s.Candidates...)
	}
	chosen := make(map[string]struct{}, len(s.values))
	for _, id := range s.values {
		chosen[id] = struct{}{}
	}
	out := make([]Candidate, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		if _, ok := chosen[c.Value]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// DisplayLabel returns the label of the single selected candidate.
func (s *Selection) DisplayLabel() string {
	if len(s.values) == 0 {
		return ""
	}
	return s.lookup(s.values[0]).Label
}

func (s *Selection) lookup(id string) Candidate {
	for _, c := range s.Candidates {
		if c.Value == id {
			if c.Label == "" {
				c.Label = id
			}
			return c
		}
	}
	return Candidate{Value: id, Label: id}
}

func normalizeBound(bound any) []string {
	switch v := bound.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return compact(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringValue(item))
		}
		return compact(out)
	default:
		if s := stringValue(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
