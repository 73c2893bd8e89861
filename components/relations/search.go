package relations

import (
	"sort"
	"strings"

	"github.com/goliatone/go-admingen/pkg/relation"
)

// Search filters candidates by label. Prefix matches rank before substring
// matches; ties keep label order.
func Search(candidates []relation.Candidate, query string, limit int, opts Options) []relation.Candidate {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchTop {
			return nil
		}
		if len(candidates) <= limit {
			return append([]relation.Candidate{}, candidates...)
		}
		return append([]relation.Candidate{}, candidates[:limit]...)
	}

	q := strings.ToLower(query)
	matches := make([]matchedCandidate, 0, 16)
	for _, candidate := range candidates {
		label := strings.ToLower(candidate.Label)
		if !strings.Contains(label, q) && !strings.EqualFold(candidate.Value, query) {
			continue
		}
		matches = append(matches, matchedCandidate{
			candidate: candidate,
			isPrefix:  strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].candidate.Label < matches[j].candidate.Label
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]relation.Candidate, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.candidate)
	}
	return out
}

type matchedCandidate struct {
	candidate relation.Candidate
	isPrefix  bool
}
