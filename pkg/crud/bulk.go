package crud

import (
	"fmt"
	"strings"
)

// BulkPolicy decides what BulkDelete does after a failed delete.
type BulkPolicy int

const (
	// AbortOnFirstError stops at the first failure and reports the remaining
	// ids as skipped.
	AbortOnFirstError BulkPolicy = iota
	// ContinueOnError attempts every id and collects the failures.
	ContinueOnError
)

func (p BulkPolicy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	default:
		return "abort"
	}
}

// ParseBulkPolicy accepts "abort" or "continue".
func ParseBulkPolicy(raw string) (BulkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "abort", "abort-on-first-error":
		return AbortOnFirstError, nil
	case "continue", "continue-on-error", "best-effort":
		return ContinueOnError, nil
	default:
		return AbortOnFirstError, fmt.Errorf("crud: unknown bulk policy %q", raw)
	}
}

// BulkFailure pairs an id with the error its delete returned.
type BulkFailure struct {
	ID  string `json:"id"`
	Err error  `json:"-"`
	// Message mirrors Err for JSON responses.
	Message string `json:"message"`
}

// BulkResult reports what a bulk delete did with each id.
type BulkResult struct {
	Deleted []string      `json:"deleted"`
	Failed  []BulkFailure `json:"failed,omitempty"`
	Skipped []string      `json:"skipped,omitempty"`
}

// OK reports whether every id was deleted.
func (r BulkResult) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}
