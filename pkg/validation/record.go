package validation

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-admingen/pkg/schema"
)

// Messages reported on failed checks.
const (
	MessageRequired    = "required"
	MessageInvalidType = "invalid type"
	MessageInvalidDate = "invalid date"
	MessageNotInEnum   = "value is not one of the allowed options"
)

// Issue represents a validation error attached to a dotted field path.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result captures the outcome of validating a record against an entity.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// FieldErrors groups issue messages by path, the shape renderers consume.
func (r Result) FieldErrors() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string, len(r.Issues))
	for _, issue := range r.Issues {
		out[issue.Path] = append(out[issue.Path], issue.Message)
	}
	return out
}

// Paths returns the sorted set of failing paths.
func (r Result) Paths() []string {
	seen := make(map[string]struct{}, len(r.Issues))
	paths := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		if _, ok := seen[issue.Path]; ok {
			continue
		}
		seen[issue.Path] = struct{}{}
		paths = append(paths, issue.Path)
	}
	sort.Strings(paths)
	return paths
}

// Validate checks record against the entity shape. Keys that the entity does
// not declare are ignored.
func Validate(entity schema.Entity, record map[string]any) Result {
	var issues []Issue
	for _, prop := range entity.Properties {
		value, present := record[prop.Key]
		issues = append(issues, validateNode(prop.Key, prop.Node, value, present)...)
	}
	return Result{Valid: len(issues) == 0, Issues: issues}
}

func validateNode(path string, node schema.Node, value any, present bool) []Issue {
	inner, optional := node.Unwrap()
	if !present || value == nil {
		if optional {
			return nil
		}
		return []Issue{{Path: path, Message: MessageRequired}}
	}
	if optional && isBlankString(value) && inner.Kind != schema.KindString {
		return nil
	}

	switch inner.Kind {
	case schema.KindString:
		return validateString(path, inner, value, optional)
	case schema.KindNumber:
		return validateNumber(path, inner, value)
	case schema.KindBoolean:
		if _, ok := value.(bool); !ok {
			return []Issue{{Path: path, Message: MessageInvalidType}}
		}
	case schema.KindEnum:
		str, ok := value.(string)
		if !ok {
			return []Issue{{Path: path, Message: MessageInvalidType}}
		}
		if str == "" && optional {
			return nil
		}
		for _, candidate := range inner.Values {
			if candidate == str {
				return nil
			}
		}
		return []Issue{{Path: path, Message: MessageNotInEnum}}
	case schema.KindDate:
		if _, ok := schema.ParseDate(value); !ok {
			return []Issue{{Path: path, Message: MessageInvalidDate}}
		}
	case schema.KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return []Issue{{Path: path, Message: MessageInvalidType}}
		}
		var issues []Issue
		for _, prop := range inner.Properties {
			child, childPresent := obj[prop.Key]
			issues = append(issues, validateNode(path+"."+prop.Key, prop.Node, child, childPresent)...)
		}
		return issues
	case schema.KindArray:
		return validateArray(path, inner, value)
	}
	return nil
}

func validateString(path string, node schema.Node, value any, optional bool) []Issue {
	str, ok := value.(string)
	if !ok {
		return []Issue{{Path: path, Message: MessageInvalidType}}
	}
	if str == "" && optional {
		return nil
	}
	c := node.Constraints
	length := utf8.RuneCountInString(str)
	if c.MinLength != nil && length < *c.MinLength {
		if length == 0 {
			return []Issue{{Path: path, Message: MessageRequired}}
		}
		return []Issue{{Path: path, Message: fmt.Sprintf("must be at least %d characters", *c.MinLength)}}
	}
	if c.MaxLength != nil && length > *c.MaxLength {
		return []Issue{{Path: path, Message: fmt.Sprintf("must be at most %d characters", *c.MaxLength)}}
	}
	if c.Pattern != "" {
		re, err := regexp.Compile(c.Pattern)
		if err == nil && !re.MatchString(str) {
			return []Issue{{Path: path, Message: "does not match the expected format"}}
		}
	}
	switch strings.ToLower(c.Format) {
	case "email":
		if _, err := mail.ParseAddress(str); err != nil {
			return []Issue{{Path: path, Message: "invalid email"}}
		}
	case "url", "uri":
		if u, err := url.Parse(str); err != nil || u.Scheme == "" || u.Host == "" {
			return []Issue{{Path: path, Message: "invalid url"}}
		}
	}
	return nil
}

func validateNumber(path string, node schema.Node, value any) []Issue {
	num, ok := ToFloat(value)
	if !ok {
		return []Issue{{Path: path, Message: MessageInvalidType}}
	}
	c := node.Constraints
	if c.Minimum != nil && num < *c.Minimum {
		return []Issue{{Path: path, Message: fmt.Sprintf("must be greater than or equal to %v", *c.Minimum)}}
	}
	if c.Maximum != nil && num > *c.Maximum {
		return []Issue{{Path: path, Message: fmt.Sprintf("must be less than or equal to %v", *c.Maximum)}}
	}
	return nil
}

func validateArray(path string, node schema.Node, value any) []Issue {
	var items []any
	switch typed := value.(type) {
	case []any:
		items = typed
	case []string:
		items = make([]any, len(typed))
		for i, v := range typed {
			items[i] = v
		}
	default:
		return []Issue{{Path: path, Message: MessageInvalidType}}
	}
	if node.Elem == nil {
		return nil
	}
	var issues []Issue
	for i, item := range items {
		issues = append(issues, validateNode(fmt.Sprintf("%s.%d", path, i), *node.Elem, item, true)...)
	}
	return issues
}

// ToFloat converts the numeric Go types a decoded record can carry.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isBlankString(value any) bool {
	str, ok := value.(string)
	return ok && strings.TrimSpace(str) == ""
}
