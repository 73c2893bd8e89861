package schema

import "strings"

// Kind tags a schema node. The primitive kinds form a closed set; KindOptional
// is the single wrapper kind and always carries an Elem.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	KindDate    Kind = "date"
	KindObject  Kind = "object"
	KindArray   Kind = "array"

	KindOptional Kind = "optional"
)

// ParseKind maps free-form kind names coming from definition files and
// OpenAPI documents onto the closed Kind set. Unknown names report false.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "string", "text":
		return KindString, true
	case "number", "integer", "int", "float":
		return KindNumber, true
	case "boolean", "bool":
		return KindBoolean, true
	case "enum":
		return KindEnum, true
	case "date", "datetime", "date-time", "time":
		return KindDate, true
	case "object":
		return KindObject, true
	case "array", "list":
		return KindArray, true
	default:
		return "", false
	}
}

// Constraints captures the validation facets attached to a node.
type Constraints struct {
	MinLength *int     `json:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty"`
	Minimum   *float64 `json:"minimum,omitempty"`
	Maximum   *float64 `json:"maximum,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// Node is one schema shape. Nodes are values: every builder method returns a
// modified copy and never touches the receiver.
type Node struct {
	Kind        Kind        `json:"kind"`
	Values      []string    `json:"values,omitempty"`
	Elem        *Node       `json:"elem,omitempty"`
	Properties  []Property  `json:"properties,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
}

func String() Node  { return Node{Kind: KindString} }
func Number() Node  { return Node{Kind: KindNumber} }
func Boolean() Node { return Node{Kind: KindBoolean} }
func Date() Node    { return Node{Kind: KindDate} }

// Enum returns a string enumeration node.
func Enum(values ...string) Node {
	return Node{Kind: KindEnum, Values: append([]string(nil), values...)}
}

// Object returns an object node with the given ordered properties.
func Object(props ...Property) Node {
	return Node{Kind: KindObject, Properties: cloneProperties(props)}
}

// Array returns an array node whose items follow elem.
func Array(elem Node) Node {
	return Node{Kind: KindArray, Elem: &elem}
}

// Optional wraps node so that a missing value is accepted. Wrapping an
// already optional node is a no-op.
func Optional(node Node) Node {
	if node.Kind == KindOptional {
		return node
	}
	return Node{Kind: KindOptional, Elem: &node}
}

// Unwrap peels a single optional layer. The boolean reports whether the node
// was optional.
func (n Node) Unwrap() (Node, bool) {
	if n.Kind == KindOptional && n.Elem != nil {
		return *n.Elem, true
	}
	return n, false
}

// IsOptional reports whether the outer layer is an optional wrapper.
func (n Node) IsOptional() bool {
	return n.Kind == KindOptional
}

func (n Node) MinLen(v int) Node {
	return n.withConstraints(func(c *Constraints) { c.MinLength = &v })
}

func (n Node) MaxLen(v int) Node {
	return n.withConstraints(func(c *Constraints) { c.MaxLength = &v })
}

// NonEmpty is shorthand for MinLen(1).
func (n Node) NonEmpty() Node {
	return n.MinLen(1)
}

func (n Node) Min(v float64) Node {
	return n.withConstraints(func(c *Constraints) { c.Minimum = &v })
}

func (n Node) Max(v float64) Node {
	return n.withConstraints(func(c *Constraints) { c.Maximum = &v })
}

func (n Node) Matches(pattern string) Node {
	return n.withConstraints(func(c *Constraints) { c.Pattern = pattern })
}

func (n Node) Format(format string) Node {
	return n.withConstraints(func(c *Constraints) { c.Format = format })
}

// withConstraints applies fn to the innermost node so constraints set on an
// optional wrapper land on the value they describe.
func (n Node) withConstraints(fn func(*Constraints)) Node {
	if n.Kind == KindOptional && n.Elem != nil {
		inner := n.Elem.withConstraints(fn)
		n.Elem = &inner
		return n
	}
	c := n.Constraints
	fn(&c)
	n.Constraints = c
	return n
}

func cloneProperties(props []Property) []Property {
	if len(props) == 0 {
		return nil
	}
	return append([]Property(nil), props...)
}
