// Package definitions loads entity definitions from JSON or YAML files into
// annotated schema.Entity values. Each field declares its kind, optionality
// and constraints next to an "admin" block that becomes the presentation
// metadata consumed by the deriver.
package definitions
