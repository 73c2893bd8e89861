// Package model defines the admin configuration consumed by the form, table
// and relation packages. Builders reside in internal/model but return the
// types re-exported here.
//
// A FieldConfig is derived once per schema property. Explicit metadata
// (schema.Meta) always takes precedence; otherwise the type is inferred from
// the property's kind, with string keys consulted for email, url, textarea and
// image hints. Display flags default to visible everywhere except that long
// text, rich text, images and files stay out of tables. Output keeps schema
// declaration order; consumers that honour display.order call SortByOrder.
//
// Extra metadata is filtered through an allowlist (helpText, cssClass, widget,
// unit, section, badge, hideLabel, truncate, confirmMessage, accept) so
// renderers only ever see directives they understand.
package model
