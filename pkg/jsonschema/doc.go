// Package jsonschema turns JSON Schema documents into admin entities.
//
// A document either describes one entity at its root or a set of entities
// under $defs (or the legacy definitions keyword). Local references of the
// form "#/$defs/Name" are inlined before conversion; the x-admin and
// x-relationships extensions carry the same meaning as in the OpenAPI
// adapter.
package jsonschema
