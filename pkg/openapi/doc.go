// Package openapi turns OpenAPI 3 component schemas into annotated entity
// schemas. kin-openapi parses the document; object schemas under
// components.schemas become entities, properties missing from "required" (or
// marked nullable) become optional, and the x-admin / x-relationships
// extensions become presentation metadata.
package openapi
