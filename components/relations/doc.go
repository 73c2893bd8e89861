// Package relations provides a small net/http handler that serves relation
// candidates as JSON options for relation widgets.
//
// The handler answers GET and HEAD requests on a route carrying the target
// entity as its last path segment and supports query and limit parameters.
// Responses have the shape {"data":[{"value":"5","label":"Transport"}]}.
package relations
