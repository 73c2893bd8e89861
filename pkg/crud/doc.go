// Package crud defines the CRUD service contract for admin entities and the
// orchestration around it.
//
// A Controller calls a Service for one entity, caches list pages in a
// QueryCache and turns every mutation into an Outcome. Successful mutations
// invalidate the cached lists of the entity; failures keep the dialog open
// and carry a notice. BulkDelete runs deletes sequentially under an explicit
// BulkPolicy.
package crud
