// Package admin wires the derivation pipeline to services: it derives an
// AdminConfig for every registered entity, binds a CRUD controller to it and
// builds the page view models handed to renderers. Relation candidates are
// served from the registered services through a shared TTL cache that is
// invalidated whenever a list cache entry is.
package admin
