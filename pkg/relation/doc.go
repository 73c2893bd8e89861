// Package relation resolves the candidate records offered by relation fields.
//
// A Fetcher returns raw records for an entity name. HTTPFetcher reads them
// from a JSON endpoint and CachedFetcher memoizes them for DefaultTTL while
// coalescing concurrent misses. Options turns records into labelled
// candidates and Selection tracks the single or multiple value bound to a
// field.
package relation
