// Package cache persists discovery results and per-movie state between runs.
//
// The store keeps two namespaces that can never be confused with each other:
// the discovery namespace maps a composite filter key to the ordered movie IDs
// the catalog returned, and the item namespace maps a movie ID to its cached
// details plus the streaming links resolved so far. A streaming link is either
// a URL or the "not available" sentinel; an absent map key means the link was
// never looked up.
//
// Four backends implement Store: a JSON document on disk (the default), SQLite,
// bbolt, and Redis. Open selects one from configuration.
package cache
