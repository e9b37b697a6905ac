// Package discovery orchestrates a movie search and streaming-link
// resolution on top of the catalog API, the availability API, and the cache.
//
// Search translates the selected service, genre, and language into catalog
// identifiers, reuses or fetches the discovered ID list for the composite
// filter key, loads per-movie details through the item cache, re-applies the
// runtime band client-side, and attaches director names. StreamingLink maps a
// service name to its availability code and resolves one deep link per
// (movie, service), caching the "not available" sentinel as a terminal answer.
//
// Both the web shell and the CLI drive the same Service.
package discovery
