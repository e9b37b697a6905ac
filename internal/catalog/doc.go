// Package catalog is the TMDB v3 client used for reference lists (watch
// providers, genres, languages), movie discovery, movie details, and credits.
//
// The client accepts an API key, a v4 read access token, or both. Every call
// takes a context and returns errors tagged with services.ErrUpstream or
// services.ErrTimeout so callers can classify failures with errors.Is.
package catalog
