// Package availability is the client for the RapidAPI streaming-availability
// service, which maps a TMDB movie ID to per-country streaming deep links.
//
// It also owns the fixed table translating user-facing service names
// ("Netflix", "HBO Max") to the provider codes that appear in availability
// responses ("netflix", "hbo").
package availability
