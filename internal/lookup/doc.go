// Package lookup translates human-readable filter names into the identifiers
// the catalog API expects: a streaming service name into a watch-provider ID,
// a genre name into a genre ID, and a language name into an ISO 639-1 code.
//
// Each translation fetches the authoritative list from the catalog and scans
// it for a case-sensitive exact match on the display name. A miss is an
// explicit *NotFoundError carrying "did you mean" suggestions, never a silent
// empty value.
package lookup
