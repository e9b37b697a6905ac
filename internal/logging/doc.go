// Package logging assembles structured slog loggers and formatting helpers used
// across streamfinder.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so discovery code can tag log
// lines with request IDs, operations, and the issuing shell. Credential query
// parameters are redacted from attribute values before they are written. A
// no-op logger is provided for tests and wiring code that cannot fail.
package logging
