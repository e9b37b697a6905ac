// Package services defines shared plumbing consumed by the orchestration core,
// the API clients, and both front ends.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, operation names, and the calling
//     shell for logging and tracing.
//   - Structured error markers plus the Wrap helper so failures can be
//     classified with errors.Is (and mapped to HTTP statuses by the web shell).
//
// Use these helpers when wiring new components so error handling and
// observability stay uniform across the CLI and the web form.
package services
