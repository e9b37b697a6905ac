// Package config loads, normalizes, and validates streamfinder configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TMDB_API_KEY and STREAMING_AVAILABILITY_KEY. The Config type centralizes every
// knob the CLI and the web shell need so both front ends build the same
// orchestrator from one pass.
package config
