// Package main hosts the streamfinder CLI entrypoint and command graph.
//
// The Cobra command tree offers an interactive numbered-prompt search, a
// flag-driven search with table or JSON output, single link resolution, the web
// server, and cache and configuration maintenance. Configuration loading and
// dependency wiring live in one command context so subcommands only deal with
// presentation; the search and link logic itself is in internal/discovery and is
// shared with the web shell.
package main
