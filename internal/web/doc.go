// Package web is the browser front end: a search form, a results page, and a
// streaming-link endpoint that redirects to the provider or explains that no
// link exists. A small JSON API mirrors the same operations, and /metrics and
// /healthz support operations.
package web
