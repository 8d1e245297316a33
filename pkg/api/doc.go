// Package api implements the daemon's bearer-authenticated HTTP surface:
// health and status, process supervisor operations, terminal input/output
// for the foreground process and arbitrary named sessions, and prompt job
// enqueue/lookup. Routing is gorilla/mux; Prometheus exposition is served
// unauthenticated at /metrics.
package api
