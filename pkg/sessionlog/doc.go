// Package sessionlog resolves the read-only root directory that holds
// per-session pane logs for terminal sessions the daemon did not itself
// start (those belong to external tooling; the daemon only consumes their
// logs). The root is probed once per process lifetime and cached.
package sessionlog
