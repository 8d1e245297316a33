// Package process tracks the daemon's single "foreground process": a
// ProcessRecord attached to a well-known multiplexer session, started,
// force-replaced, and stopped independently of the prompt job queue.
package process
