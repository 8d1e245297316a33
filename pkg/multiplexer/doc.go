// Package multiplexer wraps tmux as the daemon's terminal multiplexer: named
// sessions, literal text and key input, large-buffer paste, pane-to-file
// piping, and prompt-line capture. Every operation shells out to the tmux
// binary and is best-effort with respect to its failures; nothing here
// panics the process.
package multiplexer
