package multiplexer

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerfzael/drone-daemon/pkg/log"
)

// enterDelay is the pause send-keys waits before submitting Enter, giving
// sensitive TUIs (readline-based prompts, REPLs) time to register the
// preceding literal text before the carriage return arrives.
const enterDelay = 60 * time.Millisecond

// Adapter is a thin wrapper over the tmux binary. It holds no session state
// of its own; every call shells out and inspects tmux's exit status and
// stdout directly.
type Adapter struct {
	bin string
}

// New returns an Adapter that invokes "tmux" from $PATH.
func New() *Adapter {
	return &Adapter{bin: "tmux"}
}

func (a *Adapter) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, a.bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err
}

// SessionExists reports whether name is a live tmux session. A session whose
// sole pane has died (the process exited but tmux kept the pane around
// because remain-on-exit is set) is treated as absent, and best-effort
// killed so it does not linger.
func (a *Adapter) SessionExists(ctx context.Context, name string) bool {
	if _, err := a.run(ctx, "has-session", "-t", name); err != nil {
		return false
	}

	out, err := a.run(ctx, "list-panes", "-t", name, "-F", "#{pane_dead}")
	if err != nil {
		return true
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "1" {
			_, _ = a.run(ctx, "kill-session", "-t", name)
			return false
		}
	}
	return true
}

// StartOptions configures StartSession.
type StartOptions struct {
	Name             string
	Command          string
	Arguments        []string
	WorkingDirectory string
	Environment      map[string]string
}

// StartSession creates a detached tmux session named opts.Name running
// opts.Command with opts.Arguments, prefixed with an "env K=V" vector when
// opts.Environment is non-empty. remain-on-exit is disabled on the new
// session's first window so a dead pane is reliably reported absent by
// SessionExists rather than lingering.
func (a *Adapter) StartSession(ctx context.Context, opts StartOptions) error {
	args := []string{"new-session", "-d", "-s", opts.Name}
	if opts.WorkingDirectory != "" {
		args = append(args, "-c", opts.WorkingDirectory)
	}

	var command []string
	if len(opts.Environment) > 0 {
		command = append(command, "env")
		for k, v := range opts.Environment {
			command = append(command, fmt.Sprintf("%s=%s", k, v))
		}
	}
	command = append(command, opts.Command)
	command = append(command, opts.Arguments...)
	args = append(args, command...)

	if out, err := a.run(ctx, args...); err != nil {
		return fmt.Errorf("multiplexer: new-session %s: %w: %s", opts.Name, err, strings.TrimSpace(out))
	}

	if _, err := a.run(ctx, "set-window-option", "-t", opts.Name, "remain-on-exit", "off"); err != nil {
		logger := log.WithComponent("multiplexer")
		logger.Warn().Err(err).Str("session", opts.Name).Msg("failed to disable remain-on-exit")
	}
	return nil
}

// KillSession kills the named session. Failures (most commonly: the session
// is already gone) are swallowed.
func (a *Adapter) KillSession(ctx context.Context, name string) {
	_, _ = a.run(ctx, "kill-session", "-t", name)
}

// SendText types literal text into the pane. When pressEnter is true it
// pauses enterDelay and then sends an explicit Enter key, rather than
// relying on a trailing newline inside text, since some TUIs do not treat
// an embedded "\n" in a literal send as submission.
func (a *Adapter) SendText(ctx context.Context, name, text string, pressEnter bool) error {
	if _, err := a.run(ctx, "send-keys", "-t", name, "-l", "--", text); err != nil {
		return fmt.Errorf("multiplexer: send-keys literal on %s: %w", name, err)
	}
	if pressEnter {
		time.Sleep(enterDelay)
		if _, err := a.run(ctx, "send-keys", "-t", name, "Enter"); err != nil {
			return fmt.Errorf("multiplexer: send-keys enter on %s: %w", name, err)
		}
	}
	return nil
}

// keyAliases maps common, case-insensitive key names to tmux's native
// key names. This is a closed, small set; extend it freely, but never
// change the mapping for an existing alias, since that would silently
// change behavior for callers already depending on it.
var keyAliases = map[string]string{
	"ctrl+c":      "C-c",
	"ctrl+d":      "C-d",
	"ctrl+z":      "C-z",
	"esc":         "Escape",
	"escape":      "Escape",
	"shift+tab":   "BTab",
	"backtab":     "BTab",
	"enter":       "Enter",
	"return":      "Enter",
	"tab":         "Tab",
	"up":          "Up",
	"down":        "Down",
	"left":        "Left",
	"right":       "Right",
	"backspace":   "BSpace",
	"space":       "Space",
}

// NormalizeKeyName maps a case-insensitive key alias to tmux's native key
// name. Names not found in the alias table pass through verbatim, so
// callers can always address tmux's own vocabulary directly.
func NormalizeKeyName(key string) string {
	if native, ok := keyAliases[strings.ToLower(key)]; ok {
		return native
	}
	return key
}

// SendKeys sends a sequence of named keys, normalized via NormalizeKeyName,
// in a single tmux invocation.
func (a *Adapter) SendKeys(ctx context.Context, name string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	args := []string{"send-keys", "-t", name}
	for _, k := range keys {
		args = append(args, NormalizeKeyName(k))
	}
	if _, err := a.run(ctx, args...); err != nil {
		return fmt.Errorf("multiplexer: send-keys on %s: %w", name, err)
	}
	return nil
}

// PasteRawText loads text into a uniquely-named tmux buffer via the
// standard input of a "load-buffer -" subprocess (avoiding the argv length
// limits a literal send-keys call would hit), then pastes it into the pane
// without appending a trailing newline.
func (a *Adapter) PasteRawText(ctx context.Context, name, text string) error {
	bufName := "drone-paste-" + uuid.NewString()

	cmd := exec.CommandContext(ctx, a.bin, "load-buffer", "-b", bufName, "-")
	cmd.Stdin = strings.NewReader(text)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("multiplexer: load-buffer for %s: %w: %s", name, err, strings.TrimSpace(out.String()))
	}
	defer func() { _, _ = a.run(ctx, "delete-buffer", "-b", bufName) }()

	if _, err := a.run(ctx, "paste-buffer", "-b", bufName, "-t", name); err != nil {
		return fmt.Errorf("multiplexer: paste-buffer for %s: %w", name, err)
	}
	return nil
}

// PipePaneToFile redirects pane output to append to path. It is idempotent:
// any pipe already active on the pane is toggled off first, so repeated
// calls against the same session reliably end up piping to path rather
// than stacking pipes or silently no-op'ing because one was already on.
func (a *Adapter) PipePaneToFile(ctx context.Context, name, path string) error {
	_, _ = a.run(ctx, "pipe-pane", "-t", name)

	quoted := strings.ReplaceAll(path, "'", `'\''`)
	shellCmd := fmt.Sprintf("cat >> '%s'", quoted)
	if _, err := a.run(ctx, "pipe-pane", "-O", "-t", name, shellCmd); err != nil {
		return fmt.Errorf("multiplexer: pipe-pane on %s: %w", name, err)
	}
	return nil
}

// CapturePromptLine returns the pane line at the current cursor row,
// falling back to the pane's last line if the cursor row cannot be read.
func (a *Adapter) CapturePromptLine(ctx context.Context, name string) (string, error) {
	out, err := a.run(ctx, "capture-pane", "-p", "-t", name)
	if err != nil {
		return "", fmt.Errorf("multiplexer: capture-pane on %s: %w", name, err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) == 0 {
		return "", nil
	}

	cursorOut, err := a.run(ctx, "display-message", "-p", "-t", name, "#{cursor_y}")
	if err == nil {
		if row, convErr := strconv.Atoi(strings.TrimSpace(cursorOut)); convErr == nil && row >= 0 && row < len(lines) {
			return lines[row], nil
		}
	}
	return lines[len(lines)-1], nil
}
