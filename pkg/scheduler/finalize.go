package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/nerfzael/drone-daemon/pkg/metrics"
	"github.com/nerfzael/drone-daemon/pkg/store"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

const (
	settleTimeout     = 10 * time.Second
	settlePollPeriod  = 150 * time.Millisecond
	settleStableReads = 2
	capturedMaxBytes  = 2 * 1024 * 1024
)

// codexKind is the PromptJob.Kind value that activates the structured-event
// aware settle heuristic below.
const codexKind = "codex"

var codexTerminalMarkers = []string{
	`"type":"turn.completed"`,
	`"type":"response.completed"`,
	`"type":"response.failed"`,
	`"type":"error"`,
}

func codexHasTerminalMarker(stdout string) bool {
	for _, marker := range codexTerminalMarkers {
		if strings.Contains(stdout, marker) {
			return true
		}
	}
	return false
}

// codexNeedsSettle reports whether stdout looks like a codex run that has
// started a turn but not yet flushed a terminal event, per kind's
// classification.
func codexNeedsSettle(kind, stdout string) bool {
	if kind != codexKind {
		return false
	}
	if !strings.Contains(stdout, `"type":"thread.started"`) {
		return false
	}
	if !strings.Contains(stdout, `"type":"turn.started"`) {
		return false
	}
	return !codexHasTerminalMarker(stdout)
}

// finalize transitions job from running to a terminal state. It assumes the
// caller has already confirmed the job's tmux session is gone.
func (p *Pump) finalize(ctx context.Context, job *types.PromptJob) {
	paths := store.NewJobOutputPaths(p.outDir, job.ID)

	exitCode, hasExit := store.ReadInt(paths.Exit)
	stdout := store.ReadText(paths.Stdout, capturedMaxBytes)
	stderr := store.ReadText(paths.Stderr, capturedMaxBytes)

	if !hasExit || codexNeedsSettle(job.Kind, stdout) {
		exitCode, hasExit, stdout, stderr = p.settle(paths, job.Kind, exitCode, hasExit, stdout, stderr)
	}

	now := time.Now()
	job.FinishedAt = &now
	job.UpdatedAt = now
	job.Stdout = stdout
	job.Stderr = stderr

	if hasExit {
		ec := exitCode
		job.ExitCode = &ec
	}

	if hasExit && exitCode == 0 {
		job.State = types.JobDone
		metrics.JobsTotal.WithLabelValues(string(types.JobDone)).Inc()
		return
	}

	job.State = types.JobFailed
	job.Error = firstNonEmpty(strings.TrimSpace(stderr), strings.TrimSpace(stdout), job.Error, "failed")
	metrics.JobsTotal.WithLabelValues(string(types.JobFailed)).Inc()
}

// settle re-reads the job's capture files every settlePollPeriod, for up to
// settleTimeout, waiting for output to stop growing (and, for codex jobs, a
// terminal event marker) before the finalizer commits the record. Some
// child processes keep writing to stdout briefly after the pump observes
// their session has died; settling here avoids losing that tail.
func (p *Pump) settle(paths store.JobOutputPaths, kind string, exitCode int, hasExit bool, stdout, stderr string) (int, bool, string, string) {
	deadline := time.Now().Add(settleTimeout)
	stableReads := 0
	prevStdoutLen, prevStderrLen := len(stdout), len(stderr)

	for time.Now().Before(deadline) {
		time.Sleep(settlePollPeriod)

		exitCode, hasExit = store.ReadInt(paths.Exit)
		stdout = store.ReadText(paths.Stdout, capturedMaxBytes)
		stderr = store.ReadText(paths.Stderr, capturedMaxBytes)

		if len(stdout) == prevStdoutLen && len(stderr) == prevStderrLen {
			stableReads++
		} else {
			stableReads = 0
		}
		prevStdoutLen, prevStderrLen = len(stdout), len(stderr)

		if kind == codexKind {
			if codexHasTerminalMarker(stdout) && (hasExit || stableReads >= settleStableReads) {
				break
			}
			continue
		}
		if hasExit && stableReads >= settleStableReads {
			break
		}
	}
	return exitCode, hasExit, stdout, stderr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
