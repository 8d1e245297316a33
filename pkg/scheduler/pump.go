package scheduler

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerfzael/drone-daemon/pkg/log"
	"github.com/nerfzael/drone-daemon/pkg/metrics"
	"github.com/nerfzael/drone-daemon/pkg/multiplexer"
	"github.com/nerfzael/drone-daemon/pkg/store"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

// TickInterval is the periodic cadence the pump runs at.
const TickInterval = 400 * time.Millisecond

// sessionRunner is the slice of the multiplexer adapter the pump needs: it
// never sends input or reads output, only checks liveness and starts jobs.
type sessionRunner interface {
	SessionExists(ctx context.Context, name string) bool
	StartSession(ctx context.Context, opts multiplexer.StartOptions) error
}

// Pump is the scheduler's single logical actor: it owns the job queue's
// FIFO discipline and the at-most-one-running invariant.
type Pump struct {
	jobs   *store.JobStore
	mux    sessionRunner
	outDir string
	logger zerolog.Logger

	busy   atomic.Bool
	stopCh chan struct{}
	wakeCh chan struct{}
}

// NewPump returns a Pump that runs jobs against mux, persisting records via
// jobs, and writing capture files under outDir (the daemon's
// "prompts/out" directory).
func NewPump(jobs *store.JobStore, mux sessionRunner, outDir string) *Pump {
	return &Pump{
		jobs:   jobs,
		mux:    mux,
		outDir: outDir,
		logger: log.WithComponent("scheduler"),
		stopCh: make(chan struct{}),
		wakeCh: make(chan struct{}, 1),
	}
}

// Start runs the pump's tick loop in a new goroutine.
func (p *Pump) Start() {
	go p.run()
}

// Stop terminates the tick loop. It is not safe to call Stop twice.
func (p *Pump) Stop() {
	close(p.stopCh)
}

// Wake requests an out-of-band tick, for callers that just enqueued a job
// and do not want to wait for the next periodic tick. It never blocks: if a
// wakeup is already pending, this is a no-op.
func (p *Pump) Wake() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

func (p *Pump) run() {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	ctx := context.Background()
	p.Tick(ctx)

	for {
		select {
		case <-ticker.C:
			p.Tick(ctx)
		case <-p.wakeCh:
			p.Tick(ctx)
		case <-p.stopCh:
			return
		}
	}
}

// Tick runs one pump body, short-circuiting if a previous tick is still in
// flight. It is exported so startup can run the crash-recovery pass before
// the HTTP server begins accepting requests.
func (p *Pump) Tick(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	defer p.busy.Store(false)

	metrics.PumpTicksTotal.Inc()

	idx := p.jobs.LoadIndex()
	running := false
	queuedCount := 0

	for _, id := range idx.Order {
		if id == "" {
			continue
		}
		job, ok := p.jobs.LoadJob(id)
		if !ok {
			continue
		}
		switch job.State {
		case types.JobRunning:
			if p.mux.SessionExists(ctx, job.SessionName()) {
				running = true
				continue
			}
			p.finalize(ctx, job)
			if err := p.jobs.SaveJob(job); err != nil {
				p.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to save finalized job")
			}
			if job.State == types.JobRunning {
				running = true
			}
		case types.JobQueued:
			queuedCount++
		}
	}

	metrics.JobsQueued.Set(float64(queuedCount))
	if running {
		metrics.JobsRunning.Set(1)
		return
	}
	metrics.JobsRunning.Set(0)

	next := p.firstQueued(idx)
	if next == nil {
		return
	}

	now := time.Now()
	next.State = types.JobRunning
	next.StartedAt = &now
	next.UpdatedAt = now
	if err := p.jobs.SaveJob(next); err != nil {
		p.logger.Error().Err(err).Str("job_id", next.ID).Msg("failed to save job before start")
		return
	}

	if err := p.startJob(ctx, next); err != nil {
		p.logger.Error().Err(err).Str("job_id", next.ID).Msg("failed to start job")
		next.State = types.JobFailed
		next.FinishedAt = &now
		next.UpdatedAt = now
		next.Error = err.Error()
		_ = p.jobs.SaveJob(next)
		return
	}
	metrics.JobsRunning.Set(1)
}

func (p *Pump) firstQueued(idx types.JobIndex) *types.PromptJob {
	for _, id := range idx.Order {
		if id == "" {
			continue
		}
		job, ok := p.jobs.LoadJob(id)
		if !ok {
			continue
		}
		if job.State == types.JobQueued {
			return job
		}
	}
	return nil
}

// FinalizeIfDead finalizes job in place and persists it if it is running
// but its session no longer exists. It returns true if a finalize
// occurred, letting a caller (the GET /v1/prompts/:id handler) know to
// re-serve the now-terminal record.
func (p *Pump) FinalizeIfDead(ctx context.Context, job *types.PromptJob) bool {
	if job.State != types.JobRunning {
		return false
	}
	if p.mux.SessionExists(ctx, job.SessionName()) {
		return false
	}
	p.finalize(ctx, job)
	if err := p.jobs.SaveJob(job); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to save finalized job")
	}
	return true
}

func (p *Pump) startJob(ctx context.Context, job *types.PromptJob) error {
	paths := store.NewJobOutputPaths(p.outDir, job.ID)
	job.StdoutPath = paths.Stdout
	job.StderrPath = paths.Stderr
	job.ExitPath = paths.Exit

	if err := store.EnsureDirectory(p.outDir); err != nil {
		return err
	}
	script := buildRunScript(job, paths)
	if err := os.WriteFile(paths.Script, []byte(script), 0o700); err != nil {
		return fmt.Errorf("scheduler: write run script for %s: %w", job.ID, err)
	}

	return p.mux.StartSession(ctx, multiplexer.StartOptions{
		Name:    job.SessionName(),
		Command: "/bin/sh",
		Arguments: []string{paths.Script},
	})
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// buildRunScript composes the shell script the pump runs inside the job's
// tmux session: optional cd, exported environment, the command redirected
// to the job's stdout/stderr files, and its exit code captured to a
// sibling file so the finalizer can read it without parsing tmux output.
func buildRunScript(job *types.PromptJob, paths store.JobOutputPaths) string {
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("set +e\n")

	if job.WorkingDirectory != "" {
		fmt.Fprintf(&b, "cd %s || exit 1\n", shellQuote(job.WorkingDirectory))
	}
	for k, v := range job.Environment {
		key := types.SanitizeEnvKey(k)
		if key == "" {
			continue
		}
		fmt.Fprintf(&b, "export %s=%s\n", key, shellQuote(v))
	}

	parts := make([]string, 0, 1+len(job.Arguments))
	parts = append(parts, shellQuote(job.Command))
	for _, arg := range job.Arguments {
		parts = append(parts, shellQuote(arg))
	}
	fmt.Fprintf(&b, "%s > %s 2> %s\n", strings.Join(parts, " "), shellQuote(paths.Stdout), shellQuote(paths.Stderr))
	b.WriteString("__drone_exit=$?\n")
	fmt.Fprintf(&b, "echo \"$__drone_exit\" > %s\n", shellQuote(paths.Exit))
	b.WriteString("exit 0\n")
	return b.String()
}
