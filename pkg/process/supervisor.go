package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/log"
	"github.com/nerfzael/drone-daemon/pkg/multiplexer"
	"github.com/nerfzael/drone-daemon/pkg/store"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

// DefaultSession is the well-known session name process/start uses when the
// caller does not supply one.
const DefaultSession = "drone-main"

// sessionRunner is the slice of the multiplexer adapter the supervisor
// needs: start, kill, liveness, and wiring the pane log to disk.
type sessionRunner interface {
	SessionExists(ctx context.Context, name string) bool
	StartSession(ctx context.Context, opts multiplexer.StartOptions) error
	KillSession(ctx context.Context, name string)
	PipePaneToFile(ctx context.Context, name, path string) error
}

// StartRequest is the validated input to Start.
type StartRequest struct {
	Command          string
	Arguments        []string
	WorkingDirectory string
	Environment      map[string]string
	Session          string
	Force            bool
}

// Supervisor owns the single ProcessRecord persisted at baseDir/state.json
// and the well-known session it runs under logsDir.
type Supervisor struct {
	mux        sessionRunner
	recordPath string
	logsDir    string
}

// New returns a Supervisor backed by mux, persisting its record at
// baseDir/state.json and writing session logs under logsDir.
func New(mux sessionRunner, baseDir, logsDir string) *Supervisor {
	return &Supervisor{
		mux:        mux,
		recordPath: filepath.Join(baseDir, "state.json"),
		logsDir:    logsDir,
	}
}

func (s *Supervisor) load() *types.ProcessRecord {
	return store.ReadJSON(s.recordPath, &types.ProcessRecord{})
}

func (s *Supervisor) save(rec *types.ProcessRecord) error {
	return store.WriteJSONAtomic(s.recordPath, rec)
}

// LogPath returns the pane-log path for session.
func (s *Supervisor) LogPath(session string) string {
	return filepath.Join(s.logsDir, session+".log")
}

// Start implements process/start: see spec §4.G. A conflict (409) is
// returned if a record already exists or the multiplexer already has the
// target session, unless req.Force is set, in which case the existing
// session is killed first.
func (s *Supervisor) Start(ctx context.Context, req StartRequest) (*types.ProcessRecord, error) {
	session := req.Session
	if session == "" {
		session = DefaultSession
	}
	if !types.ValidSessionName(session) {
		return nil, apierr.BadRequest("invalid session name")
	}

	existing := s.load()
	hasRecord := !existing.Empty()
	sessionLive := s.mux.SessionExists(ctx, session)

	if (hasRecord || sessionLive) && !req.Force {
		return nil, apierr.Conflict("a process is already running; pass force to replace it")
	}
	if req.Force && sessionLive {
		s.mux.KillSession(ctx, session)
	}

	logPath := s.LogPath(session)
	if err := store.EnsureDirectory(s.logsDir); err != nil {
		return nil, apierr.Internal(err.Error())
	}
	if err := os.WriteFile(logPath, nil, 0o644); err != nil {
		return nil, apierr.Internal(fmt.Sprintf("process: truncate log: %v", err))
	}

	if err := s.mux.StartSession(ctx, multiplexer.StartOptions{
		Name:             session,
		Command:          req.Command,
		Arguments:        req.Arguments,
		WorkingDirectory: req.WorkingDirectory,
		Environment:      req.Environment,
	}); err != nil {
		return nil, apierr.Internal(fmt.Sprintf("process: start session: %v", err))
	}

	if err := s.mux.PipePaneToFile(ctx, session, logPath); err != nil {
		logger := log.WithComponent("process")
		logger.Warn().Err(err).Str("session", session).Msg("failed to pipe pane to log file")
	}

	rec := &types.ProcessRecord{
		Session:          session,
		Command:          req.Command,
		Arguments:        req.Arguments,
		WorkingDirectory: req.WorkingDirectory,
		Environment:      req.Environment,
		LogPath:          logPath,
		StartedAt:        time.Now(),
	}
	if err := s.save(rec); err != nil {
		return nil, apierr.Internal(err.Error())
	}
	return rec, nil
}

// Stop implements process/stop: see spec §4.G. session, if non-empty,
// overrides the recorded session. Returns a 400 if there is nothing to
// target.
func (s *Supervisor) Stop(ctx context.Context, session string) error {
	rec := s.load()
	target := session
	if target == "" {
		target = rec.Session
	}
	if target == "" {
		return apierr.BadRequest("no process to stop")
	}
	if !types.ValidSessionName(target) {
		return apierr.BadRequest("invalid session name")
	}

	s.mux.KillSession(ctx, target)

	if rec.Session == target {
		if err := s.save(&types.ProcessRecord{}); err != nil {
			return apierr.Internal(err.Error())
		}
	}
	return nil
}

// Status implements process status: the persisted record plus a live
// running boolean derived from the multiplexer.
func (s *Supervisor) Status(ctx context.Context) (*types.ProcessRecord, bool) {
	rec := s.load()
	if rec.Empty() {
		return nil, false
	}
	return rec, s.mux.SessionExists(ctx, rec.Session)
}
