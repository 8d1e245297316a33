package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/multiplexer"
)

type fakeMux struct {
	alive map[string]bool
	start map[string]multiplexer.StartOptions
	piped map[string]string
}

func newFakeMux() *fakeMux {
	return &fakeMux{alive: map[string]bool{}, start: map[string]multiplexer.StartOptions{}, piped: map[string]string{}}
}

func (f *fakeMux) SessionExists(_ context.Context, name string) bool { return f.alive[name] }

func (f *fakeMux) StartSession(_ context.Context, opts multiplexer.StartOptions) error {
	f.alive[opts.Name] = true
	f.start[opts.Name] = opts
	return nil
}

func (f *fakeMux) KillSession(_ context.Context, name string) { f.alive[name] = false }

func (f *fakeMux) PipePaneToFile(_ context.Context, name, path string) error {
	f.piped[name] = path
	return nil
}

func TestStartCreatesRecordAndPipesLog(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	rec, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSession, rec.Session)
	assert.True(t, mux.alive[DefaultSession])
	assert.Equal(t, rec.LogPath, mux.piped[DefaultSession])
	assert.FileExists(t, rec.LogPath)
}

func TestStartConflictsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	_, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)

	_, err = sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.Error(t, err)
	assert.Equal(t, 409, apierr.StatusOf(err))
}

func TestStartForceReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	_, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)

	rec, err := sup.Start(context.Background(), StartRequest{Command: "zsh", Force: true})
	require.NoError(t, err)
	assert.Equal(t, "zsh", rec.Command)
}

func TestStartRejectsInvalidSessionName(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	_, err := sup.Start(context.Background(), StartRequest{Command: "bash", Session: "bad name!"})
	require.Error(t, err)
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestStopClearsRecordAndKillsSession(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	rec, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)

	require.NoError(t, sup.Stop(context.Background(), ""))
	assert.False(t, mux.alive[rec.Session])

	status, running := sup.Status(context.Background())
	assert.Nil(t, status)
	assert.False(t, running)
}

func TestStopWithNoTargetIsBadRequest(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	err := sup.Stop(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 400, apierr.StatusOf(err))
}

func TestStatusReportsLiveFromMultiplexer(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	sup := New(mux, dir, filepath.Join(dir, "logs"))

	_, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)

	mux.alive[DefaultSession] = false
	rec, running := sup.Status(context.Background())
	require.NotNil(t, rec)
	assert.False(t, running)
}

func TestStartTruncatesExistingLogFile(t *testing.T) {
	dir := t.TempDir()
	mux := newFakeMux()
	logsDir := filepath.Join(dir, "logs")
	require.NoError(t, os.MkdirAll(logsDir, 0o755))
	logPath := filepath.Join(logsDir, DefaultSession+".log")
	require.NoError(t, os.WriteFile(logPath, []byte("stale content"), 0o644))

	sup := New(mux, dir, logsDir)
	_, err := sup.Start(context.Background(), StartRequest{Command: "bash"})
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Empty(t, data)
}
