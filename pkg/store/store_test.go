package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
}

func TestWriteJSONAtomicThenReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "value.json")

	require.NoError(t, WriteJSONAtomic(path, sample{Name: "hi"}))

	got := ReadJSON(path, sample{})
	assert.Equal(t, "hi", got.Name)
}

func TestReadJSONMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	got := ReadJSON(filepath.Join(dir, "absent.json"), sample{Name: "default"})
	assert.Equal(t, "default", got.Name)
}

func TestReadJSONUnparseableReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, WriteJSONAtomic(path, "not an object"))

	got := ReadJSON(path, sample{Name: "default"})
	assert.Equal(t, "default", got.Name)
}

func TestReadTextTruncatesLargeFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	data := make([]byte, 100)
	for i := range data {
		data[i] = 'a'
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got := ReadText(path, 10)
	assert.Contains(t, got, truncatedMarker)
}

func TestReadTextMissingFileReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", ReadText(filepath.Join(t.TempDir(), "nope.txt"), 100))
}

func TestReadIntParsesTrimmedValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exit.txt")
	require.NoError(t, os.WriteFile(path, []byte("  42\n"), 0o644))

	n, ok := ReadInt(path)
	require.True(t, ok)
	assert.Equal(t, 42, n)
}

func TestReadIntMissingOrInvalid(t *testing.T) {
	dir := t.TempDir()

	_, ok := ReadInt(filepath.Join(dir, "absent.txt"))
	assert.False(t, ok)

	path := filepath.Join(dir, "garbage.txt")
	require.NoError(t, os.WriteFile(path, []byte("not-a-number"), 0o644))
	_, ok = ReadInt(path)
	assert.False(t, ok)
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	assert.EqualValues(t, 5, FileSize(path))
	assert.EqualValues(t, 0, FileSize(filepath.Join(dir, "absent.txt")))
}

func TestEnsureDirectoryIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "c")
	require.NoError(t, EnsureDirectory(target))
	require.NoError(t, EnsureDirectory(target))
}

func TestNewJobOutputPaths(t *testing.T) {
	paths := NewJobOutputPaths("/data/out", "job-1")
	assert.Equal(t, "/data/out/job-1.stdout.txt", paths.Stdout)
	assert.Equal(t, "/data/out/job-1.stderr.txt", paths.Stderr)
	assert.Equal(t, "/data/out/job-1.exit.txt", paths.Exit)
	assert.Equal(t, "/data/out/job-1.run.sh", paths.Script)
}
