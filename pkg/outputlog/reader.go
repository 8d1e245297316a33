package outputlog

import (
	"io"
	"os"

	"github.com/nerfzael/drone-daemon/pkg/store"
)

// DefaultChunkBytes is the chunk size ReadChunk applies when the caller
// passes a non-positive max.
const DefaultChunkBytes = 64 * 1024

// MaxChunkBytes is the hard ceiling any single ReadChunk call is clamped to.
const MaxChunkBytes = 1024 * 1024

func clampMax(max int64) int64 {
	if max <= 0 {
		max = DefaultChunkBytes
	}
	if max > MaxChunkBytes {
		max = MaxChunkBytes
	}
	return max
}

// ReadChunk reads up to max bytes of path starting at byte offset since.
// since is clamped into [0, fileSize] first; if the clamped since is at
// the current file size, it returns an empty chunk and that clamped offset
// (so an offset past the end comes back as the file size), rather than an
// error. Any I/O error likewise returns an empty chunk and the clamped
// since, matching the reader's "never errors the caller" contract.
func ReadChunk(path string, since, max int64) (string, int64) {
	max = clampMax(max)
	if since < 0 {
		since = 0
	}

	size := store.FileSize(path)
	if since > size {
		since = size
	}
	if since >= size {
		return "", since
	}

	f, err := os.Open(path)
	if err != nil {
		return "", since
	}
	defer f.Close()

	buf := make([]byte, max)
	n, err := f.ReadAt(buf, since)
	if err != nil && err != io.EOF {
		return "", since
	}
	return string(buf[:n]), since + int64(n)
}
