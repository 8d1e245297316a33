package outputlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nerfzael/drone-daemon/pkg/store"
)

// StreamChunkBytes is the most Stream reads on each poll.
const StreamChunkBytes = 128 * 1024

// PollInterval is the cadence the SSE loop re-reads the log at.
const PollInterval = 25 * time.Millisecond

type readyPayload struct {
	OK      bool   `json:"ok"`
	Since   int64  `json:"since"`
	Session string `json:"session,omitempty"`
}

type outputPayload struct {
	Chunk      string `json:"chunk"`
	NextOffset int64  `json:"nextOffset"`
}

func writeEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outputlog: marshal %s event: %w", event, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// Stream emits the path's growing contents to w as Server-Sent Events until
// ctx is done (the client disconnected). If since is nil, streaming starts
// tail-from-now at the file's current size; otherwise it starts at
// *since. session, when non-empty, is attached to the initial ready event.
//
// The caller is responsible for authentication and for having already
// validated any session name; Stream only sets the SSE response headers and
// drives the poll loop.
func Stream(ctx context.Context, w http.ResponseWriter, path string, since *int64, session string) error {
	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)

	offset := int64(0)
	if since != nil {
		offset = *since
	} else {
		offset = store.FileSize(path)
	}

	if err := writeEvent(w, "ready", readyPayload{OK: true, Since: offset, Session: session}); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			chunk, next := ReadChunk(path, offset, StreamChunkBytes)
			offset = next
			if chunk == "" {
				continue
			}
			if err := writeEvent(w, "output", outputPayload{Chunk: chunk, NextOffset: next}); err != nil {
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
