package api

import (
	"net/http"
	"strconv"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/outputlog"
)

// handleOutput reads a bounded chunk of the foreground ProcessRecord's log.
// It is null-safe: with no process running, it returns an empty chunk
// rather than an error.
func (s *Server) handleOutput(w http.ResponseWriter, r *http.Request) {
	since, max, err := parseOffsetQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rec, _ := s.supervisor.Status(r.Context())
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{"chunk": "", "nextOffset": since})
		return
	}

	chunk, next := outputlog.ReadChunk(rec.LogPath, since, max)
	writeJSON(w, http.StatusOK, map[string]any{"chunk": chunk, "nextOffset": next})
}

func (s *Server) handleOutputStream(w http.ResponseWriter, r *http.Request) {
	rec, _ := s.supervisor.Status(r.Context())
	if rec == nil {
		writeError(w, apierr.NotFound("no process is running"))
		return
	}

	var since *int64
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, apierr.BadRequest("invalid since"))
			return
		}
		since = &parsed
	}

	_ = outputlog.Stream(r.Context(), w, rec.LogPath, since, rec.Session)
}
