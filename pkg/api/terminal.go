package api

import (
	"net/http"
	"strconv"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/outputlog"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

// maxTerminalInputBytes bounds /v1/terminal/input's data field, measured in
// UTF-8 bytes.
const maxTerminalInputBytes = 128 * 1024

type terminalInputBody struct {
	Session string `json:"session"`
	Data    string `json:"data"`
}

func (s *Server) handleTerminalInput(w http.ResponseWriter, r *http.Request) {
	var body terminalInputBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if !types.ValidSessionName(body.Session) {
		writeError(w, apierr.BadRequest("invalid session name"))
		return
	}
	if len(body.Data) > maxTerminalInputBytes {
		writeError(w, apierr.TooLarge("data exceeds 128 KiB"))
		return
	}
	if !s.mux.SessionExists(r.Context(), body.Session) {
		writeError(w, apierr.NotFound("session not found"))
		return
	}

	if err := s.mux.PasteRawText(r.Context(), body.Session, body.Data); err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func parseOffsetQuery(r *http.Request) (since, max int64, err error) {
	since = 0
	max = outputlog.DefaultChunkBytes
	if v := r.URL.Query().Get("since"); v != "" {
		since, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, apierr.BadRequest("invalid since")
		}
	}
	if v := r.URL.Query().Get("max"); v != "" {
		max, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, apierr.BadRequest("invalid max")
		}
	}
	return since, max, nil
}

func (s *Server) handleTerminalOutput(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if !types.ValidSessionName(session) {
		writeError(w, apierr.BadRequest("invalid session name"))
		return
	}
	since, max, err := parseOffsetQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	chunk, next := outputlog.ReadChunk(s.sessionLog.PathFor(session), since, max)
	writeJSON(w, http.StatusOK, map[string]any{"chunk": chunk, "nextOffset": next})
}

func (s *Server) handleTerminalOutputStream(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if !types.ValidSessionName(session) {
		writeError(w, apierr.BadRequest("invalid session name"))
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

	_ = outputlog.Stream(r.Context(), w, s.sessionLog.PathFor(session), since, session)
}

func (s *Server) handleTerminalPrompt(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if !types.ValidSessionName(session) {
		writeError(w, apierr.BadRequest("invalid session name"))
		return
	}
	if !s.mux.SessionExists(r.Context(), session) {
		writeError(w, apierr.NotFound("session not found"))
		return
	}

	line, err := s.mux.CapturePromptLine(r.Context(), session)
	if err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"line": line})
}
