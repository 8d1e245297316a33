package api

import (
	"context"
	"net/http"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

// resolveSession returns requested if non-empty, else the session attached
// to the current ProcessRecord. It returns an error if neither is
// available or the resolved name fails the session-name grammar.
func (s *Server) resolveSession(ctx context.Context, requested string) (string, error) {
	session := requested
	if session == "" {
		rec, _ := s.supervisor.Status(ctx)
		if rec == nil {
			return "", apierr.BadRequest("no session given and no process is running")
		}
		session = rec.Session
	}
	if !types.ValidSessionName(session) {
		return "", apierr.BadRequest("invalid session name")
	}
	return session, nil
}

type inputBody struct {
	Text    string `json:"text"`
	Enter   *bool  `json:"enter,omitempty"`
	Session string `json:"session,omitempty"`
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var body inputBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := s.resolveSession(r.Context(), body.Session)
	if err != nil {
		writeError(w, err)
		return
	}

	pressEnter := true
	if body.Enter != nil {
		pressEnter = *body.Enter
	}

	if err := s.mux.SendText(r.Context(), session, body.Text, pressEnter); err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type keysBody struct {
	Keys    []string `json:"keys"`
	Session string   `json:"session,omitempty"`
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	var body keysBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if len(body.Keys) == 0 {
		writeError(w, apierr.BadRequest("keys must be non-empty"))
		return
	}

	session, err := s.resolveSession(r.Context(), body.Session)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.mux.SendKeys(r.Context(), session, body.Keys); err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
