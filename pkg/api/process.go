package api

import (
	"net/http"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/process"
)

type processStartBody struct {
	Cmd     string            `json:"cmd"`
	Args    []string          `json:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	Session string            `json:"session,omitempty"`
	Force   bool              `json:"force,omitempty"`
}

func (s *Server) handleProcessStart(w http.ResponseWriter, r *http.Request) {
	var body processStartBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Cmd == "" {
		writeError(w, apierr.BadRequest("cmd is required"))
		return
	}

	rec, err := s.supervisor.Start(r.Context(), process.StartRequest{
		Command:          body.Cmd,
		Arguments:        body.Args,
		WorkingDirectory: body.Cwd,
		Environment:      body.Env,
		Session:          body.Session,
		Force:            body.Force,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "process": rec})
}

type processStopBody struct {
	Session string `json:"session,omitempty"`
}

func (s *Server) handleProcessStop(w http.ResponseWriter, r *http.Request) {
	var body processStopBody
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := s.supervisor.Stop(r.Context(), body.Session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
