package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nerfzael/drone-daemon/pkg/apierr"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

type promptEnqueueBody struct {
	ID   string            `json:"id"`
	Cmd  string            `json:"cmd"`
	Args []string          `json:"args,omitempty"`
	Kind string            `json:"kind,omitempty"`
	Cwd  string            `json:"cwd,omitempty"`
	Env  map[string]string `json:"env,omitempty"`
}

func (s *Server) handlePromptEnqueue(w http.ResponseWriter, r *http.Request) {
	var body promptEnqueueBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if !types.ValidJobID(body.ID) {
		writeError(w, apierr.BadRequest("invalid id"))
		return
	}
	if body.Cmd == "" {
		writeError(w, apierr.BadRequest("cmd is required"))
		return
	}

	if existing, ok := s.jobs.LoadJob(body.ID); ok {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "note": "already exists", "job": existing})
		return
	}

	now := time.Now()
	job := &types.PromptJob{
		ID:               body.ID,
		Kind:             body.Kind,
		Command:          body.Cmd,
		Arguments:        body.Args,
		WorkingDirectory: body.Cwd,
		Environment:      body.Env,
		CreatedAt:        now,
		UpdatedAt:        now,
		State:            types.JobQueued,
	}
	if err := s.jobs.SaveJob(job); err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}
	if err := s.jobs.AppendJobID(job.ID); err != nil {
		writeError(w, apierr.Internal(err.Error()))
		return
	}

	s.pump.Wake()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true, "job": job})
}

func (s *Server) handlePromptGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, ok := s.jobs.LoadJob(id)
	if !ok {
		writeError(w, apierr.NotFound("job not found"))
		return
	}

	if job.State == types.JobRunning {
		s.pump.FinalizeIfDead(r.Context(), job)
	}

	writeJSON(w, http.StatusOK, job)
}
