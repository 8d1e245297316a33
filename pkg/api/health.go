package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	OK   bool      `json:"ok"`
	Name string    `json:"name"`
	Time time.Time `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Name: s.name, Time: time.Now()})
}

type statusResponse struct {
	Process any  `json:"process"`
	Running bool `json:"running"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rec, running := s.supervisor.Status(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{Process: rec, Running: running})
}
