package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nerfzael/drone-daemon/pkg/metrics"
	"github.com/nerfzael/drone-daemon/pkg/process"
	"github.com/nerfzael/drone-daemon/pkg/sessionlog"
	"github.com/nerfzael/drone-daemon/pkg/types"
)

// multiplexerClient is the slice of the multiplexer adapter the HTTP
// handlers drive directly: arbitrary named-session input and output, never
// session lifecycle (that belongs to the scheduler and the process
// supervisor).
type multiplexerClient interface {
	SessionExists(ctx context.Context, name string) bool
	SendText(ctx context.Context, name, text string, pressEnter bool) error
	SendKeys(ctx context.Context, name string, keys []string) error
	PasteRawText(ctx context.Context, name, text string) error
	CapturePromptLine(ctx context.Context, name string) (string, error)
}

// jobStore is the slice of store.JobStore the HTTP layer needs to enqueue
// and look up prompt jobs.
type jobStore interface {
	LoadJob(id string) (*types.PromptJob, bool)
	SaveJob(job *types.PromptJob) error
	AppendJobID(id string) error
}

// processSupervisor is the slice of process.Supervisor the HTTP layer
// drives.
type processSupervisor interface {
	Start(ctx context.Context, req process.StartRequest) (*types.ProcessRecord, error)
	Stop(ctx context.Context, session string) error
	Status(ctx context.Context) (*types.ProcessRecord, bool)
}

// pumpWaker is the slice of scheduler.Pump the HTTP layer needs: waking the
// pump after an enqueue, and finalizing a job on read if its session has
// already gone.
type pumpWaker interface {
	Wake()
	FinalizeIfDead(ctx context.Context, job *types.PromptJob) bool
}

// Server holds every dependency the HTTP surface needs and builds the
// gorilla/mux router wiring them to handlers.
type Server struct {
	mux        multiplexerClient
	jobs       jobStore
	supervisor processSupervisor
	pump       pumpWaker
	sessionLog *sessionlog.Resolver

	token string
	name  string
}

// NewServer returns a Server. name is reported verbatim in /v1/health.
func NewServer(muxClient multiplexerClient, jobs jobStore, supervisor processSupervisor, pump pumpWaker, token, name string) *Server {
	return &Server{
		mux:        muxClient,
		jobs:       jobs,
		supervisor: supervisor,
		pump:       pump,
		sessionLog: sessionlog.New(nil),
		token:      token,
		name:       name,
	}
}

// Router builds the complete HTTP handler: unauthenticated /metrics, and
// the bearer-authenticated /v1 surface, both wrapped in request logging and
// metrics instrumentation.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.authMiddleware)

	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	v1.HandleFunc("/process/start", s.handleProcessStart).Methods(http.MethodPost)
	v1.HandleFunc("/process/stop", s.handleProcessStop).Methods(http.MethodPost)

	v1.HandleFunc("/input", s.handleInput).Methods(http.MethodPost)
	v1.HandleFunc("/keys", s.handleKeys).Methods(http.MethodPost)

	v1.HandleFunc("/terminal/input", s.handleTerminalInput).Methods(http.MethodPost)
	v1.HandleFunc("/terminal/output", s.handleTerminalOutput).Methods(http.MethodGet)
	v1.HandleFunc("/terminal/output/stream", s.handleTerminalOutputStream).Methods(http.MethodGet)
	v1.HandleFunc("/terminal/prompt", s.handleTerminalPrompt).Methods(http.MethodGet)

	v1.HandleFunc("/output", s.handleOutput).Methods(http.MethodGet)
	v1.HandleFunc("/output/stream", s.handleOutputStream).Methods(http.MethodGet)

	v1.HandleFunc("/prompts/enqueue", s.handlePromptEnqueue).Methods(http.MethodPost)
	v1.HandleFunc("/prompts/{id}", s.handlePromptGet).Methods(http.MethodGet)

	return loggingMiddleware(metricsMiddleware(r))
}
