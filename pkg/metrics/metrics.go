// Package metrics exposes the daemon's Prometheus instrumentation: queue
// depth, lifetime job outcomes, HTTP request counts, and scheduler tick
// activity. There is no polling collector: callers update these metrics
// directly from inside the single-threaded components that already own the
// underlying state (the scheduler, the HTTP router), since nothing here
// needs to be re-derived from a separate pass over the data directory.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsQueued = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "drone_jobs_queued",
			Help: "Current number of prompt jobs in the queued state",
		},
	)

	JobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "drone_jobs_running",
			Help: "Current number of prompt jobs in the running state (0 or 1)",
		},
	)

	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drone_jobs_total",
			Help: "Total number of prompt jobs that reached a terminal state, by state",
		},
		[]string{"state"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drone_http_requests_total",
			Help: "Total number of HTTP requests handled, by method, path, and status",
		},
		[]string{"method", "path", "status"},
	)

	PumpTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "drone_pump_ticks_total",
			Help: "Total number of scheduler pump bodies executed (ticks skipped because the previous one was still busy are not counted)",
		},
	)
)

func init() {
	prometheus.MustRegister(JobsQueued)
	prometheus.MustRegister(JobsRunning)
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(PumpTicksTotal)
}

// Handler returns the Prometheus exposition HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed wall-clock time for an in-flight operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
