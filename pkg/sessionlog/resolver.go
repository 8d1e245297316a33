package sessionlog

import (
	"os"
	"path/filepath"
	"sync"
)

// DefaultCandidates is the probe order Resolver uses when none is supplied:
// well-known locations a host-level tmux pane-logging setup is likely to
// write under, most to least specific.
var DefaultCandidates = []string{
	"/dvm-data/session-logs",
	"/var/lib/drone/session-logs",
	"/tmp/drone-session-logs",
}

// Resolver lazily picks the first existing directory among its candidates
// and caches the answer; if none exist, it falls back to the last
// candidate so callers always get a deterministic path to probe against
// (a missing file under it just reads as "no output yet").
type Resolver struct {
	candidates []string

	once     sync.Once
	resolved string
}

// New returns a Resolver over candidates. An empty slice uses
// DefaultCandidates.
func New(candidates []string) *Resolver {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Resolver{candidates: candidates}
}

// Root returns the resolved session-log root, probing on first call.
func (r *Resolver) Root() string {
	r.once.Do(func() {
		for _, c := range r.candidates {
			if info, err := os.Stat(c); err == nil && info.IsDir() {
				r.resolved = c
				return
			}
		}
		r.resolved = r.candidates[len(r.candidates)-1]
	})
	return r.resolved
}

// PathFor returns the pane-log path for session under the resolved root.
func (r *Resolver) PathFor(session string) string {
	return filepath.Join(r.Root(), session+".log")
}
