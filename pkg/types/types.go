package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// sessionNameGrammar is the conservative identifier grammar applied to every
// externally-supplied terminal session name: non-empty, [A-Za-z0-9._-], at
// most 64 characters.
var sessionNameGrammar = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidSessionName reports whether name matches the session name grammar.
func ValidSessionName(name string) bool {
	return sessionNameGrammar.MatchString(name)
}

// sessionTagChars is the set of characters a job-derived session name keeps
// unmodified; everything else collapses to a single '-'.
var sessionTagChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// JobSessionPrefix names every tmux session the scheduler creates to run a
// prompt job.
const JobSessionPrefix = "drone-prompt-"

// maxJobSessionIDLen bounds the sanitized portion of a job session name.
const maxJobSessionIDLen = 48

// JobSessionName derives the deterministic tmux session name for a prompt
// job from its ID: runs of characters outside the session name grammar
// collapse to '-', the result is truncated to 48 characters, and an empty
// result becomes "job".
func JobSessionName(jobID string) string {
	sanitized := sessionTagChars.ReplaceAllString(jobID, "-")
	if len(sanitized) > maxJobSessionIDLen {
		sanitized = sanitized[:maxJobSessionIDLen]
	}
	if sanitized == "" {
		sanitized = "job"
	}
	return JobSessionPrefix + sanitized
}

// ProcessRecord is the daemon's single tracked foreground process, attached
// to a well-known tmux session. At most one exists at a time; it is cleared
// on stop or on a successful force-replace.
type ProcessRecord struct {
	Session          string            `json:"session"`
	Command          string            `json:"command"`
	Arguments        []string          `json:"arguments,omitempty"`
	WorkingDirectory string            `json:"workingDirectory,omitempty"`
	Environment      map[string]string `json:"environment,omitempty"`
	LogPath          string            `json:"logPath"`
	StartedAt        time.Time         `json:"startedAt"`
}

// Empty reports whether r is the zero-value record the daemon persists
// after process/stop.
func (r *ProcessRecord) Empty() bool {
	return r == nil || r.Session == ""
}

// JobState is a closed enum for PromptJob.State. Unknown values arriving
// over the wire are rejected with 400 rather than silently accepted.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobRunning JobState = "running"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// Valid reports whether s is one of the four defined job states.
func (s JobState) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobDone, JobFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is a terminal state (done or failed).
func (s JobState) Terminal() bool {
	return s == JobDone || s == JobFailed
}

// PromptJob is a queued, running, or finished external command whose stdio
// is captured to files under the daemon's data directory.
type PromptJob struct {
	ID   string `json:"id"`
	Kind string `json:"kind,omitempty"`

	Command          string            `json:"command"`
	Arguments        []string          `json:"arguments,omitempty"`
	WorkingDirectory string            `json:"workingDirectory,omitempty"`
	Environment      map[string]string `json:"environment,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`

	StdoutPath string `json:"stdoutPath"`
	StderrPath string `json:"stderrPath"`
	ExitPath   string `json:"exitPath"`

	State    JobState `json:"state"`
	ExitCode *int     `json:"exitCode,omitempty"`
	Stdout   string   `json:"stdout,omitempty"`
	Stderr   string   `json:"stderr,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// SessionName returns the deterministic tmux session name the scheduler
// uses to run this job.
func (j *PromptJob) SessionName() string {
	return JobSessionName(j.ID)
}

// jobIDGrammar is the session name grammar itself; path separators are
// excluded because they fall outside [A-Za-z0-9._-].
var jobIDGrammar = sessionNameGrammar

// ValidJobID reports whether id is a non-empty identifier safe to derive
// filesystem paths and a tmux session name from.
func ValidJobID(id string) bool {
	return jobIDGrammar.MatchString(id)
}

// sanitizeEnvKey keeps only [A-Za-z0-9_], matching the grammar the
// scheduler applies before interpolating an environment variable name into
// a generated shell script.
func sanitizeEnvKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeEnvKey is the exported form of sanitizeEnvKey, used by the
// scheduler when composing a job's run script.
func SanitizeEnvKey(key string) string {
	return sanitizeEnvKey(key)
}

// JobIndex is the ordered sequence of job IDs the scheduler walks in FIFO
// order. It is truncated to the most recent 400 entries on every save.
type JobIndex struct {
	Order []string `json:"order"`
}

// MaxIndexEntries is the bound JobIndex.Order is truncated to on save.
const MaxIndexEntries = 400

// Dedup returns a copy of idx with duplicate IDs removed, preserving the
// first occurrence of each, then truncated to the most recent
// MaxIndexEntries entries.
func (idx JobIndex) Dedup() JobIndex {
	seen := make(map[string]struct{}, len(idx.Order))
	deduped := make([]string, 0, len(idx.Order))
	for _, id := range idx.Order {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	if len(deduped) > MaxIndexEntries {
		deduped = deduped[len(deduped)-MaxIndexEntries:]
	}
	return JobIndex{Order: deduped}
}

// ValidationError reports a client-supplied value that failed validation,
// formatted as "field: message". It is not an apierr.Error, so
// apierr.StatusOf reports it as 500; the HTTP handlers signal their 400s
// with apierr.BadRequest instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
