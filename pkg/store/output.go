package store

import "path/filepath"

// JobOutputPaths is the set of capture files a prompt job's execution
// writes to, all derived deterministically from its ID so the scheduler and
// the enqueue handler always agree on where a job's output lives.
type JobOutputPaths struct {
	Stdout string
	Stderr string
	Exit   string
	Script string
}

// NewJobOutputPaths derives a job's capture file paths from outDir (the
// daemon's "prompts/out" directory) and its ID.
func NewJobOutputPaths(outDir, id string) JobOutputPaths {
	base := filepath.Join(outDir, id)
	return JobOutputPaths{
		Stdout: base + ".stdout.txt",
		Stderr: base + ".stderr.txt",
		Exit:   base + ".exit.txt",
		Script: base + ".run.sh",
	}
}
