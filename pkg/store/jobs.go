package store

import (
	"path/filepath"

	"github.com/nerfzael/drone-daemon/pkg/types"
)

// JobStore persists PromptJob records and the JobIndex under a single jobs
// directory. It holds no in-memory cache: every call reads or writes
// through to disk, since the scheduler's single-threaded discipline is what
// keeps records consistent, not a lock in this package.
type JobStore struct {
	jobsDir   string
	indexPath string
}

// NewJobStore returns a JobStore rooted at baseDir, which is expected to be
// the daemon's "prompts" directory; job records live in baseDir/jobs and
// the index at baseDir/queue.json.
func NewJobStore(baseDir string) *JobStore {
	return &JobStore{
		jobsDir:   filepath.Join(baseDir, "jobs"),
		indexPath: filepath.Join(baseDir, "queue.json"),
	}
}

// JobPath returns the path a job with the given ID is stored at.
func (s *JobStore) JobPath(id string) string {
	return filepath.Join(s.jobsDir, id+".json")
}

// LoadJob reads jobs/<id>.json. The second return value is false if the
// job does not exist or its file cannot be parsed; a missing or corrupt
// job file is treated as absent, not an error.
func (s *JobStore) LoadJob(id string) (*types.PromptJob, bool) {
	var job *types.PromptJob
	job = ReadJSON(s.JobPath(id), job)
	return job, job != nil
}

// SaveJob writes job to jobs/<id>.json via atomic write, creating the jobs
// directory if needed.
func (s *JobStore) SaveJob(job *types.PromptJob) error {
	return WriteJSONAtomic(s.JobPath(job.ID), job)
}

// LoadIndex reads queue.json, defaulting to an empty index if the file is
// absent or unparseable.
func (s *JobStore) LoadIndex() types.JobIndex {
	return ReadJSON(s.indexPath, types.JobIndex{Order: []string{}})
}

// SaveIndex deduplicates idx (preserving first occurrence), truncates it to
// the most recent types.MaxIndexEntries entries, and persists it
// atomically.
func (s *JobStore) SaveIndex(idx types.JobIndex) error {
	return WriteJSONAtomic(s.indexPath, idx.Dedup())
}

// AppendJobID loads the current index, appends id if it is not already
// present, and saves it back. It is the sequence enqueue uses to make a
// new job visible to the scheduler.
func (s *JobStore) AppendJobID(id string) error {
	idx := s.LoadIndex()
	idx.Order = append(idx.Order, id)
	return s.SaveIndex(idx)
}
