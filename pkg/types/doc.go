/*
Package types defines the core data structures of the drone daemon: the
single foreground ProcessRecord, PromptJob records, and the ordered
JobIndex that the job queue is built from. These types are shared by the
store, scheduler, finalizer, and HTTP packages.

All types are designed to be:
  - Serializable (JSON, via struct tags)
  - Self-documenting (clear field names)
  - Validated (closed enums for JobState, validation helpers for session
    and job identifiers)

# State Machine

PromptJob.State follows a single monotone path:

	queued → running → done
	                 → failed

There is no resurrection: once a job reaches done or failed it is never
written back to queued or running.
*/
package types
