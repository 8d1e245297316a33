/*
Package log provides the daemon's structured logging, built on zerolog.

A single global Logger is configured once via Init and then narrowed with
WithComponent, WithJobID, or WithSession to attach context fields without
threading a logger through every call site.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	schedLog := log.WithComponent("scheduler")
	schedLog.Info().Str("job_id", job.ID).Msg("job started")
*/
package log
