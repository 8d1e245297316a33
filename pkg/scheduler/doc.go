/*
Package scheduler drives the prompt job queue: the Pump is a single logical
actor that, once per tick, finalizes any running job whose tmux session has
disappeared and then starts the next queued job if none is running.

	pump := scheduler.NewPump(jobs, mux, outDir)
	pump.Start()
	defer pump.Stop()

	// after enqueueing a new job:
	pump.Wake()

A tick never runs concurrently with itself: an atomic busy flag causes an
overlapping tick (the periodic ticker racing an enqueue-triggered wakeup) to
return immediately rather than block, so a wakeup is never made to wait
behind a slow pump body.
*/
package scheduler
