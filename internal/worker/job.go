package worker

import (
	"time"
)

// Job is one file in the incoming directory waiting to be admitted.
type Job struct {
	SourcePath string
	Timestamp  time.Time // source mtime when the job was queued
}

// SweepRequest asks the worker to sweep the destination. Requests coalesce:
// only the latest pending one is kept.
type SweepRequest struct {
	Trigger string
}

const (
	TriggerIngest   = "ingest"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
)
