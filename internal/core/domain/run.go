package domain

import "time"

// RunStatus is the state of an ingest run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IngestRun records one ProcessDocuments pass over a directory.
type IngestRun struct {
	ID         string
	Directory  string
	Documents  int
	Chunks     int
	Status     RunStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns how long the run took, or zero while it is running.
func (r IngestRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// WatchResult reports one re-ingest triggered by a directory watcher.
type WatchResult struct {
	Chunks    int
	Err       error
	StartedAt time.Time
	EndedAt   time.Time
}
