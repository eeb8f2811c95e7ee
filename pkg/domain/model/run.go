package model

import "time"

// PostRun records one render-and-post execution. Serve mode reports
// these to the failure notifier; the CLI only logs them.
type PostRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	IndexType  IndexType
	Project    string
	Err        error
}

// Failed reports whether the run ended with an error.
func (r *PostRun) Failed() bool {
	return r.Err != nil
}

// Duration is the wall-clock time the run took.
func (r *PostRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
