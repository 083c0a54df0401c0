// Package batch discovers input files and drives them through the item
// pipeline in concurrency-bounded groups, with pause/resume/stop control
// and progress notification.
package batch

import (
	"errors"
	"time"
)

// Status is the scheduler's lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
)

// State is the scheduler's run-scoped bookkeeping. It is owned and
// mutated solely by the scheduler; callers get snapshots.
type State struct {
	Status         Status
	TotalItems     int
	ProcessedItems int
	StartTime      time.Time
}

var (
	// ErrAlreadyRunning is returned when Run is called on an active
	// scheduler.
	ErrAlreadyRunning = errors.New("a batch run is already active")

	// ErrInvalidTransition is returned for control requests that do not
	// apply to the current state, e.g. pausing an idle scheduler.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrNoFiles is returned when discovery finds nothing to convert.
	ErrNoFiles = errors.New("no supported files found")
)

// terminal reports whether a status accepts no further control requests.
func terminal(s Status) bool {
	return s == StatusStopped || s == StatusCompleted
}
