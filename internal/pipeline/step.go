// Package pipeline executes the per-item conversion sequence: extract the
// text, synthesize audio, optionally import into the catalog, clean up.
// Retries are scoped to individual steps, never to the whole item.
package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/readout/internal/event"
)

// Step names, in execution order.
const (
	StepExtract = "text-extraction"
	StepConvert = "audio-conversion"
	StepImport  = "itunes-import"
	StepCleanup = "cleanup"
)

// Status is a step's terminal outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StepResult records one step's outcome. It belongs to the item run that
// produced it and is never shared across items.
type StepResult struct {
	Step     string
	Status   Status
	Reason   string // why a step was skipped
	Payload  any    // step output on success
	Err      error  // terminal error on failure
	Attempts int
}

// runStep invokes op, retrying up to retries additional times on failure.
// A retry notification is emitted before each retry. The terminal error is
// absorbed into the StepResult; the caller decides whether to propagate.
func runStep(ctx context.Context, bus *event.Bus, path, name string, retries int, op func(context.Context) (any, error)) StepResult {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			bus.Publish(event.Event{Type: event.OperationRetry, Path: path, Step: name, Attempt: attempt})
			log.Debug("retrying step", "file", path, "step", name, "attempt", attempt, "error", lastErr)
		}

		attempts++
		payload, err := op(ctx)
		if err == nil {
			return StepResult{Step: name, Status: StatusSuccess, Payload: payload, Attempts: attempts}
		}
		lastErr = err

		// A dead run context will fail every further attempt the same way.
		if ctx.Err() != nil {
			break
		}
	}

	return StepResult{Step: name, Status: StatusFailed, Err: lastErr, Attempts: attempts}
}

func skippedStep(name, reason string) StepResult {
	return StepResult{Step: name, Status: StatusSkipped, Reason: reason}
}
