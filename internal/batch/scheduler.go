package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/readout/internal/event"
	"github.com/dgnsrekt/readout/internal/outpath"
	"github.com/dgnsrekt/readout/internal/pipeline"
)

// Runner executes the pipeline for one item. Satisfied by
// *pipeline.Pipeline; swapped for fakes in tests.
type Runner interface {
	Run(ctx context.Context, item pipeline.Item, cfg pipeline.Config) (pipeline.Outcome, error)
}

// Options is the validated batch configuration.
type Options struct {
	// Concurrency is the group size: at most this many items run at
	// once. Values below 1 mean 1.
	Concurrency int

	// SupportedExts overrides DefaultExtensions when non-empty.
	SupportedExts []string

	// Pipeline is passed through to each item run.
	Pipeline pipeline.Config
}

// Summary is the batch-level accounting for one run.
type Summary struct {
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	ProcessingTime  time.Duration
}

// Completed is the workflow:completed payload.
type Completed struct {
	Summary Summary
	Results []pipeline.Outcome
}

// Scheduler partitions discovered items into concurrency-bounded groups
// and runs each group to completion before starting the next. Groups, not
// a worker pool: peak parallelism is deterministic and a paused run never
// has more than one group in flight.
type Scheduler struct {
	runner Runner
	bus    *event.Bus
	temps  *outpath.TempSet
	opts   Options

	mu    sync.Mutex
	cond  *sync.Cond
	state State
}

// New creates an idle scheduler.
func New(runner Runner, bus *event.Bus, temps *outpath.TempSet, opts Options) *Scheduler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	s := &Scheduler{
		runner: runner,
		bus:    bus,
		temps:  temps,
		opts:   opts,
		state:  State{Status: StatusIdle},
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// State returns a snapshot of the current run state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pause keeps the current group running but prevents the next group from
// starting. Valid only while running.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusRunning {
		return fmt.Errorf("pause from %s: %w", s.state.Status, ErrInvalidTransition)
	}
	s.state.Status = StatusPaused
	log.Info("batch paused")
	return nil
}

// Resume continues a paused run.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusPaused {
		return fmt.Errorf("resume from %s: %w", s.state.Status, ErrInvalidTransition)
	}
	s.state.Status = StatusRunning
	s.cond.Broadcast()
	log.Info("batch resumed")
	return nil
}

// Stop halts scheduling of further groups. In-flight items run to their
// natural end; there is no forced cancellation of started work. Valid
// from any non-terminal state.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if terminal(s.state.Status) {
		return fmt.Errorf("stop from %s: %w", s.state.Status, ErrInvalidTransition)
	}
	s.state.Status = StatusStopped
	s.cond.Broadcast()
	log.Info("batch stopping, in-flight items will finish")
	return nil
}

// Run discovers work from inputs and processes it group by group.
// It returns the summary and the outcomes in completion order.
func (s *Scheduler) Run(ctx context.Context, inputs []string) (Summary, []pipeline.Outcome, error) {
	s.mu.Lock()
	if s.state.Status == StatusRunning || s.state.Status == StatusPaused {
		s.mu.Unlock()
		return Summary{}, nil, ErrAlreadyRunning
	}
	start := time.Now()
	s.state = State{Status: StatusRunning, StartTime: start}
	s.mu.Unlock()

	s.bus.Publish(event.Event{Type: event.WorkflowStarted, Files: inputs, Payload: s.opts})

	items, err := Discover(inputs, s.opts.SupportedExts, s.bus)
	if err == nil && len(items) == 0 {
		err = ErrNoFiles
	}
	if err != nil {
		s.bus.Publish(event.Event{Type: event.WorkflowError, Phase: "discovery", Error: err.Error()})
		s.setStatus(StatusStopped)
		return Summary{ProcessingTime: time.Since(start)}, nil, err
	}

	s.mu.Lock()
	s.state.TotalItems = len(items)
	s.mu.Unlock()

	files := make([]string, len(items))
	for i, it := range items {
		files[i] = it.Path
	}
	s.bus.Publish(event.Event{Type: event.WorkflowFilesDiscovered, Count: len(items), Files: files})
	log.Info("files discovered", "count", len(items))

	results, runErr := s.processGroups(ctx, items)

	summary := summarize(len(items), results, time.Since(start))

	if runErr != nil {
		s.setStatus(StatusStopped)
		s.temps.CleanupAll()
		s.bus.Publish(event.Event{Type: event.WorkflowError, Phase: "processing", Error: runErr.Error()})
		return summary, results, runErr
	}

	if s.State().Status == StatusStopped {
		// Stop() was requested; remove whatever staged artifacts the
		// unfinished items left behind.
		s.temps.CleanupAll()
	} else {
		s.setStatus(StatusCompleted)
	}

	s.bus.Publish(event.Event{
		Type:    event.WorkflowCompleted,
		Payload: Completed{Summary: summary, Results: results},
	})
	return summary, results, nil
}

// processGroups runs items in groups of Concurrency. The scheduler waits
// for a whole group to settle before starting the next; a pause request
// takes effect at that boundary.
func (s *Scheduler) processGroups(ctx context.Context, items []pipeline.Item) ([]pipeline.Outcome, error) {
	var (
		resMu   sync.Mutex
		results []pipeline.Outcome
	)
	size := s.opts.Concurrency

	for lo := 0; lo < len(items); lo += size {
		if !s.waitUntilRunnable() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		hi := lo + size
		if hi > len(items) {
			hi = len(items)
		}
		group := items[lo:hi]

		// A plain group on purpose: a failing item must not cancel its
		// in-flight siblings, they run to completion or natural failure.
		var g errgroup.Group
		for _, item := range group {
			item := item
			g.Go(func() error {
				outcome, err := s.runner.Run(ctx, item, s.opts.Pipeline)
				resMu.Lock()
				results = append(results, outcome)
				resMu.Unlock()
				s.noteProcessed()
				// err is non-nil only when ContinueOnError is off; it
				// aborts scheduling after this group settles.
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}
	return results, nil
}

// waitUntilRunnable blocks while paused and reports whether scheduling
// may continue.
func (s *Scheduler) waitUntilRunnable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.state.Status == StatusPaused {
		s.cond.Wait()
	}
	return s.state.Status == StatusRunning
}

func (s *Scheduler) noteProcessed() {
	s.mu.Lock()
	s.state.ProcessedItems++
	processed, total := s.state.ProcessedItems, s.state.TotalItems
	s.mu.Unlock()

	s.bus.Publish(event.Event{
		Type:      event.WorkflowProgress,
		Processed: processed,
		Total:     total,
		Progress:  float64(processed) / float64(total),
	})
}

func (s *Scheduler) setStatus(status Status) {
	s.mu.Lock()
	s.state.Status = status
	s.mu.Unlock()
}

func summarize(total int, results []pipeline.Outcome, elapsed time.Duration) Summary {
	summary := Summary{TotalFiles: total, ProcessingTime: elapsed}
	for _, r := range results {
		if r.Success {
			summary.SuccessfulFiles++
		} else {
			summary.FailedFiles++
		}
	}
	return summary
}
