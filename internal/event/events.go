// Package event carries typed notifications from the batch core to its
// subscribers (CLI progress rendering, tests). Event names and payload
// fields are part of the public contract.
package event

import (
	"sync"
	"time"
)

// Type names one notification point in the batch lifecycle.
type Type string

const (
	WorkflowStarted         Type = "workflow:started"
	WorkflowFilesDiscovered Type = "workflow:files-discovered"
	WorkflowProgress        Type = "workflow:progress"
	WorkflowCompleted       Type = "workflow:completed"
	WorkflowError           Type = "workflow:error"

	FileStarted   Type = "file:started"
	FileCompleted Type = "file:completed"
	FileFailed    Type = "file:failed"
	FileWarning   Type = "file:warning"

	OperationRetry Type = "operation:retry"
)

// Event is one sequenced notification. Only the fields relevant to the
// event's Type are populated.
type Event struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`

	Path    string   `json:"path,omitempty"`    // file:* and operation:retry events
	Step    string   `json:"step,omitempty"`    // file:failed, operation:retry
	Attempt int      `json:"attempt,omitempty"` // operation:retry
	Reason  string   `json:"reason,omitempty"`  // file:warning
	Error   string   `json:"error,omitempty"`   // file:failed, workflow:error
	Phase   string   `json:"phase,omitempty"`   // workflow:error
	Count   int      `json:"count,omitempty"`   // workflow:files-discovered
	Files   []string `json:"files,omitempty"`   // workflow:started, files-discovered

	Processed int     `json:"processed,omitempty"` // workflow:progress
	Total     int     `json:"total,omitempty"`     // workflow:progress
	Progress  float64 `json:"progress,omitempty"`  // workflow:progress

	// Payload carries event-specific data: run options for
	// workflow:started, the per-item result for file:completed, and the
	// summary plus results for workflow:completed.
	Payload any `json:"payload,omitempty"`
}

// Bus fans events out to subscriber channels. Publishing assigns the
// sequence number and timestamp. Delivery is in publish order per
// subscriber; subscribers are expected to drain their channel.
type Bus struct {
	mu     sync.Mutex
	seq    int64
	subs   []chan Event
	closed bool
}

// NewBus creates an empty bus. Publishing with no subscribers is a no-op.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber channel with the given buffer size.
// The channel is closed when the bus is closed.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 64
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish stamps the event and delivers it to every subscriber. The send
// blocks if a subscriber's buffer is full; dropping events would break the
// accounting the subscribers rely on. Sending happens under the same lock
// that assigns Seq, so concurrent publishers cannot deliver out of
// sequence order.
func (b *Bus) Publish(e Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return e
	}
	b.seq++
	e.Seq = b.seq
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	for _, ch := range b.subs {
		ch <- e
	}
	return e
}

// Close closes all subscriber channels. Publish becomes a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
