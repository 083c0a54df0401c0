package event

import (
	"sync"
	"testing"
	"time"
)

func TestPublishAssignsSequence(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(8)

	bus.Publish(Event{Type: FileStarted, Path: "a.txt"})
	bus.Publish(Event{Type: FileCompleted, Path: "a.txt"})
	bus.Close()

	var got []Event
	for e := range ch {
		got = append(got, e)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Errorf("expected sequence 1,2 got %d,%d", got[0].Seq, got[1].Seq)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be assigned")
	}
}

func TestConcurrentPublishersDeliverInSequenceOrder(t *testing.T) {
	const publishers = 8
	const perPublisher = 50

	bus := NewBus()
	ch := bus.Subscribe(publishers * perPublisher)

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				bus.Publish(Event{Type: WorkflowProgress})
			}
		}()
	}
	wg.Wait()
	bus.Close()

	var prev int64
	count := 0
	for e := range ch {
		count++
		if e.Seq <= prev {
			t.Fatalf("event %d delivered out of order: seq %d after %d", count, e.Seq, prev)
		}
		prev = e.Seq
	}
	if count != publishers*perPublisher {
		t.Errorf("expected %d events, got %d", publishers*perPublisher, count)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()

	// Must not block or panic.
	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Type: WorkflowProgress})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(1)
	bus.Close()

	bus.Publish(Event{Type: FileStarted})

	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Close")
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	bus := NewBus()
	bus.Close()

	ch := bus.Subscribe(1)
	if _, ok := <-ch; ok {
		t.Error("expected immediately closed channel")
	}
}
