package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventRunStarted)

	bus.Publish(NewRunEvent(EventRunStarted, SourceLauncher, map[string]any{"mode": "play"}, "run_1"))
	bus.Publish(NewEvent(EventScheduleTrigger, SourceScheduler, nil))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventRunStarted {
		t.Errorf("expected run.started, got %s", received[0].Type)
	}
	if received[0].RunID != "run_1" {
		t.Errorf("expected run_1, got %s", received[0].RunID)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewEvent(EventRunStarted, SourceLauncher, nil))
	bus.Publish(NewEvent(EventRunCompleted, SourceLauncher, nil))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewEvent(EventRunStarted, SourceLauncher, nil))
	time.Sleep(50 * time.Millisecond)
	unsub()
	bus.Publish(NewEvent(EventRunCompleted, SourceLauncher, nil))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 1 {
		t.Errorf("expected 1 event after unsubscribe, got %d", count)
	}
}

func TestBusCloseDeliversPending(t *testing.T) {
	bus := NewBus(64)

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	})

	// Publish and close immediately, with no wait in between. The final
	// run.completed event must still reach the subscriber.
	bus.Publish(NewRunEvent(EventRunStarted, SourceLauncher, nil, "run_1"))
	bus.Publish(NewRunEvent(EventRunCompleted, SourceLauncher, map[string]any{"exit_code": 0}, "run_1"))
	bus.Close()

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 2 {
		t.Fatalf("expected 2 events after Close, got %d", len(received))
	}
	completed := false
	for _, e := range received {
		if e.Type == EventRunCompleted {
			completed = true
		}
	}
	if !completed {
		t.Error("run.completed not delivered before Close returned")
	}
}

func TestBusPublishAfterClose(t *testing.T) {
	bus := NewBus(64)

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Close()
	bus.Publish(NewEvent(EventRunStarted, SourceLauncher, nil))

	mu.Lock()
	defer mu.Unlock()

	if count != 0 {
		t.Errorf("expected no events after Close, got %d", count)
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Add(NewEvent(EventRunStarted, SourceLauncher, map[string]any{"i": i}))
	}

	got := rb.Get(10)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	// Oldest surviving event is i=2.
	if got[0].Payload["i"] != 2 {
		t.Errorf("expected oldest i=2, got %v", got[0].Payload["i"])
	}
	if got[2].Payload["i"] != 4 {
		t.Errorf("expected newest i=4, got %v", got[2].Payload["i"])
	}
}

func TestBusHistory(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	bus.Publish(NewEvent(EventRunStarted, SourceLauncher, nil))
	bus.Publish(NewEvent(EventRunCompleted, SourceLauncher, nil))

	time.Sleep(50 * time.Millisecond)

	history := bus.History(10)
	if len(history) != 2 {
		t.Fatalf("expected 2 events in history, got %d", len(history))
	}
	if history[0].Type != EventRunStarted || history[1].Type != EventRunCompleted {
		t.Errorf("history out of order: %v, %v", history[0].Type, history[1].Type)
	}
}
