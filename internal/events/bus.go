// Package events provides an in-memory event bus for run lifecycle events.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Run lifecycle
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"

	// Scheduler
	EventScheduleTrigger EventType = "schedule.trigger"

	// Gateway lifecycle
	EventGatewayStarted EventType = "gateway.started"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceLauncher  EventSource = "launcher"
	SourceScheduler EventSource = "scheduler"
	SourceGateway   EventSource = "gateway"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// eventIDCounter is used to generate sequential event IDs.
var eventIDCounter uint64

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, source EventSource, payload map[string]any) Event {
	return Event{
		ID:        generateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// NewRunEvent creates a new event tied to a run.
func NewRunEvent(eventType EventType, source EventSource, payload map[string]any, runID string) Event {
	e := NewEvent(eventType, source, payload)
	e.RunID = runID
	return e
}

func generateEventID() string {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq)
}

// Subscriber is a function that receives events.
type Subscriber func(Event)

type subscription struct {
	id         int
	eventTypes []EventType
	handler    Subscriber
}

// Bus is an in-memory event bus using Go channels.
type Bus struct {
	mu           sync.RWMutex
	subscribers  map[int]*subscription
	nextID       int
	eventChan    chan Event
	ringBuffer   *RingBuffer
	closed       bool
	done         chan struct{}
	dispatchDone chan struct{}
	handlers     sync.WaitGroup
}

// NewBus creates a new event bus.
func NewBus(bufferSize int) *Bus {
	b := &Bus{
		subscribers:  make(map[int]*subscription),
		eventChan:    make(chan Event, bufferSize),
		ringBuffer:   NewRingBuffer(bufferSize),
		done:         make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	defer close(b.dispatchDone)
	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)
		case <-b.done:
			return
		}
	}
}

func (b *Bus) deliver(event Event) {
	b.ringBuffer.Add(event)
	b.notifySubscribers(event)
}

func (b *Bus) notifySubscribers(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if b.matches(sub, event) {
			b.handlers.Add(1)
			go func(s *subscription) {
				defer b.handlers.Done()
				s.handler(event)
			}(sub)
		}
	}
}

func (b *Bus) matches(sub *subscription, event Event) bool {
	if len(sub.eventTypes) == 0 {
		return true
	}
	for _, t := range sub.eventTypes {
		if t == event.Type {
			return true
		}
	}
	return false
}

// Publish sends an event to the bus. Events are dropped if the buffer is full
// or the bus is closed.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()

	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Subscribe registers a handler for specific event types. An empty type list
// subscribes to everything. Returns an unsubscribe function.
func (b *Bus) Subscribe(handler Subscriber, eventTypes ...EventType) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	b.subscribers[id] = &subscription{
		id:         id,
		eventTypes: eventTypes,
		handler:    handler,
	}

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns recent events from the ring buffer, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.ringBuffer.Get(limit)
}

// Close shuts down the event bus. Events already published are delivered
// before Close returns, so subscribers see every accepted event.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.done)
	<-b.dispatchDone

	// The dispatch goroutine may have stopped with events still buffered.
	for {
		select {
		case event := <-b.eventChan:
			b.deliver(event)
		default:
			b.handlers.Wait()
			return
		}
	}
}

// RingBuffer is a circular buffer for storing recent events.
type RingBuffer struct {
	mu     sync.RWMutex
	events []Event
	size   int
	pos    int
	count  int
}

// NewRingBuffer creates a new ring buffer.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		events: make([]Event, size),
		size:   size,
	}
}

// Add appends an event, evicting the oldest when full.
func (r *RingBuffer) Add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[r.pos] = event
	r.pos = (r.pos + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// Get returns up to n most recent events, oldest first.
func (r *RingBuffer) Get(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n > r.count {
		n = r.count
	}
	result := make([]Event, 0, n)
	start := r.pos - n
	if start < 0 {
		start += r.size
	}
	for i := 0; i < n; i++ {
		result = append(result, r.events[(start+i)%r.size])
	}
	return result
}
