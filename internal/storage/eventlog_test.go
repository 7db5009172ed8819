package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robolab/liftlab/internal/events"
)

func TestEventLoggerWriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.Event{
		ID:        "evt-1",
		Type:      events.EventScheduleTrigger,
		Timestamp: time.Now(),
		Source:    events.SourceScheduler,
		Payload:   map[string]any{"entry": "nightly-eval"},
	})

	// Give the async subscriber time to process.
	time.Sleep(100 * time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, "_global.jsonl"))
	if err != nil {
		t.Fatalf("read JSONL: %v", err)
	}

	var got events.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "evt-1" {
		t.Errorf("got ID %q, want %q", got.ID, "evt-1")
	}
	if got.Type != events.EventScheduleTrigger {
		t.Errorf("got type %q, want %q", got.Type, events.EventScheduleTrigger)
	}
}

func TestEventLoggerRunRouting(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.NewRunEvent(events.EventRunStarted, events.SourceLauncher, nil, "run_xyz"))

	time.Sleep(100 * time.Millisecond)

	if _, err := os.Stat(filepath.Join(dir, "run_xyz.jsonl")); err != nil {
		t.Errorf("expected per-run log file: %v", err)
	}
}

func TestEventLoggerCompletionPersistedOnClose(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)

	el := NewEventLogger(dir, bus)

	// Mirror the one-shot launch teardown: publish run.completed and close
	// the bus immediately, with no wait for the async subscriber.
	bus.Publish(events.NewRunEvent(events.EventRunStarted, events.SourceLauncher, nil, "run_abc"))
	bus.Publish(events.NewRunEvent(events.EventRunCompleted, events.SourceLauncher, map[string]any{"exit_code": 0}, "run_abc"))
	bus.Close()
	el.Close()

	data, err := os.ReadFile(filepath.Join(dir, "run_abc.jsonl"))
	if err != nil {
		t.Fatalf("read JSONL: %v", err)
	}

	completed := false
	for _, line := range bytesLines(data) {
		var e events.Event
		if err := json.Unmarshal(line, &e); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if e.Type == events.EventRunCompleted {
			completed = true
		}
	}
	if !completed {
		t.Error("run.completed missing from JSONL log after bus close")
	}
}

func bytesLines(data []byte) [][]byte {
	var lines [][]byte
	for _, l := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, l)
		}
	}
	return lines
}
