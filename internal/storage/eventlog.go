package storage

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/robolab/liftlab/internal/events"
)

// EventLogger persists bus events to JSONL files organized by run.
type EventLogger struct {
	dir         string
	unsubscribe func()
}

// NewEventLogger creates an EventLogger that subscribes to all bus events
// and writes them as JSONL to dir, one file per run.
func NewEventLogger(dir string, bus *events.Bus) *EventLogger {
	el := &EventLogger{dir: dir}
	el.unsubscribe = bus.Subscribe(el.handleEvent)
	return el
}

// Close unsubscribes the logger from the event bus.
func (el *EventLogger) Close() {
	if el.unsubscribe != nil {
		el.unsubscribe()
	}
}

func (el *EventLogger) handleEvent(e events.Event) {
	_ = el.writeEvent(e)
}

func (el *EventLogger) writeEvent(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := el.logPath(e.RunID)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

func (el *EventLogger) logPath(runID string) string {
	if runID == "" {
		return filepath.Join(el.dir, "_global.jsonl")
	}
	return filepath.Join(el.dir, runID+".jsonl")
}
