// Package scheduler fires workflow launches on cron schedules.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/events"
	"github.com/robolab/liftlab/internal/workflow"
)

// DefaultCooldown is the minimum interval between two triggers of the same
// entry. A cron spec firing faster than this is throttled, not an error.
const DefaultCooldown = 60 * time.Second

// LaunchSubmitter starts a workflow launch for a mode. Decouples the
// scheduler from the launcher package.
type LaunchSubmitter interface {
	SubmitLaunch(ctx context.Context, mode workflow.Mode)
}

// Config holds dependencies for the Scheduler.
type Config struct {
	Submitter LaunchSubmitter
	Bus       *events.Bus // optional
	Entries   []config.ScheduleConfig
}

// Entry is a snapshot of one schedule entry.
type Entry struct {
	Name    string
	Mode    workflow.Mode
	Cron    *CronExpr
	LastRun time.Time
}

type runtimeEntry struct {
	name     string
	mode     workflow.Mode
	cron     *CronExpr
	cooldown time.Duration
	lastRun  time.Time
}

// Scheduler triggers launches when their cron expressions match.
type Scheduler struct {
	submitter LaunchSubmitter
	bus       *events.Bus

	mu      sync.Mutex
	entries []*runtimeEntry

	done chan struct{}
}

// New creates a Scheduler from the configured entries. Entries with invalid
// cron specs or unknown modes are skipped with a warning.
func New(cfg Config) *Scheduler {
	s := &Scheduler{
		submitter: cfg.Submitter,
		bus:       cfg.Bus,
		done:      make(chan struct{}),
	}

	s.entries = buildEntries(cfg.Entries)
	return s
}

func buildEntries(entries []config.ScheduleConfig) []*runtimeEntry {
	var result []*runtimeEntry
	for _, e := range entries {
		expr, err := ParseCron(e.Cron)
		if err != nil {
			slog.Warn("skipping schedule entry", "name", e.Name, "error", err)
			continue
		}
		cooldown := DefaultCooldown
		if e.CooldownSec > 0 {
			cooldown = time.Duration(e.CooldownSec) * time.Second
		}
		result = append(result, &runtimeEntry{
			name:     e.Name,
			mode:     workflow.ParseMode(e.Mode),
			cron:     expr,
			cooldown: cooldown,
		})
	}
	return result
}

// SetEntries replaces the schedule entries, keeping cooldown state for
// entries whose name survives the swap. Used on config reload.
func (s *Scheduler) SetEntries(entries []config.ScheduleConfig) {
	rebuilt := buildEntries(entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]time.Time, len(s.entries))
	for _, e := range s.entries {
		previous[e.name] = e.lastRun
	}
	for _, e := range rebuilt {
		if last, ok := previous[e.name]; ok {
			e.lastRun = last
		}
	}
	s.entries = rebuilt
	slog.Info("schedule entries replaced", "entries", len(rebuilt))
}

// Start begins the minute ticker. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	slog.Info("scheduler started", "entries", len(s.entries))
	go s.loop(ctx)
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	close(s.done)
	slog.Info("scheduler stopped")
}

// Entries returns a snapshot of all schedule entries.
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, Entry{Name: e.name, Mode: e.mode, Cron: e.cron, LastRun: e.lastRun})
	}
	return result
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tick(ctx, now)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick fires every entry whose cron matches now and whose cooldown has
// elapsed.
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var due []*runtimeEntry
	for _, e := range s.entries {
		if !e.cron.Matches(now) {
			continue
		}
		if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.cooldown {
			continue
		}
		e.lastRun = now
		due = append(due, e)
	}
	s.mu.Unlock()

	for _, e := range due {
		slog.Info("schedule triggered", "name", e.name, "mode", e.mode)
		if s.bus != nil {
			s.bus.Publish(events.NewEvent(events.EventScheduleTrigger, events.SourceScheduler, map[string]any{
				"entry": e.name,
				"mode":  string(e.mode),
			}))
		}
		s.submitter.SubmitLaunch(ctx, e.mode)
	}
}
