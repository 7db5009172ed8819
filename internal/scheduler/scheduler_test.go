package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/workflow"
)

type fakeSubmitter struct {
	mu    sync.Mutex
	modes []workflow.Mode
}

func (f *fakeSubmitter) SubmitLaunch(_ context.Context, mode workflow.Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modes = append(f.modes, mode)
}

func (f *fakeSubmitter) submitted() []workflow.Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workflow.Mode(nil), f.modes...)
}

func TestSchedulerSkipsInvalidEntries(t *testing.T) {
	s := New(Config{
		Submitter: &fakeSubmitter{},
		Entries: []config.ScheduleConfig{
			{Name: "good", Cron: "0 3 * * *", Mode: "play"},
			{Name: "bad", Cron: "garbage", Mode: "play"},
		},
	})

	if got := len(s.Entries()); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}
	if s.Entries()[0].Name != "good" {
		t.Errorf("expected entry good, got %s", s.Entries()[0].Name)
	}
}

func TestSchedulerTick(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Submitter: sub,
		Entries: []config.ScheduleConfig{
			{Name: "eval", Cron: "30 12 * * *", Mode: "play"},
			{Name: "retrain", Cron: "0 4 * * *", Mode: "train_state"},
		},
	})

	s.tick(context.Background(), time.Date(2026, 8, 26, 12, 30, 5, 0, time.UTC))

	got := sub.submitted()
	if len(got) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(got))
	}
	if got[0] != workflow.ModePlay {
		t.Errorf("expected play, got %v", got[0])
	}
}

func TestSchedulerCooldown(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Submitter: sub,
		Entries: []config.ScheduleConfig{
			{Name: "eval", Cron: "* * * * *", Mode: "play", CooldownSec: 300},
		},
	})

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	s.tick(context.Background(), base)
	s.tick(context.Background(), base.Add(time.Minute)) // throttled
	s.tick(context.Background(), base.Add(6*time.Minute))

	if got := len(sub.submitted()); got != 2 {
		t.Errorf("expected 2 submissions with cooldown, got %d", got)
	}
}

func TestSchedulerSetEntries(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Submitter: sub,
		Entries: []config.ScheduleConfig{
			{Name: "eval", Cron: "* * * * *", Mode: "play", CooldownSec: 300},
		},
	})

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	s.tick(context.Background(), base)

	// Swap in a reloaded entry set: eval survives, retrain is new.
	s.SetEntries([]config.ScheduleConfig{
		{Name: "eval", Cron: "* * * * *", Mode: "play", CooldownSec: 300},
		{Name: "retrain", Cron: "* * * * *", Mode: "train_state"},
	})

	entries := s.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after swap, got %d", len(entries))
	}

	// eval keeps its cooldown state across the swap.
	s.tick(context.Background(), base.Add(time.Minute))

	got := sub.submitted()
	if len(got) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(got))
	}
	if got[1] != workflow.ModeTrainState {
		t.Errorf("expected only retrain to fire after swap, got %v", got)
	}
}

func TestSchedulerUnknownModeFallsBackToPlay(t *testing.T) {
	sub := &fakeSubmitter{}
	s := New(Config{
		Submitter: sub,
		Entries: []config.ScheduleConfig{
			{Name: "typo", Cron: "0 0 * * *", Mode: "train_stat"},
		},
	})

	s.tick(context.Background(), time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC))

	got := sub.submitted()
	if len(got) != 1 || got[0] != workflow.ModePlay {
		t.Errorf("unrecognized mode must fall back to play, got %v", got)
	}
}
