package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	store, err := OpenRunStore(context.Background(), filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunStoreRecordAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := Run{
		ID:        "run_abc123",
		Mode:      "train_state",
		Task:      "Isaac-Lift-Cube-Franka-v0",
		Argv:      []string{"python", "train.py", "--num_envs", "15"},
		StartedAt: time.Now(),
	}
	if err := store.RecordStart(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.Get(ctx, "run_abc123")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("run not found")
	}
	if got.Status != RunStatusRunning {
		t.Errorf("expected status running, got %s", got.Status)
	}
	if len(got.Argv) != 4 || got.Argv[0] != "python" {
		t.Errorf("argv roundtrip failed: %v", got.Argv)
	}
	if !got.FinishedAt.IsZero() {
		t.Errorf("running run must have zero finished_at, got %v", got.FinishedAt)
	}

	if err := store.RecordFinish(ctx, "run_abc123", RunStatusCompleted, 0, time.Now()); err != nil {
		t.Fatal(err)
	}

	got, _, err = store.Get(ctx, "run_abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("expected status completed, got %s", got.Status)
	}
	if got.FinishedAt.IsZero() {
		t.Error("finished run must have finished_at set")
	}
}

func TestRunStoreRecordFinishExitCode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	run := Run{ID: "run_fail", Mode: "play", Task: "t", Argv: []string{"x"}, StartedAt: time.Now()}
	if err := store.RecordStart(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.RecordFinish(ctx, "run_fail", RunStatusCompleted, 3, time.Now()); err != nil {
		t.Fatal(err)
	}

	got, _, err := store.Get(ctx, "run_fail")
	if err != nil {
		t.Fatal(err)
	}
	if got.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", got.ExitCode)
	}
}

func TestRunStoreFinishUnknownRun(t *testing.T) {
	store := newTestStore(t)
	if err := store.RecordFinish(context.Background(), "nope", RunStatusCompleted, 0, time.Now()); err == nil {
		t.Error("expected error finishing unknown run")
	}
}

func TestRunStoreListOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"run_1", "run_2", "run_3"} {
		run := Run{
			ID:        id,
			Mode:      "play",
			Task:      "t",
			Argv:      []string{"x"},
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordStart(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run_3" || runs[1].ID != "run_2" {
		t.Errorf("expected most recent first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestRunStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, ok, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected missing run")
	}
}
