package workflow

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolveCheckpointPassthrough(t *testing.T) {
	got, err := ResolveCheckpoint("logs/model_500.pt", "ignored/**/*.pt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "logs/model_500.pt" {
		t.Errorf("explicit path must pass through, got %s", got)
	}
}

func TestResolveCheckpointLatest(t *testing.T) {
	dir := t.TempDir()
	ckptDir := filepath.Join(dir, "run_a", "checkpoints")
	if err := os.MkdirAll(ckptDir, 0o755); err != nil {
		t.Fatal(err)
	}

	older := filepath.Join(ckptDir, "agent_500.pt")
	newer := filepath.Join(ckptDir, "agent_1000.pt")
	for _, p := range []string{older, newer} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Force distinct mtimes regardless of filesystem resolution.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveCheckpoint(CheckpointLatest, filepath.Join(dir, "**", "*.pt"))
	if err != nil {
		t.Fatal(err)
	}
	if got != newer {
		t.Errorf("expected %s, got %s", newer, got)
	}
}

func TestResolveCheckpointNoMatch(t *testing.T) {
	dir := t.TempDir()
	if _, err := ResolveCheckpoint(CheckpointLatest, filepath.Join(dir, "**", "*.pt")); err == nil {
		t.Error("expected error when no checkpoint matches")
	}
}
