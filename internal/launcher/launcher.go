// Package launcher executes resolved workflow commands and records them.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robolab/liftlab/internal/events"
	"github.com/robolab/liftlab/internal/storage"
	"github.com/robolab/liftlab/internal/workflow"
)

// Config holds dependencies for the Runner. Bus, Store, and RunsDir are all
// optional; a zero Config still executes commands.
type Config struct {
	Bus     *events.Bus
	Store   *storage.RunStore
	RunsDir string // per-run manifests are written under here
	Stdout  io.Writer
	Stderr  io.Writer
	Stdin   io.Reader
}

// Runner executes workflow launches one at a time, blocking until the child
// process exits. It never retries and never interprets the child's failure.
type Runner struct {
	cfg Config
}

// New creates a Runner.
func New(cfg Config) *Runner {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Runner{cfg: cfg}
}

// Result describes one finished launch.
type Result struct {
	RunID    string
	ExitCode int
	Duration time.Duration
}

// Run executes the launch. The child inherits stdout/stderr; its exit code is
// returned in Result so callers can propagate it unchanged. A non-nil error
// means the command could not be started at all.
func (r *Runner) Run(ctx context.Context, l *workflow.Launch) (*Result, error) {
	runID := generateRunID()
	started := time.Now()

	slog.Info("launching workflow",
		"run", runID,
		"mode", l.Mode,
		"task", l.Params.Task,
		"command", strings.Join(l.Argv, " "))

	if r.cfg.RunsDir != "" {
		if err := writeManifest(r.cfg.RunsDir, runID, l, started); err != nil {
			slog.Warn("failed to write run manifest", "run", runID, "error", err)
		}
	}

	r.recordStart(ctx, runID, l, started)
	r.publish(events.NewRunEvent(events.EventRunStarted, events.SourceLauncher, map[string]any{
		"mode": string(l.Mode),
		"task": l.Params.Task,
	}, runID))

	cmd := exec.CommandContext(ctx, l.Argv[0], l.Argv[1:]...)
	cmd.Stdout = r.cfg.Stdout
	cmd.Stderr = r.cfg.Stderr
	cmd.Stdin = r.cfg.Stdin

	exitCode := 0
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			// The command never started: record and surface the error.
			r.recordFinish(runID, storage.RunStatusFailed, -1)
			r.publishCompleted(runID, l, -1, time.Since(started))
			return nil, fmt.Errorf("start %s: %w", l.Argv[0], err)
		}
	}

	duration := time.Since(started)
	status := storage.RunStatusCompleted
	if ctx.Err() != nil {
		// The child died because the launch context was canceled, not
		// because it finished on its own.
		status = storage.RunStatusCanceled
	}
	r.recordFinish(runID, status, exitCode)
	r.publishCompleted(runID, l, exitCode, duration)

	slog.Info("workflow finished", "run", runID, "status", status, "exit_code", exitCode, "duration", duration.Truncate(time.Second))

	return &Result{RunID: runID, ExitCode: exitCode, Duration: duration}, nil
}

func (r *Runner) recordStart(ctx context.Context, runID string, l *workflow.Launch, started time.Time) {
	if r.cfg.Store == nil {
		return
	}
	err := r.cfg.Store.RecordStart(ctx, storage.Run{
		ID:        runID,
		Mode:      string(l.Mode),
		Task:      l.Params.Task,
		Argv:      l.Argv,
		StartedAt: started,
	})
	if err != nil {
		slog.Warn("failed to record run start", "run", runID, "error", err)
	}
}

// recordFinish uses a background context: the launch context may already be
// canceled when the child exits on SIGINT, but the ledger row must still be
// closed out.
func (r *Runner) recordFinish(runID, status string, exitCode int) {
	if r.cfg.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.cfg.Store.RecordFinish(ctx, runID, status, exitCode, time.Now()); err != nil {
		slog.Warn("failed to record run finish", "run", runID, "error", err)
	}
}

func (r *Runner) publishCompleted(runID string, l *workflow.Launch, exitCode int, duration time.Duration) {
	r.publish(events.NewRunEvent(events.EventRunCompleted, events.SourceLauncher, map[string]any{
		"mode":      string(l.Mode),
		"task":      l.Params.Task,
		"exit_code": exitCode,
		"duration":  duration.String(),
	}, runID))
}

func (r *Runner) publish(e events.Event) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(e)
	}
}

// generateRunID creates a unique run identifier.
func generateRunID() string {
	u := uuid.New().String()
	return "run_" + strings.ReplaceAll(u[:8], "-", "")
}
