// Package storage persists launch history and event logs.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusCanceled  = "canceled" // the launch context was canceled while the child ran
	RunStatusFailed    = "failed"   // the command could not be started
)

// Run is one recorded workflow launch.
type Run struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Task       string    `json:"task"`
	Argv       []string  `json:"argv"`
	Status     string    `json:"status"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// RunStore is a SQLite-backed ledger of workflow launches.
type RunStore struct {
	db *sql.DB
}

// OpenRunStore opens (creating if needed) the ledger database at path.
func OpenRunStore(ctx context.Context, path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping ledger: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			mode        TEXT NOT NULL,
			task        TEXT NOT NULL,
			argv        TEXT NOT NULL,
			status      TEXT NOT NULL,
			exit_code   INTEGER NOT NULL DEFAULT 0,
			started_at  TIMESTAMP NOT NULL,
			finished_at TIMESTAMP
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create runs table: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// RecordStart inserts a run in the running state.
func (s *RunStore) RecordStart(ctx context.Context, run Run) error {
	argv, err := json.Marshal(run.Argv)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, mode, task, argv, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.Mode, run.Task, string(argv), RunStatusRunning, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("record run %s: %w", run.ID, err)
	}
	return nil
}

// RecordFinish marks a run as finished with the given status and exit code.
func (s *RunStore) RecordFinish(ctx context.Context, id, status string, exitCode int, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, exit_code = ?, finished_at = ? WHERE id = ?
	`, status, exitCode, finishedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: not found", id)
	}
	return nil
}

// Get returns one run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, task, argv, status, exit_code, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}
	return run, true, nil
}

// List returns up to limit runs, most recent first.
func (s *RunStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mode, task, argv, status, exit_code, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run      Run
		argv     string
		finished sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.Mode, &run.Task, &argv, &run.Status, &run.ExitCode, &run.StartedAt, &finished); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(argv), &run.Argv); err != nil {
		return Run{}, fmt.Errorf("decode argv for %s: %w", run.ID, err)
	}
	if finished.Valid {
		run.FinishedAt = finished.Time
	}
	return run, nil
}
