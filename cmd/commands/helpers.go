package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/events"
	"github.com/robolab/liftlab/internal/launcher"
	"github.com/robolab/liftlab/internal/storage"
	"github.com/robolab/liftlab/internal/workflow"
)

// setupLogging switches slog to debug level when --debug is set.
func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// loadConfig reads the config file named by --config, falling back to
// defaults when it does not exist.
func loadConfig(cmd *cli.Command) *config.Config {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", path, "error", err)
		return config.Default()
	}
	return cfg
}

// ensureHome creates the liftlab home directory tree.
func ensureHome() error {
	for _, d := range []string{config.HomePath(), config.RunsPath(), config.LogsPath()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// execute runs one resolved launch with the full recording stack: event bus,
// JSONL event log, SQLite ledger, per-run manifest. The child's exit status
// becomes liftlab's own exit status.
func execute(ctx context.Context, cfg *config.Config, l *workflow.Launch) error {
	if err := ensureHome(); err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	eventLog := storage.NewEventLogger(config.LogsPath(), bus)
	// Closing the bus first drains pending events into the log, so the
	// final run.completed record is on disk before the process exits.
	defer func() {
		bus.Close()
		eventLog.Close()
	}()

	// A broken ledger must not block a launch.
	var store *storage.RunStore
	if st, err := storage.OpenRunStore(ctx, config.LedgerPath()); err != nil {
		slog.Warn("run ledger unavailable", "error", err)
	} else {
		store = st
		defer st.Close()
	}

	runner := launcher.New(launcher.Config{
		Bus:     bus,
		Store:   store,
		RunsDir: config.RunsPath(),
		Stdin:   os.Stdin,
	})

	res, err := runner.Run(ctx, l)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return cli.Exit("", res.ExitCode)
	}
	return nil
}
