package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/events"
	"github.com/robolab/liftlab/internal/launcher"
	"github.com/robolab/liftlab/internal/scheduler"
	"github.com/robolab/liftlab/internal/storage"
	"github.com/robolab/liftlab/internal/workflow"
)

// NewScheduleCommand returns the schedule subcommand.
func NewScheduleCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedule",
		Usage: "View or run cron-scheduled launches",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List configured schedule entries",
				Action: runScheduleList,
			},
			{
				Name:   "run",
				Usage:  "Run the schedule daemon in the foreground",
				Action: runScheduleDaemon,
			},
		},
		DefaultCommand: "list",
	}
}

func runScheduleList(_ context.Context, cmd *cli.Command) error {
	cfg := loadConfig(cmd)

	if len(cfg.Schedules) == 0 {
		fmt.Println("No schedules configured.")
		return nil
	}

	sched := scheduler.New(scheduler.Config{Submitter: noopSubmitter{}, Entries: cfg.Schedules})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCRON\tMODE\tNEXT")

	now := time.Now()
	for _, e := range sched.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Name, e.Cron.String(), e.Mode, e.Cron.Next(now).Local().Format("2006-01-02 15:04"))
	}

	return w.Flush()
}

func runScheduleDaemon(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	if len(cfg.Schedules) == 0 {
		return fmt.Errorf("no schedules configured in %s", cmd.String("config"))
	}
	if err := ensureHome(); err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	eventLog := storage.NewEventLogger(config.LogsPath(), bus)
	// Bus first so pending events drain into the log before it detaches.
	defer func() {
		bus.Close()
		eventLog.Close()
	}()

	store, err := storage.OpenRunStore(ctx, config.LedgerPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	runner := launcher.New(launcher.Config{
		Bus:     bus,
		Store:   store,
		RunsDir: config.RunsPath(),
	})

	reloader := config.NewReloader(cmd.String("config"), config.DotenvPath(), cfg)

	sched := scheduler.New(scheduler.Config{
		Submitter: &launchSubmitter{cfg: reloader.Current, runner: runner},
		Bus:       bus,
		Entries:   cfg.Schedules,
	})

	reloader.OnReload(func(c *config.Config) {
		sched.SetEntries(c.Schedules)
	})

	// SIGHUP re-reads .env and config.jsonc without restarting the daemon.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for range sighup {
			if err := reloader.Reload(); err != nil {
				slog.Error("config reload failed", "error", err)
			}
		}
	}()

	sched.Start(ctx)
	defer sched.Stop()

	<-ctx.Done()
	return nil
}

// launchSubmitter adapts the launcher to the scheduler's submit interface.
// Scheduled launches run sequentially in the trigger goroutine; a training run
// occupying the simulator simply delays the next trigger past its cooldown.
// cfg is read per launch so a reload applies to the next trigger.
type launchSubmitter struct {
	cfg    func() *config.Config
	runner *launcher.Runner
}

func (s *launchSubmitter) SubmitLaunch(ctx context.Context, mode workflow.Mode) {
	l, err := workflow.Build(mode, s.cfg())
	if err != nil {
		slog.Error("scheduled launch build failed", "mode", mode, "error", err)
		return
	}
	if _, err := s.runner.Run(ctx, l); err != nil {
		slog.Error("scheduled launch failed", "mode", mode, "error", err)
	}
}

// noopSubmitter backs schedule list, which never fires anything.
type noopSubmitter struct{}

func (noopSubmitter) SubmitLaunch(context.Context, workflow.Mode) {}
