package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/storage"
)

// NewRunsCommand returns the runs subcommand.
func NewRunsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded workflow launches",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 20,
			},
		},
		Action: runRuns,
	}
}

func runRuns(ctx context.Context, cmd *cli.Command) error {
	return listRuns(ctx, os.Stdout, cmd.Int("limit"))
}

func listRuns(ctx context.Context, out io.Writer, limit int) error {
	ledger := config.LedgerPath()

	// Before the first launch (or wake) there is no ledger at all.
	if _, err := os.Stat(ledger); os.IsNotExist(err) {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	store, err := storage.OpenRunStore(ctx, ledger)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	runs, err := store.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tMODE\tTASK\tSTATUS\tEXIT\tSTARTED\tDURATION")

	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Truncate(time.Second).String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Mode, r.Task, r.Status, r.ExitCode,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), duration)
	}

	return w.Flush()
}
