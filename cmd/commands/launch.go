package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/workflow"
)

// NewLaunchCommand returns the launch subcommand: the classic three-way mode
// dispatcher.
func NewLaunchCommand() *cli.Command {
	return &cli.Command{
		Name:      "launch",
		Usage:     "Launch a workflow by mode (train_rgb_and_state, train_state, anything else plays)",
		ArgsUsage: "[mode]",
		Action:    runLaunch,
	}
}

func runLaunch(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	// An omitted or unrecognized mode falls through to evaluation.
	mode := workflow.ParseMode(cmd.Args().First())

	l, err := workflow.Build(mode, cfg)
	if err != nil {
		return err
	}

	if mode.Training() {
		fmt.Println("Training")
	} else {
		fmt.Println("Playing")
	}

	return execute(ctx, cfg, l)
}
