package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/workflow"
)

// NewPlayCommand returns the play subcommand.
func NewPlayCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Launch the evaluation workflow",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "num-envs",
				Usage: "Number of parallel environments (overrides config)",
			},
			&cli.StringFlag{
				Name:  "checkpoint",
				Usage: "Evaluate a checkpoint path, or 'latest' to pick the newest match of checkpoint_glob",
			},
		},
		Action: runPlay,
	}
}

func runPlay(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	params, err := workflow.ModeParams(workflow.ModePlay, cfg)
	if err != nil {
		return err
	}

	if cmd.IsSet("num-envs") {
		params.NumEnvs = cmd.Int("num-envs")
	}
	if ckpt := cmd.String("checkpoint"); ckpt != "" {
		resolved, err := workflow.ResolveCheckpoint(ckpt, cfg.Launch.CheckpointGlob)
		if err != nil {
			return err
		}
		params.Checkpoint = resolved
	}

	l, err := workflow.Assemble(workflow.ModePlay, params, cfg)
	if err != nil {
		return err
	}

	fmt.Println("Playing")
	return execute(ctx, cfg, l)
}
