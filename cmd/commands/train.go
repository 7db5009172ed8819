package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/workflow"
)

// NewTrainCommand returns the train subcommand. Unlike launch, it exposes the
// workflow options as real flags, including checkpoint resume and experiment
// tracking.
func NewTrainCommand() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Launch a training workflow with explicit options",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rgb",
				Usage: "Train the combined RGB+state policy instead of state-only",
			},
			&cli.IntFlag{
				Name:  "num-envs",
				Usage: "Number of parallel environments (overrides config)",
			},
			&cli.IntFlag{
				Name:  "seed",
				Usage: "Environment seed",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "max-iterations",
				Usage: "Policy training iterations",
			},
			&cli.BoolFlag{
				Name:  "distributed",
				Usage: "Run training across multiple GPUs or nodes",
			},
			&cli.StringFlag{
				Name:  "ml-framework",
				Usage: "ML framework for the agent (torch, jax, jax-numpy)",
			},
			&cli.StringFlag{
				Name:  "checkpoint",
				Usage: "Resume from a checkpoint path, or 'latest' to pick the newest match of checkpoint_glob",
			},
			&cli.BoolFlag{
				Name:  "track",
				Usage: "Enable experiment tracking (Weights & Biases)",
			},
			&cli.BoolFlag{
				Name:  "no-video",
				Usage: "Disable periodic video recording",
			},
		},
		Action: runTrain,
	}
}

func runTrain(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	mode := workflow.ModeTrainState
	if cmd.Bool("rgb") {
		mode = workflow.ModeTrainRGBState
	}

	params, err := workflow.ModeParams(mode, cfg)
	if err != nil {
		return err
	}

	if cmd.IsSet("num-envs") {
		params.NumEnvs = cmd.Int("num-envs")
	}
	if cmd.IsSet("seed") {
		params.Seed = cmd.Int("seed")
	}
	params.MaxIterations = cmd.Int("max-iterations")
	params.Distributed = cmd.Bool("distributed")
	params.MLFramework = cmd.String("ml-framework")
	params.Track = cmd.Bool("track")
	if cmd.Bool("no-video") {
		params.Video = false
		params.VideoLength = 0
		params.VideoInterval = 0
	}

	if ckpt := cmd.String("checkpoint"); ckpt != "" {
		resolved, err := workflow.ResolveCheckpoint(ckpt, cfg.Launch.CheckpointGlob)
		if err != nil {
			return err
		}
		params.Checkpoint = resolved
	}

	l, err := workflow.Assemble(mode, params, cfg)
	if err != nil {
		return err
	}

	fmt.Println("Training")
	return execute(ctx, cfg, l)
}
