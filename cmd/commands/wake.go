package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
)

// NewWakeCommand returns the init subcommand.
func NewWakeCommand() *cli.Command {
	return &cli.Command{
		Name:   "wake",
		Usage:  "Initialize the liftlab home directory (~/.liftlab)",
		Action: runWake,
	}
}

func runWake(_ context.Context, _ *cli.Command) error {
	root := config.HomePath()
	created := false

	dirs := []string{root, config.RunsPath(), config.LogsPath()}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", d, err)
			}
			fmt.Printf("  Created %s\n", d)
			created = true
		}
	}

	configPath := config.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("  Created %s\n", configPath)
		created = true
	}

	dotenvPath := config.DotenvPath()
	if _, err := os.Stat(dotenvPath); err != nil {
		if err := os.WriteFile(dotenvPath, []byte(defaultDotenv), 0o600); err != nil {
			return fmt.Errorf("write .env: %w", err)
		}
		fmt.Printf("  Created %s\n", dotenvPath)
		created = true
	}

	if !created {
		fmt.Printf("Already set up — %s is complete. Nothing to do.\n", root)
		return nil
	}

	fmt.Printf("\nliftlab home ready at %s\n", root)
	fmt.Println("Edit config.jsonc to point at your workflow scripts, then try:")
	fmt.Println("  liftlab launch train_state")
	return nil
}

const defaultConfig = `{
	// liftlab configuration

	// Interpreter used for workflow scripts. Shell-style strings work:
	// "python", "./isaaclab.sh -p", ...
	"python": "python",

	"workflows": {
		"train_rgb": "source/standalone/workflows/skrl/train_rgb.py",
		"train": "source/standalone/workflows/skrl/train.py",
		"play": "source/standalone/workflows/skrl/play_rgb.py"
	},

	"launch": {
		"num_envs": 15,
		"play_num_envs": 2,
		"arch_type": "large_model-rgb-state",
		"video_length": 200,
		"video_interval": 500,
		"checkpoint_glob": "logs/skrl/**/checkpoints/*.pt"
		// "extra_args": "--disable_fabric"
	},

	"gateway": {
		"host": "127.0.0.1",
		"port": 18430
	}

	// Cron-triggered launches, used by "liftlab schedule run":
	// "schedules": [
	//   {"name": "nightly-eval", "cron": "0 3 * * *", "mode": "play"}
	// ]
}
`

const defaultDotenv = `# Environment for workflow launches. Loaded before every command;
# existing variables are never overridden.
# WANDB_API_KEY=
`
