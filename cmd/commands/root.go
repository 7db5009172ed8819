package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "liftlab",
		Usage: "Launch and track training and evaluation workflows for the Franka cube-lift task",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewLaunchCommand(),
			NewTrainCommand(),
			NewPlayCommand(),
			NewRunsCommand(),
			NewScheduleCommand(),
			NewGatewayCommand(),
			NewStatusCommand(),
			NewWakeCommand(),
		},
	}
}
