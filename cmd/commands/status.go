package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show gateway status",
		Action: func(_ context.Context, _ *cli.Command) error {
			status, hb, err := heartbeat.Check(config.HeartbeatPath(), 2*time.Minute)
			if err != nil {
				return fmt.Errorf("check heartbeat: %w", err)
			}

			switch status {
			case heartbeat.StatusAlive:
				fmt.Printf("Gateway: ALIVE (PID %d, uptime %s)\n", hb.PID, hb.Uptime)
			case heartbeat.StatusStale:
				fmt.Printf("Gateway: STALE (PID %d, last heartbeat %s ago)\n",
					hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
			case heartbeat.StatusDead:
				fmt.Println("Gateway: NOT RUNNING")
			}

			return nil
		},
	}
}
