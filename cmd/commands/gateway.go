package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/robolab/liftlab/internal/config"
	"github.com/robolab/liftlab/internal/events"
	"github.com/robolab/liftlab/internal/gateway"
	"github.com/robolab/liftlab/internal/heartbeat"
	"github.com/robolab/liftlab/internal/storage"
)

// NewGatewayCommand returns the gateway subcommand.
func NewGatewayCommand() *cli.Command {
	return &cli.Command{
		Name:  "gateway",
		Usage: "Start the status gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to listen on",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
		},
		Action: runGateway,
	}
}

func runGateway(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	cfg := loadConfig(cmd)

	// CLI flags override config.
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = cmd.Int("port")
	}

	if err := ensureHome(); err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	eventLog := storage.NewEventLogger(config.LogsPath(), bus)
	defer eventLog.Close()

	store, err := storage.OpenRunStore(ctx, config.LedgerPath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	hb := heartbeat.NewWriter(config.HeartbeatPath(), 0)
	hb.Start()
	defer hb.Stop()

	srv := gateway.NewServer(bus, store, cfg.Gateway.Host, cfg.Gateway.Port)

	bus.Publish(events.NewEvent(events.EventGatewayStarted, events.SourceGateway, map[string]any{
		"host": cfg.Gateway.Host,
		"port": cfg.Gateway.Port,
	}))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
