package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/export"
	"github.com/GiftNdimande/taskdeck/internal/gateway"
	"github.com/GiftNdimande/taskdeck/internal/heartbeat"
	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/reminder"
	"github.com/GiftNdimande/taskdeck/internal/state"
	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the taskdeck gateway daemon",
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
		Action: runServe,
	}
}

func runServe(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	applyDataDir(cmd)

	// Load config
	configPath := resolveConfigPath(cmd)
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Warn("config not found, using defaults", "path", configPath, "error", err)
		cfg = config.Default()
	}

	// CLI flags override config
	if cmd.IsSet("host") {
		cfg.Gateway.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Gateway.Port = int(cmd.Int("port"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Storage
	kv, err := openKV(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer kv.Close()

	adapter := storage.NewAdapter(kv)
	repo := tasks.NewRepository(adapter)

	// Event bus
	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()

	// Activity log and completion tracker
	eventLogger := storage.NewEventLogger(config.LogsPath(), bus)
	defer eventLogger.Close()

	tracker := storage.NewCompletionTracker(bus, adapter)
	defer tracker.Close()

	// State container
	st := state.New(repo, bus)
	if err := st.Refresh(ctx); err != nil {
		slog.Warn("initial snapshot failed", "error", err)
	}

	prefsStore := prefs.NewStore(adapter)

	// Reminder sweeps
	if cfg.ReminderEnabled() {
		rem, err := reminder.New(reminder.Config{
			Repo:    repo,
			Bus:     bus,
			Cron:    cfg.Reminder.Cron,
			Horizon: cfg.Reminder.Horizon.Duration(),
		})
		if err != nil {
			return fmt.Errorf("init reminder: %w", err)
		}
		rem.Start()
		defer rem.Stop()
	}

	// Gateway server
	server := gateway.NewServer(bus, st, prefsStore, export.NewExporter(repo), cfg.Gateway.Host, cfg.Gateway.Port)

	// Heartbeat file for the status command
	hb := heartbeat.NewWriter(config.HeartbeatPath(), server.Addr())
	hb.Start()
	defer hb.Stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for signal or error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
