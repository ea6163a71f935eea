package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/state"
	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// app bundles the wired core a one-shot command works against. Read-only
// commands use the repository; mutating commands additionally get the
// event bus, the state container, and the bus subscribers that persist
// activity.
type app struct {
	cfg     *config.Config
	kv      storage.KV
	adapter *storage.Adapter
	repo    *tasks.Repository

	bus     *events.Bus
	state   *state.Container
	logger  *storage.EventLogger
	tracker *storage.CompletionTracker
}

// applyDataDir makes --data-dir win over $TASKDECK_PATH for the rest of
// the process.
func applyDataDir(cmd *cli.Command) {
	if dir := cmd.String("data-dir"); dir != "" {
		os.Setenv("TASKDECK_PATH", dir)
	}
}

// resolveConfigPath returns the config file to load. The --config default
// is computed at startup, so an unset flag is re-derived after --data-dir
// has been applied.
func resolveConfigPath(cmd *cli.Command) string {
	if cmd.IsSet("config") {
		return cmd.String("config")
	}
	return config.ConfigPath()
}

func setupLogging(cmd *cli.Command) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
}

// loadConfig loads the config file, falling back to defaults when none
// exists yet.
func loadConfig(cmd *cli.Command) *config.Config {
	setupLogging(cmd)
	applyDataDir(cmd)

	path := resolveConfigPath(cmd)
	cfg, err := config.Load(path)
	if err != nil {
		slog.Debug("config not found, using defaults", "path", path, "error", err)
		cfg = config.Default()
	}
	return cfg
}

// openKV opens the configured key-value backend.
func openKV(cfg *config.Config) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemoryKV(), nil
	case "sqlite":
		return storage.NewSQLiteKV(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openRepo wires config, backend, adapter, and repository for read-only
// commands.
func openRepo(cmd *cli.Command) (*app, error) {
	cfg := loadConfig(cmd)

	kv, err := openKV(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	adapter := storage.NewAdapter(kv)
	return &app{
		cfg:     cfg,
		kv:      kv,
		adapter: adapter,
		repo:    tasks.NewRepository(adapter),
	}, nil
}

// openState wires everything openRepo does plus the event bus, the state
// container, the activity log, and the completion tracker. Mutating
// commands go through it so the events they fire are persisted before the
// process exits.
func openState(ctx context.Context, cmd *cli.Command) (*app, error) {
	a, err := openRepo(cmd)
	if err != nil {
		return nil, err
	}

	a.bus = events.NewBus(a.cfg.Events.BufferSize)
	a.logger = storage.NewEventLogger(config.LogsPath(), a.bus)
	a.tracker = storage.NewCompletionTracker(a.bus, a.adapter)
	a.state = state.New(a.repo, a.bus)

	if err := a.state.Refresh(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return a, nil
}

// Close releases the bus subscribers and the storage backend.
func (a *app) Close() {
	if a.logger != nil {
		a.logger.Close()
	}
	if a.tracker != nil {
		a.tracker.Close()
	}
	if a.bus != nil {
		a.bus.Close()
	}
	a.kv.Close()
}
