package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
	"github.com/GiftNdimande/taskdeck/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show taskdeck daemon status",
		Action: func(_ context.Context, cmd *cli.Command) error {
			applyDataDir(cmd)

			status, hb, err := heartbeat.Check(config.HeartbeatPath(), heartbeat.DefaultMaxAge)
			if err != nil {
				return fmt.Errorf("check heartbeat: %w", err)
			}

			switch status {
			case heartbeat.StatusAlive:
				fmt.Printf("Daemon: ALIVE (PID %d, uptime %s, listening on %s)\n", hb.PID, hb.Uptime, hb.Addr)
			case heartbeat.StatusStale:
				fmt.Printf("Daemon: STALE (PID %d, last heartbeat %s ago)\n",
					hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
			case heartbeat.StatusNotRunning:
				fmt.Println("Daemon: NOT RUNNING")
			}

			return nil
		},
	}
}
