package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	wsclient "github.com/GiftNdimande/taskdeck/clients/ws"
	"github.com/GiftNdimande/taskdeck/internal/events"
	wsprotocol "github.com/GiftNdimande/taskdeck/internal/gateway/ws"
)

// NewWatchCommand returns the watch subcommand, which streams task
// activity from a running serve daemon.
func NewWatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Stream live task activity from the daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "gateway",
				Usage: "Gateway WebSocket URL",
				Value: "ws://127.0.0.1:7360/api/ws",
			},
		},
		Action: runWatch,
	}
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	gatewayURL := cmd.String("gateway")
	client, err := wsclient.Dial(ctx, gatewayURL)
	if err != nil {
		return fmt.Errorf("connect to gateway (is taskdeck serve running?): %w", err)
	}
	defer client.Close()

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", gatewayURL)

	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read frame: %w", err)
		}

		if frame.Type != wsprotocol.FrameTypeEvent || frame.Event == "" {
			continue
		}

		var evt events.Event
		if err := json.Unmarshal(frame.Payload, &evt); err != nil {
			continue
		}

		fmt.Printf("[%s] %-14s %-8s %s\n",
			evt.Timestamp.Format("15:04:05"),
			evt.Type,
			evt.Source,
			eventDetail(evt),
		)
	}
}
