package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/storage"
)

// NewHistoryCommand returns the history subcommand.
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent task activity",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of entries to show",
				Value:   20,
			},
		},
		Action: runHistory,
	}
}

func runHistory(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	applyDataDir(cmd)

	recent, err := storage.ReadRecent(config.LogsPath(), int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("read activity log: %w", err)
	}

	if len(recent) == 0 {
		fmt.Println("No activity recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tSOURCE\tDETAIL")
	for _, e := range recent {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Type,
			e.Source,
			eventDetail(e),
		)
	}
	return w.Flush()
}

// eventDetail renders the payload of an activity event as a short
// human-readable column.
func eventDetail(e events.Event) string {
	switch e.Type {
	case events.EventTaskCreated:
		if p, ok := events.GetTaskCreatedPayload(e); ok {
			return p.Title
		}
	case events.EventTaskUpdated:
		if p, ok := events.GetTaskUpdatedPayload(e); ok {
			if p.PrevStatus != "" && p.PrevStatus != p.Status {
				return fmt.Sprintf("%s (%s -> %s)", p.Title, p.PrevStatus, p.Status)
			}
			return p.Title
		}
	case events.EventTaskDeleted:
		if p, ok := events.GetTaskDeletedPayload(e); ok {
			return p.Title
		}
	case events.EventTasksCleared:
		if p, ok := events.GetTasksClearedPayload(e); ok {
			return fmt.Sprintf("removed %d", p.Removed)
		}
	case events.EventTasksImported:
		if p, ok := events.GetTasksImportedPayload(e); ok {
			return fmt.Sprintf("added %d, skipped %d", p.Added, p.Skipped)
		}
	case events.EventReminderDue:
		if p, ok := events.GetReminderDuePayload(e); ok {
			return fmt.Sprintf("%d due", p.Count)
		}
	}
	return "-"
}
