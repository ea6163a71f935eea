package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewAddCommand returns the add subcommand.
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new task",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "Longer description",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Initial status (TODO, IN_PROGRESS, COMPLETED)",
			},
			&cli.StringFlag{
				Name:    "priority",
				Aliases: []string{"p"},
				Usage:   "Priority (LOW, MEDIUM, HIGH); defaults to the preferred priority",
			},
			&cli.StringFlag{
				Name:  "due",
				Usage: "Due date (2006-01-02 or \"2006-01-02 15:04\")",
			},
			&cli.IntFlag{
				Name:  "estimate",
				Usage: "Estimated minutes",
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Tag (repeatable)",
			},
		},
		Action: runAdd,
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if title == "" {
		return fmt.Errorf("usage: taskdeck add <title>")
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	input := tasks.CreateInput{
		Title:       title,
		Description: cmd.String("description"),
		Tags:        cmd.StringSlice("tag"),
	}

	if s := cmd.String("status"); s != "" {
		input.Status = tasks.Status(s)
		if !input.Status.Valid() {
			return fmt.Errorf("invalid status %q", s)
		}
	}

	if p := cmd.String("priority"); p != "" {
		input.Priority = tasks.Priority(p)
		if !input.Priority.Valid() {
			return fmt.Errorf("invalid priority %q", p)
		}
	} else {
		pref, err := prefs.NewStore(a.adapter).Preferences(ctx)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		input.Priority = pref.DefaultPriority
	}

	if d := cmd.String("due"); d != "" {
		due, err := parseDueDate(d)
		if err != nil {
			return err
		}
		input.DueDate = &due
	}

	if cmd.IsSet("estimate") {
		est := int(cmd.Int("estimate"))
		input.EstimatedMinutes = &est
	}

	t, err := a.state.Create(ctx, events.SourceCLI, input)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	fmt.Printf("Created %s: %s\n", t.ID, t.Title)
	return nil
}

// dueDateFormats are the layouts accepted by --due, tried in order.
var dueDateFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseDueDate(s string) (time.Time, error) {
	for _, layout := range dueDateFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse due date %q (want 2006-01-02 or \"2006-01-02 15:04\")", s)
}
