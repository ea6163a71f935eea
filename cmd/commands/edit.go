package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewEditCommand returns the edit subcommand.
func NewEditCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit fields of a task",
		ArgsUsage: "<task_id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: "New title",
			},
			&cli.StringFlag{
				Name:    "description",
				Aliases: []string{"d"},
				Usage:   "New description",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "New status (TODO, IN_PROGRESS, COMPLETED)",
			},
			&cli.StringFlag{
				Name:    "priority",
				Aliases: []string{"p"},
				Usage:   "New priority (LOW, MEDIUM, HIGH)",
			},
			&cli.StringFlag{
				Name:  "due",
				Usage: "New due date (2006-01-02 or \"2006-01-02 15:04\")",
			},
			&cli.BoolFlag{
				Name:  "clear-due",
				Usage: "Remove the due date",
			},
			&cli.IntFlag{
				Name:  "estimate",
				Usage: "Estimated minutes",
			},
			&cli.IntFlag{
				Name:  "actual",
				Usage: "Actual minutes spent",
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Replace tags (repeatable)",
			},
		},
		Action: runEdit,
	}
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskdeck edit <task_id> [flags]")
	}

	var input tasks.UpdateInput
	changed := false

	if cmd.IsSet("title") {
		title := cmd.String("title")
		if title == "" {
			return fmt.Errorf("title cannot be empty")
		}
		input.Title = &title
		changed = true
	}
	if cmd.IsSet("description") {
		desc := cmd.String("description")
		input.Description = &desc
		changed = true
	}
	if cmd.IsSet("status") {
		s := tasks.Status(cmd.String("status"))
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", cmd.String("status"))
		}
		input.Status = &s
		changed = true
	}
	if cmd.IsSet("priority") {
		p := tasks.Priority(cmd.String("priority"))
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q", cmd.String("priority"))
		}
		input.Priority = &p
		changed = true
	}
	if cmd.IsSet("due") {
		due, err := parseDueDate(cmd.String("due"))
		if err != nil {
			return err
		}
		input.DueDate = &due
		changed = true
	}
	if cmd.Bool("clear-due") {
		input.ClearDueDate = true
		changed = true
	}
	if cmd.IsSet("estimate") {
		est := int(cmd.Int("estimate"))
		input.EstimatedMinutes = &est
		changed = true
	}
	if cmd.IsSet("actual") {
		act := int(cmd.Int("actual"))
		input.ActualMinutes = &act
		changed = true
	}
	if cmd.IsSet("tag") {
		tagList := cmd.StringSlice("tag")
		input.Tags = &tagList
		changed = true
	}

	if !changed {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.state.Update(ctx, events.SourceCLI, taskID, input)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	fmt.Printf("Updated %s: %s\n", t.ID, t.Title)
	return nil
}
