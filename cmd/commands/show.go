package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
)

// NewShowCommand returns the show subcommand.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show task details",
		ArgsUsage: "<task_id>",
		Action:    runShow,
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskdeck show <task_id>")
	}

	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.repo.Get(ctx, taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Priority:    %s\n", t.Priority)
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02 15:04")
		if t.Overdue(time.Now()) {
			due += " (overdue)"
		}
		fmt.Printf("Due:         %s\n", due)
	}
	fmt.Printf("Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:     %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	if t.EstimatedMinutes != nil {
		fmt.Printf("Estimated:   %dm\n", *t.EstimatedMinutes)
	}
	if t.ActualMinutes != nil {
		fmt.Printf("Actual:      %dm\n", *t.ActualMinutes)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
	}

	if t.Description != "" {
		fmt.Printf("\nDescription:\n%s\n", t.Description)
	}

	return nil
}
