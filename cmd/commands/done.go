package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/events"
)

// NewDoneCommand returns the done subcommand, which toggles a task
// between TODO and COMPLETED.
func NewDoneCommand() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Toggle a task between TODO and COMPLETED",
		ArgsUsage: "<task_id>",
		Action:    runDone,
	}
}

// NewCycleCommand returns the cycle subcommand, which advances a task one
// step along TODO, IN_PROGRESS, COMPLETED.
func NewCycleCommand() *cli.Command {
	return &cli.Command{
		Name:      "cycle",
		Usage:     "Advance a task to the next status",
		ArgsUsage: "<task_id>",
		Action:    runCycle,
	}
}

func runDone(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskdeck done <task_id>")
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.state.ToggleStatus(ctx, events.SourceCLI, taskID)
	if err != nil {
		return fmt.Errorf("toggle status: %w", err)
	}

	fmt.Printf("Task %s is now %s.\n", t.ID, t.Status)
	return nil
}

func runCycle(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskdeck cycle <task_id>")
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.state.CycleStatus(ctx, events.SourceCLI, taskID)
	if err != nil {
		return fmt.Errorf("cycle status: %w", err)
	}

	fmt.Printf("Task %s is now %s.\n", t.ID, t.Status)
	return nil
}
