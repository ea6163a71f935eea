package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/prefs"
)

// NewRemoveCommand returns the rm subcommand.
func NewRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		ArgsUsage: "<task_id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: runRemove,
	}
}

// NewClearCommand returns the clear subcommand.
func NewClearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all tasks",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip the confirmation prompt",
			},
		},
		Action: runClear,
	}
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: taskdeck rm <task_id>")
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.state.Get(ctx, taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	if !cmd.Bool("force") {
		pref, err := prefs.NewStore(a.adapter).Preferences(ctx)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if pref.ConfirmDelete && !confirm(fmt.Sprintf("Delete %q?", t.Title)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.state.Delete(ctx, events.SourceCLI, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	fmt.Printf("Deleted %s: %s\n", t.ID, t.Title)
	return nil
}

func runClear(ctx context.Context, cmd *cli.Command) error {
	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	count := len(a.state.Snapshot())
	if count == 0 {
		fmt.Println("No tasks to remove.")
		return nil
	}

	if !cmd.Bool("force") {
		pref, err := prefs.NewStore(a.adapter).Preferences(ctx)
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		if pref.ConfirmDelete && !confirm(fmt.Sprintf("Delete all %d tasks?", count)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	removed, err := a.state.Clear(ctx, events.SourceCLI)
	if err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	fmt.Printf("Removed %d tasks.\n", removed)
	return nil
}

// confirm asks the user a yes/no question on stderr and reads the answer
// from stdin. Anything but y or yes declines.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "y" || answer == "yes"
}
