package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

// NewSearchCommand returns the search subcommand.
func NewSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search tasks by title and description",
		ArgsUsage: "<query>",
		Action:    runSearch,
	}
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("usage: taskdeck search <query>")
	}

	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.repo.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search tasks: %w", err)
	}

	if len(list) == 0 {
		fmt.Printf("No tasks match %q.\n", query)
		return nil
	}

	return printTaskTable(list)
}
