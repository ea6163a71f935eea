package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewListCommand returns the list subcommand.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "Filter by status (TODO, IN_PROGRESS, COMPLETED)",
			},
			&cli.StringFlag{
				Name:  "priority",
				Usage: "Filter by priority (LOW, MEDIUM, HIGH)",
			},
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Filter by tag",
			},
			&cli.BoolFlag{
				Name:  "overdue",
				Usage: "Only overdue tasks",
			},
			&cli.BoolFlag{
				Name:  "due-today",
				Usage: "Only tasks due today",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order (createdAt, updatedAt, dueDate, priority, title, status)",
			},
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Include completed tasks even when preferences hide them",
			},
		},
		Action: runList,
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	sortBy := cmd.String("sort")
	if sortBy != "" && !tasks.ValidSortKey(sortBy) {
		return fmt.Errorf("invalid sort key %q (one of %s)", sortBy, strings.Join(tasks.SortKeys, ", "))
	}

	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	f := tasks.Filter{
		Tag:      cmd.String("tag"),
		Overdue:  cmd.Bool("overdue"),
		DueToday: cmd.Bool("due-today"),
	}
	if s := cmd.String("status"); s != "" {
		f.Status = tasks.Status(s)
		if !f.Status.Valid() {
			return fmt.Errorf("invalid status %q", s)
		}
	}
	if p := cmd.String("priority"); p != "" {
		f.Priority = tasks.Priority(p)
		if !f.Priority.Valid() {
			return fmt.Errorf("invalid priority %q", p)
		}
	}

	pref, err := prefs.NewStore(a.adapter).Preferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}

	list, err := a.repo.Filter(ctx, f)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	// The showCompleted preference hides completed tasks unless the user
	// asked for them.
	if !pref.ShowCompleted && f.Status == "" && !cmd.Bool("all") {
		open := list[:0]
		for _, t := range list {
			if t.Status != tasks.StatusCompleted {
				open = append(open, t)
			}
		}
		list = open
	}

	if len(list) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	// An unset flag falls back to the preferred order. A stale stored key
	// keeps the stored order rather than failing the listing.
	if sortBy == "" {
		sortBy = pref.SortBy
	}
	tasks.Sort(list, sortBy)

	return printTaskTable(list)
}

// printTaskTable renders tasks in the tabular list format shared by list
// and search.
func printTaskTable(list []tasks.Task) error {
	now := time.Now()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE\tTAGS")
	for _, t := range list {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
			if t.Overdue(now) {
				due += " (overdue)"
			}
		}

		tagStr := "-"
		if len(t.Tags) > 0 {
			tagStr = strings.Join(t.Tags, ",")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Status,
			t.Priority,
			due,
			t.Title,
			tagStr,
		)
	}
	return w.Flush()
}
