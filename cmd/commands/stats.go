package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewStatsCommand returns the stats subcommand.
func NewStatsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show aggregate task statistics",
		Action: runStats,
	}
}

func runStats(ctx context.Context, cmd *cli.Command) error {
	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.repo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("compute stats: %w", err)
	}

	fmt.Printf("Tasks:        %d\n", s.Total)
	fmt.Printf("  TODO:         %d\n", s.ByStatus[tasks.StatusTodo])
	fmt.Printf("  IN_PROGRESS:  %d\n", s.ByStatus[tasks.StatusInProgress])
	fmt.Printf("  COMPLETED:    %d\n", s.ByStatus[tasks.StatusCompleted])
	fmt.Println("Priority:")
	fmt.Printf("  HIGH:         %d\n", s.ByPriority[tasks.PriorityHigh])
	fmt.Printf("  MEDIUM:       %d\n", s.ByPriority[tasks.PriorityMedium])
	fmt.Printf("  LOW:          %d\n", s.ByPriority[tasks.PriorityLow])
	fmt.Printf("Overdue:      %d\n", s.Overdue)
	fmt.Printf("Due today:    %d\n", s.DueToday)
	fmt.Printf("Completion:   %.0f%%\n", s.CompletionRate*100)
	if s.EstimatedMinutes > 0 || s.ActualMinutes > 0 {
		fmt.Printf("Time:         %dm estimated, %dm actual\n", s.EstimatedMinutes, s.ActualMinutes)
	}

	counts, err := storage.CompletionCounts(ctx, a.adapter)
	if err != nil {
		return fmt.Errorf("load completion counts: %w", err)
	}
	if len(counts) == 0 {
		return nil
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > 7 {
		days = days[len(days)-7:]
	}

	fmt.Println("\nCompleted per day:")
	for _, day := range days {
		fmt.Printf("  %s  %d\n", day, counts[day])
	}
	return nil
}
