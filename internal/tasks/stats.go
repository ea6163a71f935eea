package tasks

import (
	"context"
	"time"
)

// Stats aggregates collection-wide numbers for the stats surfaces.
type Stats struct {
	Total            int              `json:"total"`
	ByStatus         map[Status]int   `json:"byStatus"`
	ByPriority       map[Priority]int `json:"byPriority"`
	Overdue          int              `json:"overdue"`
	DueToday         int              `json:"dueToday"`
	CompletionRate   float64          `json:"completionRate"`
	EstimatedMinutes int              `json:"estimatedMinutes"`
	ActualMinutes    int              `json:"actualMinutes"`
}

// Stats computes aggregate statistics over the stored collection.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, err := r.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(list, r.now()), nil
}

// ComputeStats aggregates over an in-memory snapshot. The maps always carry
// all known statuses and priorities so renderers need no existence checks.
func ComputeStats(list []Task, now time.Time) Stats {
	s := Stats{
		ByStatus:   map[Status]int{StatusTodo: 0, StatusInProgress: 0, StatusCompleted: 0},
		ByPriority: map[Priority]int{PriorityLow: 0, PriorityMedium: 0, PriorityHigh: 0},
	}

	for _, t := range list {
		s.Total++
		s.ByStatus[t.Status]++
		s.ByPriority[t.Priority]++
		if t.Overdue(now) {
			s.Overdue++
		}
		if t.DueToday(now) {
			s.DueToday++
		}
		if t.EstimatedMinutes != nil {
			s.EstimatedMinutes += *t.EstimatedMinutes
		}
		if t.ActualMinutes != nil {
			s.ActualMinutes += *t.ActualMinutes
		}
	}

	if s.Total > 0 {
		s.CompletionRate = float64(s.ByStatus[StatusCompleted]) / float64(s.Total)
	}
	return s
}
