// Package reminder sweeps the task collection on a cron schedule and
// publishes a reminder.due event for tasks that are overdue or due soon.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// DefaultHorizon is how far ahead of the due date a task starts counting
// as due soon.
const DefaultHorizon = 24 * time.Hour

// Config holds dependencies for the reminder.
type Config struct {
	Repo    *tasks.Repository
	Bus     *events.Bus
	Cron    string        // 5-field cron expression gating the sweeps
	Horizon time.Duration // zero means DefaultHorizon
}

// Reminder runs cron-gated sweeps over the task collection. Best effort:
// a failed sweep is logged and the next scheduled one runs as usual.
type Reminder struct {
	repo    *tasks.Repository
	bus     *events.Bus
	expr    *CronExpr
	horizon time.Duration
	done    chan struct{}
}

// New creates a Reminder. It fails when the cron expression does not parse.
func New(cfg Config) (*Reminder, error) {
	expr, err := ParseCron(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("reminder: %w", err)
	}

	horizon := cfg.Horizon
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	return &Reminder{
		repo:    cfg.Repo,
		bus:     cfg.Bus,
		expr:    expr,
		horizon: horizon,
		done:    make(chan struct{}),
	}, nil
}

// Start begins the minute ticker that drives the sweeps.
func (r *Reminder) Start() {
	slog.Info("reminder started", "cron", r.expr.String(), "horizon", r.horizon)
	go r.loop()
}

// Stop halts the reminder.
func (r *Reminder) Stop() {
	close(r.done)
	slog.Info("reminder stopped")
}

func (r *Reminder) loop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case now := <-ticker.C:
			if r.expr.Matches(now) {
				r.Sweep(context.Background(), now)
			}
		}
	}
}

// Sweep scans the collection once and publishes a single reminder.due event
// carrying every non-completed task that is overdue or due within the
// horizon. A scan failure is logged and the sweep skipped.
func (r *Reminder) Sweep(ctx context.Context, now time.Time) {
	list, err := r.repo.All(ctx)
	if err != nil {
		slog.Warn("reminder: sweep failed", "error", err)
		return
	}

	cutoff := now.Add(r.horizon)
	var due []events.TaskSummary
	for _, t := range list {
		if t.Status == tasks.StatusCompleted || t.DueDate == nil {
			continue
		}
		if t.DueDate.After(cutoff) {
			continue
		}
		due = append(due, events.TaskSummary{
			ID:       t.ID,
			Title:    t.Title,
			Status:   string(t.Status),
			Priority: string(t.Priority),
			DueDate:  t.DueDate,
		})
	}

	if len(due) == 0 {
		return
	}

	r.bus.PublishSync(events.NewTypedEvent(events.SourceReminder, events.ReminderDuePayload{
		Count: len(due),
		Tasks: due,
	}))

	slog.Info("reminder: due tasks", "count", len(due))
}
