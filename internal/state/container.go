// Package state owns the in-memory application state: a snapshot of the
// task collection, the active list filter, and the last user-visible error.
package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// Container wraps the repository with observable state. Every mutation goes
// through the repository, refreshes the snapshot, and publishes the matching
// typed event; a failed mutation records a displayable message and leaves
// the snapshot untouched. The composition root constructs one Container and
// passes it by reference; there are no package-level singletons.
type Container struct {
	mu      sync.RWMutex
	repo    *tasks.Repository
	bus     *events.Bus
	tasks   []tasks.Task
	filter  tasks.Filter
	lastErr string
}

// New creates a Container over repo, publishing to bus. Call Refresh to
// populate the initial snapshot.
func New(repo *tasks.Repository, bus *events.Bus) *Container {
	return &Container{repo: repo, bus: bus}
}

// Refresh reloads the snapshot from the repository.
func (c *Container) Refresh(ctx context.Context) error {
	list, err := c.repo.All(ctx)
	if err != nil {
		c.fail(err)
		return err
	}

	c.mu.Lock()
	c.tasks = list
	c.mu.Unlock()
	return nil
}

// refreshAfterMutation reloads the snapshot, logging instead of failing:
// the mutation itself already persisted.
func (c *Container) refreshAfterMutation(ctx context.Context) {
	list, err := c.repo.All(ctx)
	if err != nil {
		slog.Warn("state: snapshot refresh failed", "error", err)
		return
	}
	c.mu.Lock()
	c.tasks = list
	c.mu.Unlock()
}

// Snapshot returns a copy of the current task snapshot in stored order.
func (c *Container) Snapshot() []tasks.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]tasks.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Visible returns the snapshot with the active filter applied.
func (c *Container) Visible() []tasks.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	out := make([]tasks.Task, 0, len(c.tasks))
	for _, t := range c.tasks {
		if c.filter.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// Filter returns the active list filter.
func (c *Container) Filter() tasks.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// SetFilter replaces the active filter and announces the change.
func (c *Container) SetFilter(src events.EventSource, f tasks.Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()

	c.bus.PublishSync(events.NewTypedEvent(src, events.FilterChangedPayload{
		Query:    f.Query,
		Status:   string(f.Status),
		Priority: string(f.Priority),
		Tag:      f.Tag,
	}))
}

// LastError returns the last recorded user-visible error message, or "".
func (c *Container) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Stats aggregates over the current snapshot.
func (c *Container) Stats() tasks.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return tasks.ComputeStats(c.tasks, time.Now())
}

func (c *Container) fail(err error) {
	c.mu.Lock()
	c.lastErr = err.Error()
	c.mu.Unlock()
}

func (c *Container) succeed() {
	c.mu.Lock()
	c.lastErr = ""
	c.mu.Unlock()
}

// statusOf looks up a task's status in the snapshot, for prev-status event
// fields. Unknown ids yield "".
func (c *Container) statusOf(id string) tasks.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t.Status
		}
	}
	return ""
}

func summary(t tasks.Task) events.TaskSummary {
	return events.TaskSummary{
		ID:       t.ID,
		Title:    t.Title,
		Status:   string(t.Status),
		Priority: string(t.Priority),
		DueDate:  t.DueDate,
	}
}

// Get returns a single task by id, recording not-found as a displayable
// message.
func (c *Container) Get(ctx context.Context, id string) (tasks.Task, error) {
	t, err := c.repo.Get(ctx, id)
	if err != nil {
		c.fail(err)
		return tasks.Task{}, err
	}
	c.succeed()
	return t, nil
}

// Search delegates to the repository's substring search.
func (c *Container) Search(ctx context.Context, query string) ([]tasks.Task, error) {
	list, err := c.repo.Search(ctx, query)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.succeed()
	return list, nil
}

// List returns the stored tasks matching f.
func (c *Container) List(ctx context.Context, f tasks.Filter) ([]tasks.Task, error) {
	list, err := c.repo.Filter(ctx, f)
	if err != nil {
		c.fail(err)
		return nil, err
	}
	c.succeed()
	return list, nil
}

// Create adds a task and publishes task.created.
func (c *Container) Create(ctx context.Context, src events.EventSource, input tasks.CreateInput) (tasks.Task, error) {
	t, err := c.repo.Create(ctx, input)
	if err != nil {
		c.fail(err)
		return tasks.Task{}, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TaskCreatedPayload{TaskSummary: summary(t)}))
	return t, nil
}

// Update applies a partial update and publishes task.updated with the
// previous status.
func (c *Container) Update(ctx context.Context, src events.EventSource, id string, input tasks.UpdateInput) (tasks.Task, error) {
	prev := c.statusOf(id)

	t, err := c.repo.Update(ctx, id, input)
	if err != nil {
		c.fail(err)
		return tasks.Task{}, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TaskUpdatedPayload{
		TaskSummary: summary(t),
		PrevStatus:  string(prev),
	}))
	return t, nil
}

// CycleStatus advances the status cycle and publishes task.updated.
func (c *Container) CycleStatus(ctx context.Context, src events.EventSource, id string) (tasks.Task, error) {
	prev := c.statusOf(id)

	t, err := c.repo.CycleStatus(ctx, id)
	if err != nil {
		c.fail(err)
		return tasks.Task{}, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TaskUpdatedPayload{
		TaskSummary: summary(t),
		PrevStatus:  string(prev),
	}))
	return t, nil
}

// ToggleStatus flips between open and completed and publishes task.updated.
func (c *Container) ToggleStatus(ctx context.Context, src events.EventSource, id string) (tasks.Task, error) {
	prev := c.statusOf(id)

	t, err := c.repo.ToggleStatus(ctx, id)
	if err != nil {
		c.fail(err)
		return tasks.Task{}, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TaskUpdatedPayload{
		TaskSummary: summary(t),
		PrevStatus:  string(prev),
	}))
	return t, nil
}

// Delete removes a task and publishes task.deleted.
func (c *Container) Delete(ctx context.Context, src events.EventSource, id string) error {
	// Capture the record for the event before it disappears.
	victim, err := c.repo.Get(ctx, id)
	if err != nil {
		c.fail(err)
		return err
	}

	if err := c.repo.Delete(ctx, id); err != nil {
		c.fail(err)
		return err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TaskDeletedPayload{TaskSummary: summary(victim)}))
	return nil
}

// Clear empties the collection and publishes tasks.cleared.
func (c *Container) Clear(ctx context.Context, src events.EventSource) (int, error) {
	removed, err := c.repo.Clear(ctx)
	if err != nil {
		c.fail(err)
		return 0, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TasksClearedPayload{Removed: removed}))
	return removed, nil
}

// Import appends unknown tasks and publishes tasks.imported.
func (c *Container) Import(ctx context.Context, src events.EventSource, incoming []tasks.Task) (added, skipped int, err error) {
	added, skipped, err = c.repo.Import(ctx, incoming)
	if err != nil {
		c.fail(err)
		return 0, 0, err
	}

	c.succeed()
	c.refreshAfterMutation(ctx)
	c.bus.PublishSync(events.NewTypedEvent(src, events.TasksImportedPayload{Added: added, Skipped: skipped}))
	return added, skipped, nil
}
