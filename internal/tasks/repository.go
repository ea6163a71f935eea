package tasks

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/GiftNdimande/taskdeck/internal/storage"
)

// TasksKey is the adapter key holding the whole task collection.
const TasksKey = "taskdeck:tasks"

// ErrNotFound is returned when no task matches the requested id.
var ErrNotFound = errors.New("task not found")

// Repository persists the task collection as one JSON array under TasksKey.
// Every operation loads the full collection, works on it in memory, and
// writes the whole thing back. A mutex serializes the read-modify-write so
// concurrent mutations cannot lose updates; reads share a read lock.
type Repository struct {
	mu      sync.RWMutex
	adapter *storage.Adapter
	now     func() time.Time
}

// NewRepository creates a Repository over adapter.
func NewRepository(adapter *storage.Adapter) *Repository {
	return &Repository{adapter: adapter, now: time.Now}
}

func (r *Repository) load(ctx context.Context) ([]Task, error) {
	var list []Task
	if _, err := r.adapter.Get(ctx, TasksKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) persist(ctx context.Context, list []Task) error {
	if list == nil {
		list = []Task{}
	}
	return r.adapter.Set(ctx, TasksKey, list)
}

// All returns every task in stored (creation) order. A collection that was
// never written is an empty slice, not an error.
func (r *Repository) All(ctx context.Context) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Task{}
	}
	return list, nil
}

// Get returns the task with the given id, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(ctx, id)
}

// find is the lock-free scan shared by Get and the status helpers.
func (r *Repository) find(ctx context.Context, id string) (Task, error) {
	list, err := r.load(ctx)
	if err != nil {
		return Task{}, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, nil
		}
	}
	return Task{}, ErrNotFound
}

// Create appends a new task built from input and persists the collection.
// Input is stored as given; the repository does not validate titles.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return Task{}, err
	}

	now := r.now()
	t := Task{
		ID:               GenerateTaskID(),
		Title:            input.Title,
		Description:      input.Description,
		Status:           input.Status,
		Priority:         input.Priority,
		DueDate:          input.DueDate,
		CreatedAt:        now,
		UpdatedAt:        now,
		EstimatedMinutes: input.EstimatedMinutes,
		Tags:             input.Tags,
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	if err := r.persist(ctx, append(list, t)); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update applies the set fields of input to the task with the given id,
// refreshes updatedAt, and persists. Unset fields are left alone.
func (r *Repository) Update(ctx context.Context, id string, input UpdateInput) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(ctx, id, input)
}

// update is the lock-free core shared with the status helpers.
func (r *Repository) update(ctx context.Context, id string, input UpdateInput) (Task, error) {
	list, err := r.load(ctx)
	if err != nil {
		return Task{}, err
	}

	for i := range list {
		if list[i].ID != id {
			continue
		}
		t := &list[i]

		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Status != nil {
			t.Status = *input.Status
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.ClearDueDate {
			t.DueDate = nil
		} else if input.DueDate != nil {
			t.DueDate = input.DueDate
		}
		if input.EstimatedMinutes != nil {
			t.EstimatedMinutes = input.EstimatedMinutes
		}
		if input.ActualMinutes != nil {
			t.ActualMinutes = input.ActualMinutes
		}
		if input.Tags != nil {
			t.Tags = *input.Tags
		}
		t.UpdatedAt = r.now()

		if err := r.persist(ctx, list); err != nil {
			return Task{}, err
		}
		return *t, nil
	}

	return Task{}, ErrNotFound
}

// Delete removes the task with the given id and persists the remainder.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	filtered := make([]Task, 0, len(list))
	removed := false
	for _, t := range list {
		if t.ID == id {
			removed = true
			continue
		}
		filtered = append(filtered, t)
	}
	if !removed {
		return ErrNotFound
	}

	return r.persist(ctx, filtered)
}

// CycleStatus advances the task's status one step along the fixed cycle.
func (r *Repository) CycleStatus(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.find(ctx, id)
	if err != nil {
		return Task{}, err
	}
	next := current.Status.Next()
	return r.update(ctx, id, UpdateInput{Status: &next})
}

// ToggleStatus flips the task between open and completed.
func (r *Repository) ToggleStatus(ctx context.Context, id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.find(ctx, id)
	if err != nil {
		return Task{}, err
	}
	next := current.Status.Toggled()
	return r.update(ctx, id, UpdateInput{Status: &next})
}

// Search returns tasks whose title or description contains query, compared
// case-insensitively. A blank query returns the full collection.
func (r *Repository) Search(ctx context.Context, query string) ([]Task, error) {
	return r.Filter(ctx, Filter{Query: query})
}

// ByStatus returns tasks with the given status.
func (r *Repository) ByStatus(ctx context.Context, s Status) ([]Task, error) {
	return r.Filter(ctx, Filter{Status: s})
}

// ByPriority returns tasks with the given priority.
func (r *Repository) ByPriority(ctx context.Context, p Priority) ([]Task, error) {
	return r.Filter(ctx, Filter{Priority: p})
}

// Filter combines the list predicates. Zero values match everything.
type Filter struct {
	Query    string
	Status   Status
	Priority Priority
	Tag      string
	Overdue  bool
	DueToday bool
}

// Matches reports whether t passes every set predicate.
func (f Filter) Matches(t Task, now time.Time) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !slices.Contains(t.Tags, f.Tag) {
		return false
	}
	if f.Overdue && !t.Overdue(now) {
		return false
	}
	if f.DueToday && !t.DueToday(now) {
		return false
	}
	return true
}

// Filter returns the tasks matching f, in stored order.
func (r *Repository) Filter(ctx context.Context, f Filter) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	matched := make([]Task, 0, len(list))
	for _, t := range list {
		if f.Matches(t, now) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// Clear persists an empty collection and returns how many tasks were
// removed.
func (r *Repository) Clear(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	if err := r.persist(ctx, []Task{}); err != nil {
		return 0, err
	}
	return len(list), nil
}

// Import appends tasks whose ids are not already present, preserving their
// fields. Blank ids are assigned, unknown statuses and priorities fall back
// to the defaults, and zero timestamps are filled in. Returns how many were
// added and how many skipped as duplicates.
func (r *Repository) Import(ctx context.Context, incoming []Task) (added, skipped int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]bool, len(list))
	for _, t := range list {
		seen[t.ID] = true
	}

	now := r.now()
	for _, t := range incoming {
		if t.ID == "" {
			t.ID = GenerateTaskID()
		}
		if seen[t.ID] {
			skipped++
			continue
		}
		if !t.Status.Valid() {
			t.Status = StatusTodo
		}
		if !t.Priority.Valid() {
			t.Priority = PriorityMedium
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		seen[t.ID] = true
		list = append(list, t)
		added++
	}

	if added == 0 {
		return 0, skipped, nil
	}
	if err := r.persist(ctx, list); err != nil {
		return 0, 0, err
	}
	return added, skipped, nil
}
