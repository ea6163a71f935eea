// Package tasks provides the task model and a repository persisting the
// whole collection through the storage adapter.
package tasks

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Next returns the status one step further along the fixed cycle
// TODO → IN_PROGRESS → COMPLETED → TODO.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusCompleted
	default:
		return StatusTodo
	}
}

// Toggled returns the two-state toggle of s: TODO becomes COMPLETED and
// everything else, including IN_PROGRESS, collapses back to TODO.
func (s Status) Toggled() Status {
	if s == StatusTodo {
		return StatusCompleted
	}
	return StatusTodo
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusCompleted
}

// Priority represents the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task represents a single to-do item. The JSON field names are the
// persisted collection format.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           Status     `json:"status"`
	Priority         Priority   `json:"priority"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int       `json:"actualMinutes,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
}

// Overdue reports whether the task's due date has passed and the task is
// not completed.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.Status != StatusCompleted && t.DueDate.Before(now)
}

// DueToday reports whether the task is due on now's calendar day, in now's
// location.
func (t *Task) DueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y1, m1, d1 := t.DueDate.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// CreateInput carries the caller-supplied fields for a new task. Only Title
// is expected; everything else falls back to the documented defaults.
type CreateInput struct {
	Title            string
	Description      string
	Status           Status
	Priority         Priority
	DueDate          *time.Time
	EstimatedMinutes *int
	Tags             []string
}

// UpdateInput is a partial update. Nil fields are left unchanged;
// ClearDueDate removes an existing due date.
type UpdateInput struct {
	Title            *string
	Description      *string
	Status           *Status
	Priority         *Priority
	DueDate          *time.Time
	ClearDueDate     bool
	EstimatedMinutes *int
	ActualMinutes    *int
	Tags             *[]string
}

// GenerateTaskID creates a unique task identifier from the creation instant
// and a random suffix.
func GenerateTaskID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	u := uuid.New().String()
	return "task_" + ts + "_" + strings.ReplaceAll(u[:8], "-", "")
}
