package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// TaskSummary is the task projection carried by task events. It duplicates
// the fields UI clients need instead of importing the tasks package, which
// keeps this package dependency-free.
type TaskSummary struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   string     `json:"status"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
}

// =============================================================================
// TASK EVENTS
// =============================================================================

type TaskCreatedPayload struct {
	TaskSummary
}

func (TaskCreatedPayload) EventType() EventType { return EventTaskCreated }

type TaskUpdatedPayload struct {
	TaskSummary
	PrevStatus string `json:"prev_status,omitempty"`
}

func (TaskUpdatedPayload) EventType() EventType { return EventTaskUpdated }

type TaskDeletedPayload struct {
	TaskSummary
}

func (TaskDeletedPayload) EventType() EventType { return EventTaskDeleted }

// =============================================================================
// COLLECTION EVENTS
// =============================================================================

type TasksClearedPayload struct {
	Removed int `json:"removed"`
}

func (TasksClearedPayload) EventType() EventType { return EventTasksCleared }

type TasksImportedPayload struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped,omitempty"`
}

func (TasksImportedPayload) EventType() EventType { return EventTasksImported }

// =============================================================================
// REMINDER EVENTS
// =============================================================================

type ReminderDuePayload struct {
	Count int           `json:"count"`
	Tasks []TaskSummary `json:"tasks,omitempty"`
}

func (ReminderDuePayload) EventType() EventType { return EventReminderDue }

// =============================================================================
// STATE EVENTS
// =============================================================================

type FilterChangedPayload struct {
	Query    string `json:"query,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (FilterChangedPayload) EventType() EventType { return EventFilterChanged }

// =============================================================================
// TYPED EVENT CONSTRUCTORS
// =============================================================================

func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// =============================================================================
// TYPED PAYLOAD EXTRACTORS
// =============================================================================

func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

func GetTaskCreatedPayload(e Event) (TaskCreatedPayload, bool) {
	return ExtractPayload[TaskCreatedPayload](e)
}

func GetTaskUpdatedPayload(e Event) (TaskUpdatedPayload, bool) {
	return ExtractPayload[TaskUpdatedPayload](e)
}

func GetTaskDeletedPayload(e Event) (TaskDeletedPayload, bool) {
	return ExtractPayload[TaskDeletedPayload](e)
}

func GetTasksClearedPayload(e Event) (TasksClearedPayload, bool) {
	return ExtractPayload[TasksClearedPayload](e)
}

func GetTasksImportedPayload(e Event) (TasksImportedPayload, bool) {
	return ExtractPayload[TasksImportedPayload](e)
}

func GetReminderDuePayload(e Event) (ReminderDuePayload, bool) {
	return ExtractPayload[ReminderDuePayload](e)
}

func GetFilterChangedPayload(e Event) (FilterChangedPayload, bool) {
	return ExtractPayload[FilterChangedPayload](e)
}
