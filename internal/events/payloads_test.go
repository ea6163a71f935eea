package events

import (
	"testing"
	"time"
)

func TestTypedEvent_TaskCreated(t *testing.T) {
	due := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	payload := TaskCreatedPayload{TaskSummary{
		ID:       "task_abc",
		Title:    "Buy milk",
		Status:   "TODO",
		Priority: "MEDIUM",
		DueDate:  &due,
	}}
	evt := NewTypedEvent(SourceCLI, payload)

	if evt.Type != EventTaskCreated {
		t.Fatalf("expected type %q, got %q", EventTaskCreated, evt.Type)
	}
	got, ok := ExtractPayload[TaskCreatedPayload](evt)
	if !ok {
		t.Fatal("ExtractPayload returned false")
	}
	if got.ID != "task_abc" {
		t.Fatalf("expected id %q, got %q", "task_abc", got.ID)
	}
	if got.Title != "Buy milk" {
		t.Fatalf("expected title %q, got %q", "Buy milk", got.Title)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("expected due date %v, got %v", due, got.DueDate)
	}
}

func TestTypedEvent_TaskUpdated(t *testing.T) {
	payload := TaskUpdatedPayload{
		TaskSummary: TaskSummary{ID: "task_abc", Title: "Buy milk", Status: "COMPLETED", Priority: "HIGH"},
		PrevStatus:  "IN_PROGRESS",
	}
	evt := NewTypedEvent(SourceWS, payload)

	if evt.Type != EventTaskUpdated {
		t.Fatalf("expected type %q, got %q", EventTaskUpdated, evt.Type)
	}
	got, ok := GetTaskUpdatedPayload(evt)
	if !ok {
		t.Fatal("GetTaskUpdatedPayload returned false")
	}
	if got.Status != "COMPLETED" {
		t.Fatalf("expected status %q, got %q", "COMPLETED", got.Status)
	}
	if got.PrevStatus != "IN_PROGRESS" {
		t.Fatalf("expected prev status %q, got %q", "IN_PROGRESS", got.PrevStatus)
	}
}

func TestTypedEvent_TasksImported(t *testing.T) {
	evt := NewTypedEvent(SourceCLI, TasksImportedPayload{Added: 4, Skipped: 1})

	if evt.Type != EventTasksImported {
		t.Fatalf("expected type %q, got %q", EventTasksImported, evt.Type)
	}
	got, ok := GetTasksImportedPayload(evt)
	if !ok {
		t.Fatal("GetTasksImportedPayload returned false")
	}
	if got.Added != 4 || got.Skipped != 1 {
		t.Fatalf("expected 4 added / 1 skipped, got %d/%d", got.Added, got.Skipped)
	}
}

func TestTypedEvent_ReminderDue(t *testing.T) {
	payload := ReminderDuePayload{
		Count: 2,
		Tasks: []TaskSummary{
			{ID: "task_1", Title: "File taxes", Status: "TODO", Priority: "HIGH"},
			{ID: "task_2", Title: "Call dentist", Status: "IN_PROGRESS", Priority: "MEDIUM"},
		},
	}
	evt := NewTypedEvent(SourceReminder, payload)

	if evt.Type != EventReminderDue {
		t.Fatalf("expected type %q, got %q", EventReminderDue, evt.Type)
	}
	got, ok := GetReminderDuePayload(evt)
	if !ok {
		t.Fatal("GetReminderDuePayload returned false")
	}
	if got.Count != 2 {
		t.Fatalf("expected count 2, got %d", got.Count)
	}
	if len(got.Tasks) != 2 || got.Tasks[0].Title != "File taxes" {
		t.Fatalf("unexpected tasks: %+v", got.Tasks)
	}
}

func TestExtractPayload_WrongShape(t *testing.T) {
	evt := NewEvent(EventTaskCreated, SourceCLI, map[string]any{"removed": "not-a-number"})

	if _, ok := ExtractPayload[TasksClearedPayload](evt); ok {
		t.Fatal("expected extraction to fail for mismatched payload")
	}
}
