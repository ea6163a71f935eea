package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GiftNdimande/taskdeck/internal/events"
)

func TestEventLogger_WriteAndReadBack(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.NewTypedEvent(events.SourceCLI, events.TaskCreatedPayload{
		TaskSummary: events.TaskSummary{ID: "task_1", Title: "Buy milk", Status: "TODO", Priority: "MEDIUM"},
	}))

	// Give the async subscriber time to process.
	time.Sleep(100 * time.Millisecond)

	data, err := os.ReadFile(filepath.Join(dir, "activity.jsonl"))
	if err != nil {
		t.Fatalf("read JSONL: %v", err)
	}

	var got events.Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != events.EventTaskCreated {
		t.Errorf("got type %q, want %q", got.Type, events.EventTaskCreated)
	}
	payload, ok := events.GetTaskCreatedPayload(got)
	if !ok || payload.Title != "Buy milk" {
		t.Errorf("payload did not round trip: %+v", payload)
	}
}

func TestEventLogger_FilterChangedNotLogged(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.NewTypedEvent(events.SourceState, events.FilterChangedPayload{Query: "milk"}))

	time.Sleep(100 * time.Millisecond)

	// No file should be created for filter-only events.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files, got %d", len(entries))
	}
}

func TestEventLogger_DirectoryAutoCreation(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	bus.Publish(events.NewTypedEvent(events.SourceWS, events.TaskDeletedPayload{
		TaskSummary: events.TaskSummary{ID: "task_1", Title: "Buy milk"},
	}))

	time.Sleep(100 * time.Millisecond)

	if _, err := os.Stat(filepath.Join(dir, "activity.jsonl")); err != nil {
		t.Fatalf("directory not auto-created: %v", err)
	}
}

func TestReadRecent(t *testing.T) {
	dir := t.TempDir()
	bus := events.NewBus(64)
	defer bus.Close()

	el := NewEventLogger(dir, bus)
	defer el.Close()

	// Sync publish keeps the on-disk order deterministic.
	titles := []string{"first", "second", "third", "fourth"}
	for _, title := range titles {
		bus.PublishSync(events.NewTypedEvent(events.SourceCLI, events.TaskCreatedPayload{
			TaskSummary: events.TaskSummary{ID: "task_" + title, Title: title},
		}))
	}

	got, err := ReadRecent(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	last, _ := events.GetTaskCreatedPayload(got[1])
	if last.Title != "fourth" {
		t.Errorf("expected newest event last, got %q", last.Title)
	}

	all, err := ReadRecent(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(titles) {
		t.Errorf("expected %d events with no limit, got %d", len(titles), len(all))
	}
}

func TestReadRecent_MissingLog(t *testing.T) {
	got, err := ReadRecent(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("missing log should not error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
