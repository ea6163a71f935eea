package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GiftNdimande/taskdeck/internal/events"
)

// ActivityKey is the adapter key holding per-day completion counts.
const ActivityKey = "taskdeck:activity"

// CompletionTracker subscribes to task update events and accumulates per-day
// completion counts, keyed by local date. Completed tasks can later be
// deleted or cleared, so these counts are the only durable completion record.
type CompletionTracker struct {
	mu          sync.Mutex
	adapter     *Adapter
	unsubscribe func()
	now         func() time.Time
}

// NewCompletionTracker creates a CompletionTracker that listens for task
// update events on bus and persists counts through adapter.
func NewCompletionTracker(bus *events.Bus, adapter *Adapter) *CompletionTracker {
	ct := &CompletionTracker{
		adapter: adapter,
		now:     time.Now,
	}
	ct.unsubscribe = bus.Subscribe(ct.handleEvent, events.EventTaskUpdated)
	return ct
}

// Close unsubscribes the tracker from the event bus.
func (ct *CompletionTracker) Close() {
	if ct.unsubscribe != nil {
		ct.unsubscribe()
	}
}

func (ct *CompletionTracker) handleEvent(e events.Event) {
	payload, ok := events.GetTaskUpdatedPayload(e)
	if !ok {
		return
	}

	// Count only transitions into COMPLETED.
	if payload.Status != "COMPLETED" || payload.PrevStatus == "COMPLETED" {
		return
	}

	ct.mu.Lock()
	defer ct.mu.Unlock()

	ctx := context.Background()
	counts := map[string]int{}
	if _, err := ct.adapter.Get(ctx, ActivityKey, &counts); err != nil {
		slog.Debug("completion tracker: read counts", "error", err)
		return
	}

	counts[ct.now().Format("2006-01-02")]++

	if err := ct.adapter.Set(ctx, ActivityKey, counts); err != nil {
		slog.Error("completion tracker: write counts", "error", err)
	}
}

// Counts returns the persisted per-day completion counts.
func (ct *CompletionTracker) Counts(ctx context.Context) (map[string]int, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return CompletionCounts(ctx, ct.adapter)
}

// CompletionCounts reads the persisted per-day completion counts without a
// running tracker. A never-written key yields an empty map.
func CompletionCounts(ctx context.Context, adapter *Adapter) (map[string]int, error) {
	counts := map[string]int{}
	if _, err := adapter.Get(ctx, ActivityKey, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
