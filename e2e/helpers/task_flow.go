// Command task_flow exercises the full task lifecycle via WS.
//
// It connects to a running taskdeck daemon, creates a task, walks it
// through the status cycle, verifies that the matching events are
// broadcast, and deletes it again.
//
// Usage: task_flow -gateway ws://127.0.0.1:PORT/api/ws
//
// Exit codes:
//
//	0 = all checks passed
//	1 = a check failed
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	wsclient "github.com/GiftNdimande/taskdeck/clients/ws"
	"github.com/GiftNdimande/taskdeck/internal/events"
	wsprotocol "github.com/GiftNdimande/taskdeck/internal/gateway/ws"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

func main() {
	gatewayURL := flag.String("gateway", "ws://127.0.0.1:7360/api/ws", "Gateway WS URL")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, *gatewayURL); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
}

// flow tracks the broadcast events observed while waiting for responses.
// Broadcasts can arrive before the response that triggered them, so seen
// ids are buffered rather than compared on the spot.
type flow struct {
	client     *wsclient.Client
	taskID     string
	createdIDs map[string]bool
	deletedIDs map[string]bool
}

func run(ctx context.Context, gatewayURL string) error {
	client, err := wsclient.Dial(ctx, gatewayURL)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer client.Close()
	fmt.Println("CHECK connected")

	f := &flow{
		client:     client,
		createdIDs: make(map[string]bool),
		deletedIDs: make(map[string]bool),
	}
	title := fmt.Sprintf("e2e task_flow %d", time.Now().UnixMilli())

	// ── Step 1: create a task ───────────────────────────────────────────
	var created tasks.Task
	if err := f.request(ctx, wsprotocol.MethodCreateTask, map[string]any{
		"title":    title,
		"priority": "HIGH",
		"tags":     []string{"e2e"},
	}, &created); err != nil {
		return fmt.Errorf("create_task: %w", err)
	}
	if created.ID == "" || created.Status != tasks.StatusTodo {
		return fmt.Errorf("create_task returned %q with status %s, want a TODO task", created.ID, created.Status)
	}
	if created.Title != title {
		return fmt.Errorf("create_task title: got %q, want %q", created.Title, title)
	}
	f.taskID = created.ID
	fmt.Printf("CHECK task created: %s\n", created.ID)

	// ── Step 2: walk the status cycle ───────────────────────────────────
	var cycled tasks.Task
	if err := f.request(ctx, wsprotocol.MethodCycleStatus, map[string]string{"id": f.taskID}, &cycled); err != nil {
		return fmt.Errorf("cycle_status: %w", err)
	}
	if cycled.Status != tasks.StatusInProgress {
		return fmt.Errorf("cycle_status: got %s, want IN_PROGRESS", cycled.Status)
	}
	fmt.Println("CHECK cycled to IN_PROGRESS")

	var toggled tasks.Task
	if err := f.request(ctx, wsprotocol.MethodToggleStatus, map[string]string{"id": f.taskID}, &toggled); err != nil {
		return fmt.Errorf("toggle_status: %w", err)
	}
	if toggled.Status != tasks.StatusTodo {
		return fmt.Errorf("toggle_status: got %s, want TODO (IN_PROGRESS collapses)", toggled.Status)
	}
	fmt.Println("CHECK toggled back to TODO")

	// ── Step 3: stats include the task ──────────────────────────────────
	var stats tasks.Stats
	if err := f.request(ctx, wsprotocol.MethodGetStats, nil, &stats); err != nil {
		return fmt.Errorf("get_stats: %w", err)
	}
	if stats.Total < 1 {
		return fmt.Errorf("get_stats: total %d, want at least 1", stats.Total)
	}
	fmt.Printf("CHECK stats total: %d\n", stats.Total)

	// ── Step 4: delete the task ─────────────────────────────────────────
	if err := f.request(ctx, wsprotocol.MethodDeleteTask, map[string]string{"id": f.taskID}, nil); err != nil {
		return fmt.Errorf("delete_task: %w", err)
	}
	fmt.Println("CHECK task deleted")

	// ── Step 5: verify the broadcasts arrived ───────────────────────────
	if err := f.drainEvents(ctx); err != nil {
		return err
	}
	fmt.Println("CHECK task.created and task.deleted broadcast")

	fmt.Println("CHECK all flow checks passed")
	return nil
}

// request sends a request frame and reads until its response arrives,
// recording any broadcast events passing by. The response payload is
// unmarshaled into out when out is non-nil.
func (f *flow) request(ctx context.Context, method wsprotocol.Method, params any, out any) error {
	id, err := f.client.Request(method, params)
	if err != nil {
		return err
	}

	for {
		frame, err := f.client.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("timeout waiting for response")
			}
			return fmt.Errorf("read frame: %w", err)
		}

		if frame.Type == wsprotocol.FrameTypeEvent {
			f.recordEvent(frame)
			continue
		}
		if frame.Type != wsprotocol.FrameTypeResponse || frame.ID != id {
			continue
		}

		if frame.OK == nil || !*frame.OK {
			return fmt.Errorf("error response: %s", frame.Error)
		}
		if out != nil {
			if err := json.Unmarshal(frame.Payload, out); err != nil {
				return fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		return nil
	}
}

// recordEvent buffers the task ids carried by lifecycle broadcasts.
func (f *flow) recordEvent(frame wsprotocol.Frame) {
	var evt events.Event
	if err := json.Unmarshal(frame.Payload, &evt); err != nil {
		return
	}

	switch evt.Type {
	case events.EventTaskCreated:
		if p, ok := events.GetTaskCreatedPayload(evt); ok {
			f.createdIDs[p.ID] = true
		}
	case events.EventTaskDeleted:
		if p, ok := events.GetTaskDeletedPayload(evt); ok {
			f.deletedIDs[p.ID] = true
		}
	}
}

// drainEvents keeps reading until both lifecycle broadcasts for our task
// have been observed.
func (f *flow) drainEvents(ctx context.Context) error {
	for !f.createdIDs[f.taskID] || !f.deletedIDs[f.taskID] {
		frame, err := f.client.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("timeout: created seen=%v, deleted seen=%v",
					f.createdIDs[f.taskID], f.deletedIDs[f.taskID])
			}
			return fmt.Errorf("read frame: %w", err)
		}
		if frame.Type == wsprotocol.FrameTypeEvent {
			f.recordEvent(frame)
		}
	}
	return nil
}
