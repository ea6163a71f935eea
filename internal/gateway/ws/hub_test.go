package ws

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/state"
	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

func newTestClient(t *testing.T) (*Client, *events.Bus) {
	t.Helper()
	repo := tasks.NewRepository(storage.NewAdapter(storage.NewMemoryKV()))
	bus := events.NewBus(16)
	t.Cleanup(bus.Close)

	st := state.New(repo, bus)
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	hub := NewHub(bus, st)
	t.Cleanup(hub.Close)

	return &Client{send: make(chan []byte, 16), hub: hub}, bus
}

// nextFrame pops the next queued frame. Responses are queued synchronously
// by handleRequest, so no waiting is needed.
func nextFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case data := <-c.send:
		f, err := UnmarshalFrame(data)
		if err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return f
	default:
		t.Fatal("no frame queued")
		return Frame{}
	}
}

func request(t *testing.T, method Method, params any) Frame {
	t.Helper()
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		raw = data
	}
	return Frame{Type: FrameTypeRequest, ID: "req-1", Method: string(method), Params: raw}
}

func TestHandleRequest_CreateAndList(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	c.handleRequest(ctx, request(t, MethodCreateTask, map[string]any{"title": "Buy milk", "priority": "HIGH"}))

	res := nextFrame(t, c)
	if res.OK == nil || !*res.OK {
		t.Fatalf("create response not ok: %s", res.Error)
	}
	var created tasks.Task
	if err := json.Unmarshal(res.Payload, &created); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if created.Title != "Buy milk" {
		t.Errorf("title = %q, want %q", created.Title, "Buy milk")
	}
	if created.Priority != tasks.PriorityHigh {
		t.Errorf("priority = %q, want %q", created.Priority, tasks.PriorityHigh)
	}

	c.handleRequest(ctx, request(t, MethodListTasks, nil))
	res = nextFrame(t, c)
	if res.OK == nil || !*res.OK {
		t.Fatalf("list response not ok: %s", res.Error)
	}
	var list []tasks.Task
	if err := json.Unmarshal(res.Payload, &list); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list size = %d, want 1", len(list))
	}
}

func TestHandleRequest_ToggleRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	c.handleRequest(ctx, request(t, MethodCreateTask, map[string]any{"title": "flip me"}))
	res := nextFrame(t, c)
	var created tasks.Task
	if err := json.Unmarshal(res.Payload, &created); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	c.handleRequest(ctx, request(t, MethodToggleStatus, map[string]string{"id": created.ID}))
	res = nextFrame(t, c)
	if res.OK == nil || !*res.OK {
		t.Fatalf("toggle response not ok: %s", res.Error)
	}
	var toggled tasks.Task
	if err := json.Unmarshal(res.Payload, &toggled); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if toggled.Status != tasks.StatusCompleted {
		t.Errorf("status = %q, want %q", toggled.Status, tasks.StatusCompleted)
	}
}

func TestHandleRequest_InvalidStatusRejected(t *testing.T) {
	c, _ := newTestClient(t)

	c.handleRequest(context.Background(), request(t, MethodCreateTask,
		map[string]string{"title": "bad", "status": "BANANA"}))

	res := nextFrame(t, c)
	if res.OK == nil || *res.OK {
		t.Fatal("expected ok=false for invalid status")
	}
	if !strings.Contains(res.Error, "invalid status") {
		t.Errorf("error = %q, want invalid status message", res.Error)
	}
}

func TestHandleRequest_DeleteMissing(t *testing.T) {
	c, _ := newTestClient(t)

	c.handleRequest(context.Background(), request(t, MethodDeleteTask, map[string]string{"id": "task_nope"}))

	res := nextFrame(t, c)
	if res.OK == nil || *res.OK {
		t.Fatal("expected ok=false for unknown id")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("error = %q, want not found message", res.Error)
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	c, _ := newTestClient(t)

	c.handleRequest(context.Background(), request(t, Method("make_coffee"), nil))

	res := nextFrame(t, c)
	if res.OK == nil || *res.OK {
		t.Fatal("expected ok=false for unknown method")
	}
	if !strings.Contains(res.Error, "unknown method") {
		t.Errorf("error = %q, want unknown method message", res.Error)
	}
}

func TestHandleRequest_GetStats(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	c.handleRequest(ctx, request(t, MethodCreateTask, map[string]string{"title": "one"}))
	nextFrame(t, c)

	c.handleRequest(ctx, request(t, MethodGetStats, nil))
	res := nextFrame(t, c)
	if res.OK == nil || !*res.OK {
		t.Fatalf("stats response not ok: %s", res.Error)
	}
	var stats tasks.Stats
	if err := json.Unmarshal(res.Payload, &stats); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if stats.Total != 1 {
		t.Errorf("total = %d, want 1", stats.Total)
	}
}

func TestBroadcastSkipsFilterChanged(t *testing.T) {
	c, bus := newTestClient(t)
	c.hub.register(c)

	bus.PublishSync(events.NewTypedEvent(events.SourceState, events.TaskCreatedPayload{
		TaskSummary: events.TaskSummary{ID: "task_1", Title: "seen", Status: "TODO", Priority: "LOW"},
	}))
	bus.PublishSync(events.NewTypedEvent(events.SourceState, events.FilterChangedPayload{Query: "hidden"}))

	frame := nextFrame(t, c)
	if frame.Type != FrameTypeEvent {
		t.Fatalf("frame type = %q, want event", frame.Type)
	}
	if frame.Event != string(events.EventTaskCreated) {
		t.Errorf("event = %q, want %q", frame.Event, events.EventTaskCreated)
	}

	select {
	case data := <-c.send:
		t.Fatalf("unexpected second frame: %s", data)
	default:
	}
}
