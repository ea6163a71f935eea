package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/export"
	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/state"
	"github.com/GiftNdimande/taskdeck/internal/storage"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bus := events.NewBus(64)
	t.Cleanup(bus.Close)

	adapter := storage.NewAdapter(storage.NewMemoryKV())
	repo := tasks.NewRepository(adapter)
	st := state.New(repo, bus)
	if err := st.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	srv := NewServer(bus, st, prefs.NewStore(adapter), export.NewExporter(repo), "localhost", 0)
	t.Cleanup(func() { srv.hub.Close() })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(w, req)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) tasks.Task {
	t.Helper()
	var task tasks.Task
	if err := json.NewDecoder(w.Body).Decode(&task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status %q, got %q", "ok", body["status"])
	}
}

func TestTaskCRUDOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	// Create
	w := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Buy milk","priority":"HIGH"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected status 201, got %d: %s", w.Code, w.Body)
	}
	created := decodeTask(t, w)
	if created.ID == "" {
		t.Fatal("created task has empty id")
	}
	if created.Status != tasks.StatusTodo {
		t.Errorf("status = %q, want %q", created.Status, tasks.StatusTodo)
	}

	// List
	w = do(t, srv, http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected status 200, got %d", w.Code)
	}
	var list []tasks.Task
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("list size = %d, want 1", len(list))
	}

	// Get
	w = do(t, srv, http.MethodGet, "/api/tasks/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected status 200, got %d", w.Code)
	}

	// Patch
	w = do(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, `{"title":"Buy oat milk"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch: expected status 200, got %d: %s", w.Code, w.Body)
	}
	patched := decodeTask(t, w)
	if patched.Title != "Buy oat milk" {
		t.Errorf("title = %q, want %q", patched.Title, "Buy oat milk")
	}
	if patched.Priority != tasks.PriorityHigh {
		t.Errorf("priority = %q, want preserved %q", patched.Priority, tasks.PriorityHigh)
	}

	// Cycle: TODO -> IN_PROGRESS
	w = do(t, srv, http.MethodPost, "/api/tasks/"+created.ID+"/cycle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("cycle: expected status 200, got %d", w.Code)
	}
	if got := decodeTask(t, w).Status; got != tasks.StatusInProgress {
		t.Errorf("status after cycle = %q, want %q", got, tasks.StatusInProgress)
	}

	// Toggle collapses IN_PROGRESS -> TODO
	w = do(t, srv, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected status 200, got %d", w.Code)
	}
	if got := decodeTask(t, w).Status; got != tasks.StatusTodo {
		t.Errorf("status after toggle = %q, want %q", got, tasks.StatusTodo)
	}

	// Delete
	w = do(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", w.Code)
	}

	// Gone
	w = do(t, srv, http.MethodGet, "/api/tasks/"+created.ID, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected status 404, got %d", w.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/tasks", `{"description":"no title"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing title: expected status 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/api/tasks", `{"title":"x","status":"BANANA"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status: expected status 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/api/tasks", `{"title":"x","priority":"EXTREME"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid priority: expected status 400, got %d", w.Code)
	}

	w = do(t, srv, http.MethodPost, "/api/tasks", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json: expected status 400, got %d", w.Code)
	}
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"high one","priority":"HIGH"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"low one","priority":"LOW"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"another high","priority":"HIGH"}`)

	w := do(t, srv, http.MethodGet, "/api/tasks?priority=HIGH", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var list []tasks.Task
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("filtered size = %d, want 2", len(list))
	}

	w = do(t, srv, http.MethodGet, "/api/tasks?query=another", "")
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "another high" {
		t.Fatalf("query filter returned %v", list)
	}

	w = do(t, srv, http.MethodGet, "/api/tasks?status=SOMEDAY", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status filter: expected status 400, got %d", w.Code)
	}
}

func TestClearTasks(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"one"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"two"}`)

	w := do(t, srv, http.MethodDelete, "/api/tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body map[string]int
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["removed"] != 2 {
		t.Errorf("removed = %d, want 2", body["removed"])
	}

	w = do(t, srv, http.MethodGet, "/api/tasks", "")
	var list []tasks.Task
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list size after clear = %d, want 0", len(list))
	}
}

func TestHandleStats(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"open"}`)
	created := decodeTask(t, w)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"done"}`)
	do(t, srv, http.MethodPost, "/api/tasks/"+created.ID+"/toggle", "")

	w = do(t, srv, http.MethodGet, "/api/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var stats tasks.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("total = %d, want 2", stats.Total)
	}
	if got := stats.ByStatus[tasks.StatusCompleted]; got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
	if stats.CompletionRate != 0.5 {
		t.Errorf("completion rate = %v, want 0.5", stats.CompletionRate)
	}
}

func TestHandleExport(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"Call dentist"}`)

	// Default format is json
	w := do(t, srv, http.MethodGet, "/api/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want %q", ct, "application/json")
	}
	var list []tasks.Task
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("exported %d tasks, want 2", len(list))
	}

	w = do(t, srv, http.MethodGet, "/api/export?format=markdown", "")
	if w.Code != http.StatusOK {
		t.Fatalf("markdown: expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/markdown" {
		t.Errorf("content type = %q, want %q", ct, "text/markdown")
	}
	if body := w.Body.String(); !strings.Contains(body, "Buy milk") {
		t.Errorf("markdown export missing task title:\n%s", body)
	}

	w = do(t, srv, http.MethodGet, "/api/export?format=xml", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: expected status 400, got %d", w.Code)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/prefs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var doc prefsDocument
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode prefs: %v", err)
	}
	if doc.Preferences.DefaultPriority != tasks.PriorityMedium {
		t.Errorf("default priority = %q, want %q", doc.Preferences.DefaultPriority, tasks.PriorityMedium)
	}

	w = do(t, srv, http.MethodPatch, "/api/prefs", `{"preferences":{"defaultPriority":"HIGH"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch prefs: expected status 200, got %d: %s", w.Code, w.Body)
	}
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode prefs: %v", err)
	}
	if doc.Preferences.DefaultPriority != tasks.PriorityHigh {
		t.Errorf("default priority = %q, want %q", doc.Preferences.DefaultPriority, tasks.PriorityHigh)
	}
	if doc.Theme.Accent != "blue" {
		t.Errorf("accent = %q, want untouched %q", doc.Theme.Accent, "blue")
	}

	w = do(t, srv, http.MethodPatch, "/api/prefs", `{"theme":{"mode":"dark"}}`)
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("decode prefs: %v", err)
	}
	if doc.Theme.Mode != "dark" {
		t.Errorf("mode = %q, want %q", doc.Theme.Mode, "dark")
	}
	if doc.Preferences.DefaultPriority != tasks.PriorityHigh {
		t.Errorf("default priority = %q, want preserved %q", doc.Preferences.DefaultPriority, tasks.PriorityHigh)
	}

	w = do(t, srv, http.MethodPatch, "/api/prefs", `{"preferences":{"defaultPriority":"WRONG"}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid priority: expected status 400, got %d", w.Code)
	}
}

func TestHandleEvents_LimitParam(t *testing.T) {
	srv := newTestServer(t)

	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"one"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"two"}`)
	do(t, srv, http.MethodPost, "/api/tasks", `{"title":"three"}`)

	w := do(t, srv, http.MethodGet, "/api/events?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 2 {
		t.Fatalf("expected 2 events with limit=2, got %d", len(body))
	}
	if body[0]["type"] != string(events.EventTaskCreated) {
		t.Errorf("event type = %v, want %q", body[0]["type"], events.EventTaskCreated)
	}
}

func TestHandleEvents_Empty(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/events", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var body []any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body) != 0 {
		t.Fatalf("expected empty array, got %d items", len(body))
	}
}
