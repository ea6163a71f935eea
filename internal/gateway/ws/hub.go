// Package ws bridges the event bus to WebSocket clients and dispatches
// task operations sent over the socket.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/state"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// Client represents a connected WebSocket client.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub manages WebSocket clients and bridges them to the event bus.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]struct{}
	bus         *events.Bus
	state       *state.Container
	unsubscribe func()
}

// NewHub creates a WebSocket hub over the event bus and state container.
func NewHub(bus *events.Bus, st *state.Container) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		bus:     bus,
		state:   st,
	}

	// Subscribe to all events and bridge to WS clients
	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		if e.Type == events.EventFilterChanged {
			// UI-local, not broadcast.
			return
		}
		frame, err := NewEventFrame(string(e.Type), e)
		if err != nil {
			slog.Error("marshal event frame", "error", err)
			return
		}
		data, err := MarshalFrame(frame)
		if err != nil {
			slog.Error("marshal frame", "error", err)
			return
		}
		h.broadcast(data)
	})

	return h
}

// broadcast sends data to all connected clients.
func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

// register adds a client to the hub.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Info("ws client connected", "clients", len(h.clients))
}

// unregister removes a client from the hub.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Info("ws client disconnected", "clients", len(h.clients))
	}
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow any origin for dev
	})
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.register(client)

	ctx := r.Context()
	go client.writePump(ctx)
	client.readPump(ctx)
}

// readPump reads frames from the WS connection and dispatches them.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.Debug("ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			slog.Error("ws unmarshal frame", "error", err)
			continue
		}

		c.handleFrame(ctx, frame)
	}
}

// handleFrame processes an incoming WS frame.
func (c *Client) handleFrame(ctx context.Context, frame Frame) {
	switch frame.Type {
	case FrameTypeRequest:
		c.handleRequest(ctx, frame)
	default:
		slog.Debug("ws unknown frame type", "type", frame.Type)
	}
}

type listParams struct {
	Query    string `json:"query"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Tag      string `json:"tag"`
	Overdue  bool   `json:"overdue"`
	DueToday bool   `json:"dueToday"`
}

type createParams struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"dueDate"`
	EstimatedMinutes *int       `json:"estimatedMinutes"`
	Tags             []string   `json:"tags"`
}

type updateParams struct {
	ID               string     `json:"id"`
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	Status           *string    `json:"status"`
	Priority         *string    `json:"priority"`
	DueDate          *time.Time `json:"dueDate"`
	ClearDueDate     bool       `json:"clearDueDate"`
	EstimatedMinutes *int       `json:"estimatedMinutes"`
	ActualMinutes    *int       `json:"actualMinutes"`
	Tags             *[]string  `json:"tags"`
}

type idParams struct {
	ID string `json:"id"`
}

// handleRequest processes a request frame (method dispatch).
func (c *Client) handleRequest(ctx context.Context, frame Frame) {
	switch Method(frame.Method) {
	case MethodListTasks:
		var params listParams
		if len(frame.Params) > 0 {
			if err := json.Unmarshal(frame.Params, &params); err != nil {
				c.sendError(frame.ID, "invalid params")
				return
			}
		}
		list, err := c.hub.state.List(ctx, tasks.Filter{
			Query:    params.Query,
			Status:   tasks.Status(params.Status),
			Priority: tasks.Priority(params.Priority),
			Tag:      params.Tag,
			Overdue:  params.Overdue,
			DueToday: params.DueToday,
		})
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, list)

	case MethodCreateTask:
		var params createParams
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.sendError(frame.ID, "invalid params")
			return
		}
		input, errMsg := createInputFromParams(params)
		if errMsg != "" {
			c.sendError(frame.ID, errMsg)
			return
		}
		task, err := c.hub.state.Create(ctx, events.SourceWS, input)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, task)

	case MethodUpdateTask:
		var params updateParams
		if err := json.Unmarshal(frame.Params, &params); err != nil {
			c.sendError(frame.ID, "invalid params")
			return
		}
		if params.ID == "" {
			c.sendError(frame.ID, "id is required")
			return
		}
		input, errMsg := updateInputFromParams(params)
		if errMsg != "" {
			c.sendError(frame.ID, errMsg)
			return
		}
		task, err := c.hub.state.Update(ctx, events.SourceWS, params.ID, input)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, task)

	case MethodDeleteTask:
		var params idParams
		if err := json.Unmarshal(frame.Params, &params); err != nil || params.ID == "" {
			c.sendError(frame.ID, "id is required")
			return
		}
		if err := c.hub.state.Delete(ctx, events.SourceWS, params.ID); err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, map[string]string{"status": "deleted"})

	case MethodCycleStatus:
		var params idParams
		if err := json.Unmarshal(frame.Params, &params); err != nil || params.ID == "" {
			c.sendError(frame.ID, "id is required")
			return
		}
		task, err := c.hub.state.CycleStatus(ctx, events.SourceWS, params.ID)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, task)

	case MethodToggleStatus:
		var params idParams
		if err := json.Unmarshal(frame.Params, &params); err != nil || params.ID == "" {
			c.sendError(frame.ID, "id is required")
			return
		}
		task, err := c.hub.state.ToggleStatus(ctx, events.SourceWS, params.ID)
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, task)

	case MethodGetStats:
		list, err := c.hub.state.List(ctx, tasks.Filter{})
		if err != nil {
			c.sendError(frame.ID, err.Error())
			return
		}
		c.sendOK(frame.ID, tasks.ComputeStats(list, time.Now()))

	default:
		c.sendError(frame.ID, "unknown method: "+frame.Method)
	}
}

func createInputFromParams(p createParams) (tasks.CreateInput, string) {
	if p.Title == "" {
		return tasks.CreateInput{}, "title is required"
	}
	if p.Status != "" && !tasks.Status(p.Status).Valid() {
		return tasks.CreateInput{}, "invalid status: " + p.Status
	}
	if p.Priority != "" && !tasks.Priority(p.Priority).Valid() {
		return tasks.CreateInput{}, "invalid priority: " + p.Priority
	}
	return tasks.CreateInput{
		Title:            p.Title,
		Description:      p.Description,
		Status:           tasks.Status(p.Status),
		Priority:         tasks.Priority(p.Priority),
		DueDate:          p.DueDate,
		EstimatedMinutes: p.EstimatedMinutes,
		Tags:             p.Tags,
	}, ""
}

func updateInputFromParams(p updateParams) (tasks.UpdateInput, string) {
	input := tasks.UpdateInput{
		Title:            p.Title,
		Description:      p.Description,
		DueDate:          p.DueDate,
		ClearDueDate:     p.ClearDueDate,
		EstimatedMinutes: p.EstimatedMinutes,
		ActualMinutes:    p.ActualMinutes,
		Tags:             p.Tags,
	}
	if p.Status != nil {
		s := tasks.Status(*p.Status)
		if !s.Valid() {
			return tasks.UpdateInput{}, "invalid status: " + *p.Status
		}
		input.Status = &s
	}
	if p.Priority != nil {
		pr := tasks.Priority(*p.Priority)
		if !pr.Valid() {
			return tasks.UpdateInput{}, "invalid priority: " + *p.Priority
		}
		input.Priority = &pr
	}
	return input, ""
}

// writePump writes queued messages to the WS connection.
func (c *Client) writePump(ctx context.Context) {
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) sendOK(id string, payload any) {
	f, err := NewResponseFrame(id, true, payload, "")
	if err != nil {
		return
	}
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(id string, errMsg string) {
	f, err := NewResponseFrame(id, false, nil, errMsg)
	if err != nil {
		return
	}
	data, err := MarshalFrame(f)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Close shuts down the hub and all client connections.
func (h *Hub) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
		delete(h.clients, c)
	}
}
