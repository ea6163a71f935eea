package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// statusFor maps a state operation error to an HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, tasks.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type createRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Status           string     `json:"status"`
	Priority         string     `json:"priority"`
	DueDate          *time.Time `json:"dueDate"`
	EstimatedMinutes *int       `json:"estimatedMinutes"`
	Tags             []string   `json:"tags"`
}

type updateRequest struct {
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

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := tasks.Status(q.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status: "+string(status))
		return
	}
	priority := tasks.Priority(q.Get("priority"))
	if priority != "" && !priority.Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority: "+string(priority))
		return
	}

	list, err := s.state.List(r.Context(), tasks.Filter{
		Query:    q.Get("query"),
		Status:   status,
		Priority: priority,
		Tag:      q.Get("tag"),
		Overdue:  q.Get("overdue") == "true",
		DueToday: q.Get("dueToday") == "true",
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && !tasks.Status(req.Status).Valid() {
		writeError(w, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}
	if req.Priority != "" && !tasks.Priority(req.Priority).Valid() {
		writeError(w, http.StatusBadRequest, "invalid priority: "+req.Priority)
		return
	}

	task, err := s.state.Create(r.Context(), events.SourceAPI, tasks.CreateInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           tasks.Status(req.Status),
		Priority:         tasks.Priority(req.Priority),
		DueDate:          req.DueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		Tags:             req.Tags,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.state.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := tasks.UpdateInput{
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		ClearDueDate:     req.ClearDueDate,
		EstimatedMinutes: req.EstimatedMinutes,
		ActualMinutes:    req.ActualMinutes,
		Tags:             req.Tags,
	}
	if req.Status != nil {
		status := tasks.Status(*req.Status)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status: "+*req.Status)
			return
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := tasks.Priority(*req.Priority)
		if !priority.Valid() {
			writeError(w, http.StatusBadRequest, "invalid priority: "+*req.Priority)
			return
		}
		input.Priority = &priority
	}

	task, err := s.state.Update(r.Context(), events.SourceAPI, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Delete(r.Context(), events.SourceAPI, chi.URLParam(r, "id")); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCycleStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.state.CycleStatus(r.Context(), events.SourceAPI, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleToggleStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.state.ToggleStatus(r.Context(), events.SourceAPI, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleClearTasks(w http.ResponseWriter, r *http.Request) {
	removed, err := s.state.Clear(r.Context(), events.SourceAPI)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	list, err := s.state.List(r.Context(), tasks.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks.ComputeStats(list, time.Now()))
}

// exportContentTypes maps an export format to its response content type.
var exportContentTypes = map[string]string{
	"json":     "application/json",
	"yaml":     "application/x-yaml",
	"yml":      "application/x-yaml",
	"csv":      "text/csv",
	"markdown": "text/markdown",
	"md":       "text/markdown",
	"pdf":      "application/pdf",
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	contentType, ok := exportContentTypes[strings.ToLower(format)]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown format: "+format)
		return
	}

	data, err := s.exporter.Export(r.Context(), format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

type prefsDocument struct {
	Preferences prefs.Preferences `json:"preferences"`
	Theme       prefs.Theme       `json:"theme"`
}

type prefsPatch struct {
	Preferences *prefs.PreferencesPatch `json:"preferences"`
	Theme       *prefs.ThemePatch       `json:"theme"`
}

func (s *Server) handleGetPrefs(w http.ResponseWriter, r *http.Request) {
	p, err := s.prefs.Preferences(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	theme, err := s.prefs.Theme(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, prefsDocument{Preferences: p, Theme: theme})
}

func (s *Server) handleUpdatePrefs(w http.ResponseWriter, r *http.Request) {
	var patch prefsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var doc prefsDocument
	var err error

	if patch.Preferences != nil {
		if p := patch.Preferences.DefaultPriority; p != nil && !p.Valid() {
			writeError(w, http.StatusBadRequest, "invalid priority: "+string(*p))
			return
		}
		doc.Preferences, err = s.prefs.UpdatePreferences(r.Context(), *patch.Preferences)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else if doc.Preferences, err = s.prefs.Preferences(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if patch.Theme != nil {
		doc.Theme, err = s.prefs.UpdateTheme(r.Context(), *patch.Theme)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	} else if doc.Theme, err = s.prefs.Theme(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
