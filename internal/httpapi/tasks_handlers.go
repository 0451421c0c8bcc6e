package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/store"
)

type TasksHandler struct {
	Store  *store.DB
	CfgVal *atomic.Value // stores config.Config
	Hub    *events.Hub
	Now    func() time.Time
}

type createTaskReq struct {
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Date              string              `json:"date"`
	Duration          int                 `json:"duration"`
	PreferredTimeSlot domain.TimeOfDay    `json:"preferredTimeSlot"`
	StartTime         *time.Time          `json:"startTime"`
	Category          domain.TaskCategory `json:"category"`
	Status            domain.TaskStatus   `json:"status"`
}

// patchTaskReq carries only the fields to change. A null startTime is
// indistinguishable from an absent one; use clearStartTime to unset it.
type patchTaskReq struct {
	Title             *string              `json:"title"`
	Description       *string              `json:"description"`
	Date              *string              `json:"date"`
	Duration          *int                 `json:"duration"`
	PreferredTimeSlot *domain.TimeOfDay    `json:"preferredTimeSlot"`
	StartTime         *time.Time           `json:"startTime"`
	ClearStartTime    bool                 `json:"clearStartTime"`
	Category          *domain.TaskCategory `json:"category"`
	Status            *domain.TaskStatus   `json:"status"`
}

// List returns the tasks for ?date=, defaulting to today.
func (h TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	date := r.URL.Query().Get("date")
	if date == "" || date == "today" {
		date = assign.Today(h.Now(), cfg.Location())
	}
	if err := assign.CheckDate(date); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_date", err.Error())
		return
	}
	tasks, err := h.Store.ListTasks(r.Context(), cfg.App.UserID, date)
	if err != nil {
		internalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tasks)
}

func (h TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	var req createTaskReq
	if !decodeJSON(w, r, &req) {
		return
	}
	now := h.Now().UTC()
	t := domain.Task{
		ID:                uuid.NewString(),
		UserID:            cfg.App.UserID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Date:              req.Date,
		Duration:          req.Duration,
		PreferredTimeSlot: req.PreferredTimeSlot,
		StartTime:         req.StartTime,
		Category:          req.Category,
		Status:            req.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if t.Date == "" {
		t.Date = assign.Today(h.Now(), cfg.Location())
	}
	if t.Category == "" {
		t.Category = domain.CategoryOther
	}
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	if t.Status == domain.TaskCompleted {
		t.CompletedAt = &now
	}
	if code, msg := validateTask(t); code != "" {
		WriteError(w, r, http.StatusBadRequest, code, msg)
		return
	}
	if err := h.Store.SaveTask(r.Context(), t); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TasksUpdated, map[string]any{"date": t.Date, "id": t.ID})
	WriteJSON(w, http.StatusCreated, t)
}

func (h TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	t, err := h.Store.GetTask(r.Context(), cfg.App.UserID, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "task not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	var req patchTaskReq
	if !decodeJSON(w, r, &req) {
		return
	}
	now := h.Now().UTC()
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	if req.Duration != nil {
		t.Duration = *req.Duration
	}
	if req.PreferredTimeSlot != nil {
		t.PreferredTimeSlot = *req.PreferredTimeSlot
	}
	if req.StartTime != nil {
		t.StartTime = req.StartTime
	}
	if req.ClearStartTime {
		t.StartTime = nil
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Status != nil && *req.Status != t.Status {
		t.Status = *req.Status
		if t.Status == domain.TaskCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
	}
	t.UpdatedAt = now

	if code, msg := validateTask(t); code != "" {
		WriteError(w, r, http.StatusBadRequest, code, msg)
		return
	}
	if err := h.Store.SaveTask(r.Context(), t); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TasksUpdated, map[string]any{"date": t.Date, "id": t.ID})
	WriteJSON(w, http.StatusOK, t)
}

func (h TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	id := r.PathValue("id")
	err := h.Store.DeleteTask(r.Context(), cfg.App.UserID, id)
	if errors.Is(err, store.ErrNotFound) {
		WriteError(w, r, http.StatusNotFound, "not_found", "task not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TasksUpdated, map[string]any{"id": id, "deleted": true})
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func validateTask(t domain.Task) (code, msg string) {
	switch {
	case t.Title == "":
		return "missing_title", "title is required"
	case assign.CheckDate(t.Date) != nil:
		return "bad_date", assign.ErrBadDate.Error()
	case t.Duration < 0:
		return "bad_duration", "duration must be >= 0 minutes"
	case !t.Category.Valid():
		return "bad_category", "unknown category " + string(t.Category)
	case !t.Status.Valid():
		return "bad_status", "unknown status " + string(t.Status)
	case !t.PreferredTimeSlot.Valid():
		return "bad_time_slot", "preferredTimeSlot must be morning, afternoon or evening"
	}
	return "", ""
}
