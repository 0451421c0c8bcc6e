package httpapi

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
)

type DailyHandler struct {
	Engine *assign.Engine
	CfgVal *atomic.Value // stores config.Config
	Hub    *events.Hub
	Now    func() time.Time
}

type appliedReq struct {
	JobID  string                   `json:"jobId"`
	Status domain.ApplicationStatus `json:"status"`
}

type applicationReq struct {
	Status        *domain.ApplicationStatus `json:"status"`
	Notes         *string                   `json:"notes"`
	InterviewDate *string                   `json:"interviewDate"`
}

type skippedReq struct {
	JobID  string `json:"jobId"`
	Reason string `json:"reason"`
}

func (h DailyHandler) target(w http.ResponseWriter, r *http.Request) (user, date string, ok bool) {
	cfg := currentConfig(h.CfgVal)
	date, ok = pathDate(w, r, cfg, h.Now)
	return cfg.App.UserID, date, ok
}

// Get returns the day's view, assigning the slate on first read.
func (h DailyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, date, ok := h.target(w, r)
	if !ok {
		return
	}
	h.writeView(w, r, user, date)
}

func (h DailyHandler) Applied(w http.ResponseWriter, r *http.Request) {
	user, date, ok := h.target(w, r)
	if !ok {
		return
	}
	var req appliedReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.JobID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_job_id", "jobId is required")
		return
	}
	if req.Status != "" && !req.Status.Valid() {
		WriteError(w, r, http.StatusBadRequest, "bad_status", "unknown application status "+string(req.Status))
		return
	}
	if err := h.Engine.MarkApplied(r.Context(), user, req.JobID, date, req.Status); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.DailyUpdated, map[string]any{"date": date, "applied": req.JobID})
	h.writeView(w, r, user, date)
}

func (h DailyHandler) Skipped(w http.ResponseWriter, r *http.Request) {
	user, date, ok := h.target(w, r)
	if !ok {
		return
	}
	var req skippedReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.JobID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_job_id", "jobId is required")
		return
	}
	if err := h.Engine.MarkSkipped(r.Context(), user, req.JobID, date, req.Reason); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.DailyUpdated, map[string]any{"date": date, "skipped": req.JobID})
	h.writeView(w, r, user, date)
}

func (h DailyHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, date, ok := h.target(w, r)
	if !ok {
		return
	}
	if _, err := h.Engine.RefreshForDay(r.Context(), user, date); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.DailyUpdated, map[string]any{"date": date})
	h.writeView(w, r, user, date)
}

func (h DailyHandler) Clear(w http.ResponseWriter, r *http.Request) {
	user, date, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.Engine.Clear(r.Context(), user, date); err != nil {
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.DailyUpdated, map[string]any{"date": date, "cleared": true})
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "date": date})
}

func (h DailyHandler) Stats(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	today := assign.Today(h.Now(), cfg.Location())
	st, err := h.Engine.Stats(r.Context(), cfg.App.UserID, today)
	if err != nil {
		internalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

func (h DailyHandler) History(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	evs, err := h.Engine.History(r.Context(), cfg.App.UserID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if evs == nil {
		evs = []domain.JobEvent{}
	}
	WriteJSON(w, http.StatusOK, evs)
}

// UpdateApplication tracks an application after it was sent: its status,
// notes and interview date.
func (h DailyHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	var req applicationReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.Engine.UpdateApplication(r.Context(), cfg.App.UserID, r.PathValue("id"), assign.ApplicationUpdate{
		Status:        req.Status,
		Notes:         req.Notes,
		InterviewDate: req.InterviewDate,
	})
	switch {
	case errors.Is(err, assign.ErrNoApplication):
		WriteError(w, r, http.StatusNotFound, "application_not_found", "no application with that id")
		return
	case errors.Is(err, assign.ErrBadStatus):
		WriteError(w, r, http.StatusBadRequest, "bad_status", err.Error())
		return
	case errors.Is(err, assign.ErrBadInterviewDate):
		WriteError(w, r, http.StatusBadRequest, "bad_interview_date", err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.ApplicationUpdated, map[string]any{"id": ev.ID, "status": ev.CurrentStatus()})
	WriteJSON(w, http.StatusOK, ev)
}

func (h DailyHandler) writeView(w http.ResponseWriter, r *http.Request, user, date string) {
	view, err := h.Engine.Daily(r.Context(), user, date)
	if err != nil {
		internalError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}
