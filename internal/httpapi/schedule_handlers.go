package httpapi

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"daymark-engine/internal/calendar"
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/store"
	"daymark-engine/internal/timeshift"
)

type ScheduleHandler struct {
	Store     *store.DB
	Schedules *timeshift.Cache
	Calendar  BusySource
	CfgVal    *atomic.Value // stores config.Config
	Hub       *events.Hub
	Now       func() time.Time
}

type busyReq struct {
	Slots []domain.BusySlot `json:"slots"`
}

type scheduleResp struct {
	Date      string            `json:"date"`
	AutoShift bool              `json:"autoShift"`
	Busy      []domain.BusySlot `json:"busy"`
	timeshift.Plan
}

// Get returns the day's tasks, shifted around busy time when auto-shift is
// on, and the free slots left in working hours.
func (h ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	date, ok := pathDate(w, r, cfg, h.Now)
	if !ok {
		return
	}
	tasks, err := h.Store.ListTasks(r.Context(), cfg.App.UserID, date)
	if err != nil {
		internalError(w, r, err)
		return
	}
	busy, err := h.Store.BusySlots(r.Context(), cfg.App.UserID, date)
	if err != nil {
		internalError(w, r, err)
		return
	}
	win, err := cfg.Window(date)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_date", err.Error())
		return
	}
	plan := h.Schedules.Schedule(tasks, busy, win, cfg.Schedule.AutoShift)
	WriteJSON(w, http.StatusOK, scheduleResp{Date: date, AutoShift: cfg.Schedule.AutoShift, Busy: busy, Plan: plan})
}

// PutBusy replaces the stored busy slots for the day.
func (h ScheduleHandler) PutBusy(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	date, ok := pathDate(w, r, cfg, h.Now)
	if !ok {
		return
	}
	var req busyReq
	if !decodeJSON(w, r, &req) {
		return
	}
	for i, s := range req.Slots {
		if !s.End.After(s.Start) {
			WriteError(w, r, http.StatusBadRequest, "bad_slot", "slot "+strconv.Itoa(i)+" must end after it starts")
			return
		}
	}
	h.saveBusy(w, r, cfg, date, req.Slots)
}

// Sync pulls the day's busy time from the connected calendar and stores it.
func (h ScheduleHandler) Sync(w http.ResponseWriter, r *http.Request) {
	cfg := currentConfig(h.CfgVal)
	date, ok := pathDate(w, r, cfg, h.Now)
	if !ok {
		return
	}
	if h.Calendar == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "calendar_unavailable", "no calendar configured")
		return
	}
	slots, err := h.Calendar.BusySlots(r.Context(), date, cfg.Location())
	if errors.Is(err, calendar.ErrNoToken) {
		WriteError(w, r, http.StatusPreconditionFailed, "calendar_not_connected", err.Error())
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "calendar_error", err.Error())
		return
	}
	h.saveBusy(w, r, cfg, date, slots)
}

func (h ScheduleHandler) saveBusy(w http.ResponseWriter, r *http.Request, cfg config.Config, date string, slots []domain.BusySlot) {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	if err := h.Store.ReplaceBusySlots(r.Context(), cfg.App.UserID, date, slots); err != nil {
		internalError(w, r, err)
		return
	}
	if slots == nil {
		slots = []domain.BusySlot{}
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.TasksUpdated, map[string]any{"date": date, "busy": len(slots)})
	WriteJSON(w, http.StatusOK, busyReq{Slots: slots})
}
