package httpapi

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/calendar"
	"daymark-engine/internal/domain"
)

func TestTasksCRUD(t *testing.T) {
	h := newHarness(t, nil)

	var created domain.Task
	h.decode("POST", "/tasks", map[string]any{
		"title":    "Apply to five jobs",
		"date":     today,
		"duration": 90,
		"category": "job-application",
	}, 201, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.TaskPending, created.Status)
	assert.Nil(t, created.CompletedAt)

	h.decode("POST", "/tasks", map[string]any{"title": "Walk", "date": "2026-10-17"}, 201, nil)

	var list []domain.Task
	h.decode("GET", "/tasks?date="+today, nil, 200, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Apply to five jobs", list[0].Title)
	assert.Equal(t, domain.CategoryJobApplication, list[0].Category)

	var updated domain.Task
	h.decode("PATCH", "/tasks/"+created.ID, map[string]any{"status": "completed", "duration": 60}, 200, &updated)
	assert.Equal(t, domain.TaskCompleted, updated.Status)
	assert.Equal(t, 60, updated.Duration)
	require.NotNil(t, updated.CompletedAt)

	h.decode("PATCH", "/tasks/"+created.ID, map[string]any{"status": "in-progress"}, 200, &updated)
	assert.Nil(t, updated.CompletedAt)

	h.decode("DELETE", "/tasks/"+created.ID, nil, 200, nil)
	status, raw := h.do("DELETE", "/tasks/"+created.ID, nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "not_found", errorCode(t, raw))
	status, _ = h.do("PATCH", "/tasks/missing", map[string]any{"title": "x"})
	assert.Equal(t, 404, status)
}

func TestTasksValidation(t *testing.T) {
	h := newHarness(t, nil)

	cases := []struct {
		body map[string]any
		code string
	}{
		{map[string]any{"title": " "}, "missing_title"},
		{map[string]any{"title": "x", "date": "tomorrow"}, "bad_date"},
		{map[string]any{"title": "x", "duration": -5}, "bad_duration"},
		{map[string]any{"title": "x", "category": "chores"}, "bad_category"},
		{map[string]any{"title": "x", "status": "done"}, "bad_status"},
		{map[string]any{"title": "x", "preferredTimeSlot": "night"}, "bad_time_slot"},
	}
	for _, c := range cases {
		status, raw := h.do("POST", "/tasks", c.body)
		assert.Equal(t, 400, status, c.code)
		assert.Equal(t, c.code, errorCode(t, raw))
	}

	status, raw := h.do("GET", "/tasks?date=2026-13-01", nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "bad_date", errorCode(t, raw))
}

type schedule struct {
	Date      string            `json:"date"`
	AutoShift bool              `json:"autoShift"`
	Busy      []domain.BusySlot `json:"busy"`
	Tasks     []domain.Task     `json:"tasks"`
	Slots     []domain.TimeSlot `json:"availableSlots"`
}

func TestScheduleShiftsAroundBusyTime(t *testing.T) {
	h := newHarness(t, nil)

	nine := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	h.decode("POST", "/tasks", map[string]any{
		"title": "Deep work", "date": today, "duration": 60, "startTime": nine,
	}, 201, nil)
	h.decode("PUT", "/calendar/busy/"+today, map[string]any{"slots": []domain.BusySlot{
		{Start: nine, End: nine.Add(time.Hour)},
	}}, 200, nil)

	var s schedule
	h.decode("GET", "/schedule/"+today, nil, 200, &s)
	assert.True(t, s.AutoShift)
	require.Len(t, s.Busy, 1)
	require.Len(t, s.Tasks, 1)
	task := s.Tasks[0]
	assert.True(t, task.WasAutoShifted)
	require.NotNil(t, task.StartTime)
	assert.True(t, task.StartTime.Equal(nine.Add(75*time.Minute)), task.StartTime)
	require.NotNil(t, task.OriginalStartTime)
	assert.True(t, task.OriginalStartTime.Equal(nine))
	require.Len(t, s.Slots, 1)
	assert.Equal(t, 405, s.Slots[0].DurationMinutes)

	status, raw := h.do("PUT", "/calendar/busy/"+today, map[string]any{"slots": []domain.BusySlot{
		{Start: nine, End: nine},
	}})
	assert.Equal(t, 400, status)
	assert.Equal(t, "bad_slot", errorCode(t, raw))
}

func TestCalendarSync(t *testing.T) {
	start := time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)
	h := newHarness(t, stubCalendar{slots: []domain.BusySlot{{Start: start, End: start.Add(30 * time.Minute)}}})

	var got struct {
		Slots []domain.BusySlot `json:"slots"`
	}
	h.decode("POST", "/calendar/sync/"+today, nil, 200, &got)
	require.Len(t, got.Slots, 1)

	var s schedule
	h.decode("GET", "/schedule/"+today, nil, 200, &s)
	assert.Len(t, s.Busy, 1)
	assert.Len(t, s.Slots, 2)

	h = newHarness(t, stubCalendar{err: calendar.ErrNoToken})
	status, raw := h.do("POST", "/calendar/sync/"+today, nil)
	assert.Equal(t, 412, status)
	assert.Equal(t, "calendar_not_connected", errorCode(t, raw))

	h = newHarness(t, stubCalendar{err: errors.New("upstream down")})
	status, raw = h.do("POST", "/calendar/sync/"+today, nil)
	assert.Equal(t, 502, status)
	assert.Equal(t, "calendar_error", errorCode(t, raw))

	h = newHarness(t, nil)
	status, _ = h.do("POST", "/calendar/sync/"+today, nil)
	assert.Equal(t, 503, status)
}
