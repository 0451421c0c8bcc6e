package timeshift

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/domain"
)

var day = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 10, 16, h, m, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func workday() Window {
	return Window{Date: day, Start: "09:00", End: "17:00", BufferMinutes: 15}
}

func TestAvailableSlots_LunchMeeting(t *testing.T) {
	busy := []domain.BusySlot{{Start: at(12, 0), End: at(13, 0)}}

	slots := AvailableSlots(busy, workday())

	require.Len(t, slots, 2)
	assert.Equal(t, at(9, 0), slots[0].Start)
	assert.Equal(t, at(11, 45), slots[0].End)
	assert.Equal(t, 165, slots[0].DurationMinutes)
	assert.Equal(t, at(13, 15), slots[1].Start)
	assert.Equal(t, at(17, 0), slots[1].End)
}

func TestAvailableSlots_ClampsAndMerges(t *testing.T) {
	busy := []domain.BusySlot{
		{Start: at(13, 0), End: at(14, 0)},
		{Start: at(7, 0), End: at(9, 30)},
		{Start: at(13, 30), End: at(13, 45)},
		{Start: at(16, 50), End: at(18, 0)},
	}

	slots := AvailableSlots(busy, workday())

	require.Len(t, slots, 2)
	assert.Equal(t, at(9, 45), slots[0].Start)
	assert.Equal(t, at(12, 45), slots[0].End)
	assert.Equal(t, at(14, 15), slots[1].Start)
	assert.Equal(t, at(16, 35), slots[1].End)
}

func TestAvailableSlots_DropsShortGaps(t *testing.T) {
	w := Window{Date: day, Start: "09:00", End: "10:00"}
	busy := []domain.BusySlot{{Start: at(9, 10), End: at(9, 50)}}

	assert.Empty(t, AvailableSlots(busy, w))
}

func TestAvailableSlots_DegenerateWindow(t *testing.T) {
	assert.Empty(t, AvailableSlots(nil, Window{Date: day, Start: "17:00", End: "09:00"}))
	assert.Empty(t, AvailableSlots(nil, Window{Date: day, Start: "nine", End: "17:00"}))
	assert.Len(t, AvailableSlots(nil, workday()), 1)
}

func TestShift_PlacesAtFirstGap(t *testing.T) {
	busy := []domain.BusySlot{{Start: at(12, 0), End: at(13, 0)}}
	tasks := []domain.Task{{ID: "t1", Duration: 30}}

	out := Shift(tasks, busy, workday())

	require.Len(t, out, 1)
	require.NotNil(t, out[0].StartTime)
	assert.Equal(t, at(9, 0), *out[0].StartTime)
	assert.Equal(t, at(9, 30), *out[0].EndTime)
	assert.True(t, out[0].WasAutoShifted)
	assert.Nil(t, out[0].OriginalStartTime)
	assert.Nil(t, tasks[0].StartTime, "input must not be modified")
}

func TestShift_OrderAndOriginalStart(t *testing.T) {
	busy := []domain.BusySlot{{Start: at(9, 0), End: at(10, 0)}}
	tasks := []domain.Task{
		{ID: "short", Duration: 15},
		{ID: "long", Duration: 90},
		{ID: "pinned", Duration: 30, StartTime: ptr(at(9, 30))},
	}

	out := Shift(tasks, busy, workday())

	require.Len(t, out, 3)
	assert.Equal(t, "pinned", out[0].ID)
	assert.Equal(t, "long", out[1].ID)
	assert.Equal(t, "short", out[2].ID)

	assert.Equal(t, at(10, 15), *out[0].StartTime)
	require.NotNil(t, out[0].OriginalStartTime)
	assert.Equal(t, at(9, 30), *out[0].OriginalStartTime)
	assert.True(t, out[0].WasAutoShifted)

	assert.Equal(t, at(10, 45), *out[1].StartTime)
	assert.Equal(t, at(12, 15), *out[2].StartTime)
}

func TestShift_UnchangedStartIsNotShifted(t *testing.T) {
	tasks := []domain.Task{{ID: "a", Duration: 60, StartTime: ptr(at(9, 0))}}

	out := Shift(tasks, nil, workday())

	require.NotNil(t, out[0].StartTime)
	assert.False(t, out[0].WasAutoShifted)
}

func TestShift_UnschedulableTask(t *testing.T) {
	busy := []domain.BusySlot{{Start: at(10, 0), End: at(16, 0)}}
	tasks := []domain.Task{{ID: "big", Duration: 120, StartTime: ptr(at(11, 0)), WasAutoShifted: true}}

	out := Shift(tasks, busy, workday())

	require.Len(t, out, 1)
	assert.Nil(t, out[0].StartTime)
	assert.Nil(t, out[0].EndTime)
	assert.False(t, out[0].WasAutoShifted)
}

func TestShift_StaleOriginalStartCleared(t *testing.T) {
	busy := []domain.BusySlot{{Start: at(9, 0), End: at(10, 0)}}
	tasks := []domain.Task{{ID: "a", Duration: 30, OriginalStartTime: ptr(at(8, 0))}}

	out := Shift(tasks, busy, workday())

	require.NotNil(t, out[0].StartTime)
	assert.Equal(t, at(10, 0), *out[0].StartTime)
	assert.Nil(t, out[0].OriginalStartTime)
	require.NotNil(t, tasks[0].OriginalStartTime, "input must not be modified")
}

func TestShift_EmptyInputs(t *testing.T) {
	assert.Empty(t, Shift(nil, nil, workday()))
	out := Shift([]domain.Task{{ID: "a", Duration: 30}}, nil, Window{Date: day, Start: "09:00", End: "09:00"})
	require.Len(t, out, 1)
	assert.Nil(t, out[0].StartTime)
}

func TestShift_NoOverlapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		w := Window{Date: day, Start: "08:00", End: "18:00", BufferMinutes: rng.Intn(31)}

		var busy []domain.BusySlot
		for i := 0; i < rng.Intn(5); i++ {
			s := at(7, 0).Add(time.Duration(rng.Intn(11*60)) * time.Minute)
			busy = append(busy, domain.BusySlot{Start: s, End: s.Add(time.Duration(15+rng.Intn(120)) * time.Minute)})
		}
		var tasks []domain.Task
		for i := 0; i < 1+rng.Intn(8); i++ {
			tk := domain.Task{ID: fmt.Sprint(i), Duration: 5 + rng.Intn(150)}
			if rng.Intn(3) == 0 {
				tk.StartTime = ptr(at(8+rng.Intn(9), 0))
			}
			tasks = append(tasks, tk)
		}

		out := Shift(tasks, busy, w)
		require.Len(t, out, len(tasks))

		buf := time.Duration(w.BufferMinutes) * time.Minute
		dayStart, dayEnd := w.Bounds()
		var placed []domain.Task
		for _, tk := range out {
			if tk.StartTime == nil {
				continue
			}
			assert.False(t, tk.StartTime.Before(dayStart))
			assert.False(t, tk.EndTime.After(dayEnd))
			for _, b := range busy {
				bs, be := b.Start.Add(-buf), b.End.Add(buf)
				assert.False(t, tk.StartTime.Before(be) && bs.Before(*tk.EndTime),
					"round %d task %s overlaps busy %v-%v", round, tk.ID, bs, be)
			}
			for _, other := range placed {
				assert.False(t, tk.StartTime.Before(*other.EndTime) && other.StartTime.Before(*tk.EndTime),
					"round %d tasks %s and %s overlap", round, tk.ID, other.ID)
			}
			placed = append(placed, tk)
		}
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("24:00")
	assert.NoError(t, err)

	for _, bad := range []string{"", "9", "25:00", "10:60", "aa:bb", "24:30"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestCache_PassThroughWithoutBusyTime(t *testing.T) {
	c := NewCache()
	tasks := []domain.Task{{ID: "a", Duration: 30, StartTime: ptr(at(14, 0))}}

	p := c.Schedule(tasks, nil, workday(), true)
	require.Len(t, p.Tasks, 1)
	assert.Equal(t, at(14, 0), *p.Tasks[0].StartTime)
	assert.Len(t, p.Slots, 1)

	busy := []domain.BusySlot{{Start: at(14, 0), End: at(15, 0)}}
	p = c.Schedule(tasks, busy, workday(), false)
	assert.Equal(t, at(14, 0), *p.Tasks[0].StartTime)

	p = c.Schedule(tasks, busy, workday(), true)
	assert.Equal(t, at(9, 0), *p.Tasks[0].StartTime)
	assert.True(t, p.Tasks[0].WasAutoShifted)
}

func TestCache_HasConflicts(t *testing.T) {
	c := NewCache()
	busy := []domain.BusySlot{{Start: at(14, 0), End: at(15, 0)}}

	free := []domain.Task{{ID: "a", Duration: 30, StartTime: ptr(at(9, 0))}}
	assert.False(t, c.Schedule(free, busy, workday(), true).HasConflicts)
	assert.False(t, c.Schedule(free, nil, workday(), true).HasConflicts)

	clash := []domain.Task{{ID: "a", Duration: 30, StartTime: ptr(at(14, 0))}}
	assert.True(t, c.Schedule(clash, busy, workday(), true).HasConflicts)
	assert.True(t, c.Schedule(clash, busy, workday(), true).HasConflicts, "cached plan keeps the flag")
	assert.False(t, c.Schedule(clash, busy, workday(), false).HasConflicts)
}
