package timeshift

import (
	"sort"
	"time"

	"daymark-engine/internal/domain"
)

type interval struct {
	start, end time.Time
}

// AvailableSlots returns the free gaps inside working hours once every busy
// slot is widened by the buffer. Gaps shorter than MinGap are dropped.
func AvailableSlots(busy []domain.BusySlot, w Window) []domain.TimeSlot {
	gaps := freeGaps(busy, w)
	out := make([]domain.TimeSlot, len(gaps))
	for i, g := range gaps {
		out[i] = slotOf(g)
	}
	return out
}

func freeGaps(busy []domain.BusySlot, w Window) []interval {
	dayStart, dayEnd := w.Bounds()
	if !dayStart.Before(dayEnd) {
		return nil
	}

	buf := w.buffer()
	blocked := make([]interval, 0, len(busy))
	for _, b := range busy {
		iv := interval{start: b.Start.Add(-buf), end: b.End.Add(buf)}
		if iv.end.After(dayStart) && iv.start.Before(dayEnd) {
			blocked = append(blocked, iv)
		}
	}
	sort.SliceStable(blocked, func(i, j int) bool { return blocked[i].start.Before(blocked[j].start) })

	var gaps []interval
	cur := dayStart
	for _, b := range blocked {
		bs, be := b.start, b.end
		if bs.Before(dayStart) {
			bs = dayStart
		}
		if be.After(dayEnd) {
			be = dayEnd
		}
		if cur.Before(bs) && bs.Sub(cur) >= MinGap {
			gaps = append(gaps, interval{start: cur, end: bs})
		}
		if be.After(cur) {
			cur = be
		}
	}
	if cur.Before(dayEnd) && dayEnd.Sub(cur) >= MinGap {
		gaps = append(gaps, interval{start: cur, end: dayEnd})
	}
	return gaps
}

func slotOf(iv interval) domain.TimeSlot {
	return domain.TimeSlot{
		Start:           iv.start,
		End:             iv.end,
		DurationMinutes: int(iv.end.Sub(iv.start) / time.Minute),
	}
}
