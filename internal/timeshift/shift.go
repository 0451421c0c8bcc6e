package timeshift

import (
	"sort"
	"time"

	"daymark-engine/internal/domain"
)

// Shift places tasks first-fit into the free gaps of the window. Tasks with a
// start time are placed first, then longer tasks before shorter ones. A task
// that fits nowhere comes back with no start or end. The result is in
// placement order; inputs are not modified. OriginalStartTime is the start a
// placed task had before this call, or nil if it had none.
func Shift(tasks []domain.Task, busy []domain.BusySlot, w Window) []domain.Task {
	gaps := freeGaps(busy, w)

	order := make([]domain.Task, len(tasks))
	copy(order, tasks)
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if (a.StartTime != nil) != (b.StartTime != nil) {
			return a.StartTime != nil
		}
		return a.Duration > b.Duration
	})

	out := make([]domain.Task, 0, len(order))
	for _, t := range order {
		need := time.Duration(max(t.Duration, 0)) * time.Minute

		idx := -1
		for i, g := range gaps {
			if g.end.Sub(g.start) >= need {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.StartTime, t.EndTime = nil, nil
			t.WasAutoShifted = false
			out = append(out, t)
			continue
		}

		start := gaps[idx].start
		end := start.Add(need)
		prev := t.StartTime

		t.WasAutoShifted = prev == nil || !prev.Equal(start)
		t.OriginalStartTime = nil
		if prev != nil {
			p := *prev
			t.OriginalStartTime = &p
		}
		t.StartTime, t.EndTime = &start, &end
		out = append(out, t)

		gaps[idx].start = end
		if gaps[idx].end.Sub(end) < MinGap {
			gaps = append(gaps[:idx], gaps[idx+1:]...)
		}
	}
	return out
}
