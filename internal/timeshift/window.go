// Package timeshift places a day's tasks into the free time left between
// calendar busy slots.
package timeshift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinGap is the shortest free interval worth scheduling into.
const MinGap = 15 * time.Minute

// Window describes the working day the scheduler packs into.
type Window struct {
	// Date is any instant on the target day. Its location anchors Start and End.
	Date          time.Time
	Start         string // HH:MM
	End           string // HH:MM
	BufferMinutes int
}

// ParseClock parses "HH:MM" in 24h form.
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("clock %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 24 {
		return 0, 0, fmt.Errorf("clock %q: bad hour", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return 0, 0, fmt.Errorf("clock %q: bad minute", s)
	}
	return hour, minute, nil
}

// Bounds returns the working-hours instants on the window's date. An
// unparsable clock yields an empty window.
func (w Window) Bounds() (start, end time.Time) {
	y, mo, d := w.Date.Date()
	loc := w.Date.Location()
	sh, sm, err1 := ParseClock(w.Start)
	eh, em, err2 := ParseClock(w.End)
	start = time.Date(y, mo, d, sh, sm, 0, 0, loc)
	if err1 != nil || err2 != nil {
		return start, start
	}
	end = time.Date(y, mo, d, eh, em, 0, 0, loc)
	return start, end
}

func (w Window) buffer() time.Duration {
	if w.BufferMinutes < 0 {
		return 0
	}
	return time.Duration(w.BufferMinutes) * time.Minute
}
