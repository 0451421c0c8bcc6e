package domain

import "time"

// BusySlot is an externally sourced interval during which the user is
// unavailable.
type BusySlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TimeSlot is a free interval inside working hours.
type TimeSlot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"durationMinutes"`
}
