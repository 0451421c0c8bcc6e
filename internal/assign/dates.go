package assign

import (
	"errors"
	"time"
)

const DateLayout = "2006-01-02"

var ErrBadDate = errors.New("date must be YYYY-MM-DD")

// CheckDate validates a calendar date key.
func CheckDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrBadDate
	}
	return nil
}

// Today is the date key of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DateLayout)
}
