package util

import (
	"sync"
	"time"
)

// Budget caps calls to a fixed number per rolling day with a minimum gap
// between calls. Unlike HostLimiter it refuses instead of waiting.
type Budget struct {
	mu       sync.Mutex
	perDay   int
	interval time.Duration

	used        int
	windowStart time.Time
	last        time.Time
}

func NewBudget(perDay int, interval time.Duration) *Budget {
	return &Budget{perDay: perDay, interval: interval}
}

// Take consumes one call if the budget allows it at now.
func (b *Budget) Take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.windowStart.IsZero() || now.Sub(b.windowStart) > 24*time.Hour {
		b.used = 0
		b.windowStart = now
	}
	if b.used >= b.perDay {
		return false
	}
	if !b.last.IsZero() && now.Sub(b.last) < b.interval {
		return false
	}
	b.used++
	b.last = now
	return true
}

// Remaining reports calls left in the current window and when it resets.
func (b *Budget) Remaining(now time.Time) (int, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.windowStart.IsZero() || now.Sub(b.windowStart) > 24*time.Hour {
		return b.perDay, now.Add(24 * time.Hour)
	}
	return max(0, b.perDay-b.used), b.windowStart.Add(24 * time.Hour)
}
