package assign

import "sync"

// userLocks hands out one mutex per user. Every engine mutation reads the
// slates of other dates, so serializing per user is what keeps cross-day
// exclusion sound.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	mu, ok := l.m[userID]
	if !ok {
		mu = &sync.Mutex{}
		l.m[userID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu.Unlock
}
