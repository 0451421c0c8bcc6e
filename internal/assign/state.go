package assign

import (
	"context"
	"slices"

	"daymark-engine/internal/domain"
)

// State is everything the engine knows about one user's job history.
type State struct {
	Assignments map[string]domain.DailyJobAssignment
	Events      []domain.JobEvent
	Seen        map[string]bool
}

func NewState() *State {
	return &State{
		Assignments: make(map[string]domain.DailyJobAssignment),
		Seen:        make(map[string]bool),
	}
}

// Repository persists engine state. Implementations must be safe for
// concurrent use; the engine serializes writes per user.
type Repository interface {
	LoadState(ctx context.Context, userID string) (*State, error)
	SaveAssignment(ctx context.Context, userID string, a domain.DailyJobAssignment) error
	DeleteAssignment(ctx context.Context, userID, date string) error
	// RecordEvent appends ev and saves a in one write. Either both land or
	// neither does.
	RecordEvent(ctx context.Context, userID string, ev domain.JobEvent, a domain.DailyJobAssignment) error
	// UpdateEvent rewrites the status, notes, interview date and update time
	// of a stored event.
	UpdateEvent(ctx context.Context, userID string, ev domain.JobEvent) error
	AddSeen(ctx context.Context, userID string, jobIDs []string) error
}

// used returns the ids ever applied to or skipped.
func (s *State) used() map[string]bool {
	out := make(map[string]bool, len(s.Events))
	for _, ev := range s.Events {
		out[ev.JobID] = true
	}
	return out
}

// assignedElsewhere returns ids on any slate other than date.
func (s *State) assignedElsewhere(date string) map[string]bool {
	out := map[string]bool{}
	for d, a := range s.Assignments {
		if d == date {
			continue
		}
		for _, id := range a.JobIDs {
			out[id] = true
		}
	}
	return out
}

// exclusions is the set of ids a new pick for date must avoid.
func (s *State) exclusions(date string) map[string]bool {
	ex := s.used()
	for id := range s.assignedElsewhere(date) {
		ex[id] = true
	}
	for id := range s.Seen {
		ex[id] = true
	}
	return ex
}

// pick returns up to n ids from ranked order that are not excluded.
func pick(ranked []domain.Job, exclude map[string]bool, n int) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, j := range ranked {
		if exclude[j.ID] {
			continue
		}
		out = append(out, j.ID)
		exclude[j.ID] = true
		if len(out) == n {
			break
		}
	}
	return out
}

func appendUnique(list []string, id string) []string {
	if slices.Contains(list, id) {
		return list
	}
	return append(list, id)
}

func remove(list []string, id string) []string {
	return slices.DeleteFunc(list, func(v string) bool { return v == id })
}
