package assign

import (
	"context"
	"sync"

	"daymark-engine/internal/domain"
)

// MemoryRepository keeps state in process memory.
type MemoryRepository struct {
	mu    sync.Mutex
	users map[string]*State
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*State)}
}

func (m *MemoryRepository) user(id string) *State {
	s, ok := m.users[id]
	if !ok {
		s = NewState()
		m.users[id] = s
	}
	return s
}

func (m *MemoryRepository) LoadState(_ context.Context, userID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src := m.user(userID)
	out := NewState()
	for d, a := range src.Assignments {
		out.Assignments[d] = a.Clone()
	}
	out.Events = append(out.Events, src.Events...)
	for id := range src.Seen {
		out.Seen[id] = true
	}
	return out, nil
}

func (m *MemoryRepository) SaveAssignment(_ context.Context, userID string, a domain.DailyJobAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user(userID).Assignments[a.Date] = a.Clone()
	return nil
}

func (m *MemoryRepository) DeleteAssignment(_ context.Context, userID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.user(userID).Assignments, date)
	return nil
}

func (m *MemoryRepository) RecordEvent(_ context.Context, userID string, ev domain.JobEvent, a domain.DailyJobAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.user(userID)
	s.Events = append(s.Events, ev)
	s.Assignments[a.Date] = a.Clone()
	return nil
}

func (m *MemoryRepository) UpdateEvent(_ context.Context, userID string, ev domain.JobEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.user(userID)
	for i := range s.Events {
		if s.Events[i].ID == ev.ID {
			s.Events[i].Status = ev.Status
			s.Events[i].Notes = ev.Notes
			s.Events[i].InterviewDate = ev.InterviewDate
			s.Events[i].UpdatedAt = ev.UpdatedAt
			return nil
		}
	}
	return ErrNoApplication
}

func (m *MemoryRepository) AddSeen(_ context.Context, userID string, jobIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.user(userID)
	for _, id := range jobIDs {
		s.Seen[id] = true
	}
	return nil
}
