package domain

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskSkipped    TaskStatus = "skipped"
)

type TaskCategory string

const (
	CategoryJobApplication TaskCategory = "job-application"
	CategoryWork           TaskCategory = "work"
	CategoryPersonal       TaskCategory = "personal"
	CategoryHealth         TaskCategory = "health"
	CategoryLearning       TaskCategory = "learning"
	CategoryOther          TaskCategory = "other"
)

// TimeOfDay is an advisory placement hint. The scheduler does not enforce it.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"   // 06:00-12:00
	Afternoon TimeOfDay = "afternoon" // 12:00-18:00
	Evening   TimeOfDay = "evening"   // 18:00-22:00
)

// Task is a schedulable item. StartTime, EndTime and WasAutoShifted are
// re-derived by the scheduler on every read.
type Task struct {
	ID                string       `json:"id"`
	UserID            string       `json:"-"`
	Title             string       `json:"title"`
	Description       string       `json:"description,omitempty"`
	Date              string       `json:"date"`
	Duration          int          `json:"duration"`
	PreferredTimeSlot TimeOfDay    `json:"preferredTimeSlot,omitempty"`
	StartTime         *time.Time   `json:"startTime,omitempty"`
	EndTime           *time.Time   `json:"endTime,omitempty"`
	WasAutoShifted    bool         `json:"wasAutoShifted"`
	OriginalStartTime *time.Time   `json:"originalStartTime,omitempty"`
	Category          TaskCategory `json:"category"`
	Status            TaskStatus   `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
	CompletedAt       *time.Time   `json:"completedAt,omitempty"`
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskSkipped:
		return true
	}
	return false
}

func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryJobApplication, CategoryWork, CategoryPersonal,
		CategoryHealth, CategoryLearning, CategoryOther:
		return true
	}
	return false
}

func (t TimeOfDay) Valid() bool {
	switch t {
	case "", Morning, Afternoon, Evening:
		return true
	}
	return false
}
