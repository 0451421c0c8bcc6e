package domain

import (
	"slices"
	"time"
)

// DailyJobAssignment is the slate of jobs handed to a user on one date.
// CompletedJobIDs and SkippedJobIDs are disjoint subsets of JobIDs.
type DailyJobAssignment struct {
	Date            string   `json:"date"`
	JobIDs          []string `json:"jobIds"`
	CompletedJobIDs []string `json:"completedJobIds"`
	SkippedJobIDs   []string `json:"skippedJobIds"`
}

// Active returns the job ids neither completed nor skipped, in slate order.
func (a DailyJobAssignment) Active() []string {
	out := make([]string, 0, len(a.JobIDs))
	for _, id := range a.JobIDs {
		if slices.Contains(a.CompletedJobIDs, id) || slices.Contains(a.SkippedJobIDs, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Clone returns a deep copy.
func (a DailyJobAssignment) Clone() DailyJobAssignment {
	return DailyJobAssignment{
		Date:            a.Date,
		JobIDs:          slices.Clone(a.JobIDs),
		CompletedJobIDs: slices.Clone(a.CompletedJobIDs),
		SkippedJobIDs:   slices.Clone(a.SkippedJobIDs),
	}
}

type EventKind string

const (
	EventApplied EventKind = "applied"
	EventSkipped EventKind = "skipped"
)

// ApplicationStatus tracks what happened after an application was sent.
type ApplicationStatus string

const (
	StatusApplied    ApplicationStatus = "applied"
	StatusInterview  ApplicationStatus = "interview"
	StatusOffer      ApplicationStatus = "offer"
	StatusRejected   ApplicationStatus = "rejected"
	StatusGhosted    ApplicationStatus = "ghosted"
	StatusWithdrawn  ApplicationStatus = "withdrawn"
	StatusNotApplied ApplicationStatus = "not_applied"
)

// ApplicationStatuses lists every status in pipeline order.
var ApplicationStatuses = []ApplicationStatus{
	StatusApplied, StatusInterview, StatusOffer, StatusRejected,
	StatusGhosted, StatusWithdrawn, StatusNotApplied,
}

func (s ApplicationStatus) Valid() bool {
	return slices.Contains(ApplicationStatuses, s)
}

// JobEvent is one entry of the global application history. Applied events
// keep tracking the application afterwards: status, notes and interview
// date change over time.
type JobEvent struct {
	ID            string            `json:"id"`
	JobID         string            `json:"jobId"`
	Kind          EventKind         `json:"kind"`
	Date          string            `json:"date"`
	Status        ApplicationStatus `json:"status,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Notes         string            `json:"notes,omitempty"`
	InterviewDate string            `json:"interviewDate,omitempty"`
	At            time.Time         `json:"at"`
	UpdatedAt     *time.Time        `json:"updatedAt,omitempty"`
}

// CurrentStatus is the status of an applied event, applied when unset.
func (e JobEvent) CurrentStatus() ApplicationStatus {
	if e.Status == "" {
		return StatusApplied
	}
	return e.Status
}

// ApplicationStats summarizes the history for the dashboard. ByStatus has
// a key for every status.
type ApplicationStats struct {
	TotalApplied   int                       `json:"totalApplied"`
	ThisWeek       int                       `json:"thisWeek"`
	TodayCompleted int                       `json:"todayCompleted"`
	TodayTotal     int                       `json:"todayTotal"`
	ByStatus       map[ApplicationStatus]int `json:"byStatus"`
}
