package domain

import "time"

// Source identifies the adapter a Job came from.
type Source string

const (
	SourceSimplify   Source = "simplify-jobs"
	SourceJSearch    Source = "jsearch"
	SourceRemotive   Source = "remotive"
	SourceAdzuna     Source = "adzuna"
	SourceGreenhouse Source = "greenhouse"
	SourceLever      Source = "lever"
)

// Job is a normalized listing. MatchScore is computed per user at read time
// and is never stored.
type Job struct {
	ID             string     `json:"id"`
	Company        string     `json:"company"`
	Role           string     `json:"role"`
	Location       string     `json:"location"`
	ApplicationURL string     `json:"applicationUrl"`
	DatePosted     time.Time  `json:"datePosted"`
	Source         Source     `json:"source"`
	Salary         string     `json:"salary,omitempty"`
	Description    string     `json:"description,omitempty"`
	EmploymentType string     `json:"employmentType,omitempty"`
	Remote         bool       `json:"remote,omitempty"`
	Sponsorship    bool       `json:"sponsorship,omitempty"`
	NoSponsorship  bool       `json:"noSponsorship,omitempty"`
	USOnly         bool       `json:"usOnly,omitempty"`
	MatchScore     *int       `json:"matchScore,omitempty"`
	FetchedAt      *time.Time `json:"fetchedAt,omitempty"`
}

// WithScore returns a copy of j carrying score.
func (j Job) WithScore(score int) Job {
	s := score
	j.MatchScore = &s
	return j
}

// WithoutScore returns a copy of j with no match score.
func (j Job) WithoutScore() Job {
	j.MatchScore = nil
	return j
}
