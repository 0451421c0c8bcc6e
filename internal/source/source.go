// Package source fans out to the job board adapters and merges what they
// return into one deduplicated list.
package source

import (
	"context"
	"strings"
	"time"

	"daymark-engine/internal/domain"
)

// Params narrows a fetch. Adapters ignore what they cannot express.
type Params struct {
	Query          string
	Location       string
	Remote         bool
	EmploymentType string // FULLTIME, PARTTIME, INTERN, CONTRACTOR
	DatePosted     string // all, today, 3days, week, month
	Page           int
	Limit          int
}

// Adapter is one job source. Each adapter owns its own credentials, rate
// limits and availability state.
type Adapter interface {
	Source() domain.Source
	// IsConfigured reports whether the adapter can be called at all.
	IsConfigured() bool
	Fetch(ctx context.Context, p Params) ([]domain.Job, error)
}

// Key is the identity used to collapse the same listing seen from several
// sources.
func Key(j domain.Job) string {
	return strings.ToLower(j.Company) + "-" + strings.ToLower(j.Role) + "-" + strings.ToLower(j.Location)
}

// Dedup keeps the first job for each Key, preserving order.
func Dedup(jobs []domain.Job) []domain.Job {
	seen := make(map[string]bool, len(jobs))
	out := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		k := Key(j)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, j)
	}
	return out
}

// Secret returns a credential at call time, so stored keys can change
// without rebuilding adapters. An empty string means unset.
type Secret func() string

// Static wraps a fixed value as a Secret.
func Static(v string) Secret { return func() string { return v } }

// RateLimit is the quota an API reported on its last response.
type RateLimit struct {
	Remaining int       `json:"remaining"`
	Total     int       `json:"total"`
	ResetAt   time.Time `json:"resetAt"`
}

// RateLimited is implemented by adapters that track an upstream quota.
type RateLimited interface {
	RateLimit() (RateLimit, bool)
}
