// Package remotive reads the public Remotive remote-jobs API. The API asks
// clients to stay within a few requests a day, so the adapter keeps its own
// budget and returns nothing once it is spent.
package remotive

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const (
	DefaultBaseURL = "https://remotive.com"

	RequestsPerDay = 4
	MinInterval    = 30 * time.Second

	category       = "software-dev"
	defaultLimit   = 50
	maxDescription = 500
)

var jobTypes = map[string]string{
	"full_time": "Full-time",
	"part_time": "Part-time",
	"contract":  "Contract",
	"freelance": "Freelance",
}

type rawJob struct {
	ID                int    `json:"id"`
	URL               string `json:"url"`
	Title             string `json:"title"`
	CompanyName       string `json:"company_name"`
	JobType           string `json:"job_type"`
	PublicationDate   string `json:"publication_date"`
	CandidateLocation string `json:"candidate_required_location"`
	Salary            string `json:"salary"`
	Description       string `json:"description"`
}

type response struct {
	Jobs []rawJob `json:"jobs"`
}

type Adapter struct {
	baseURL string
	hc      *http.Client
	limiter *util.HostLimiter
	budget  *util.Budget
	now     func() time.Time
}

func New(baseURL string, limiter *util.HostLimiter) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      util.NewClient(),
		limiter: limiter,
		budget:  util.NewBudget(RequestsPerDay, MinInterval),
		now:     time.Now,
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceRemotive }

// IsConfigured is always true; the API needs no key.
func (a *Adapter) IsConfigured() bool { return true }

func (a *Adapter) RateLimit() (source.RateLimit, bool) {
	left, reset := a.budget.Remaining(a.now())
	return source.RateLimit{Remaining: left, Total: RequestsPerDay, ResetAt: reset.UTC()}, true
}

func (a *Adapter) Fetch(ctx context.Context, p source.Params) ([]domain.Job, error) {
	if !a.budget.Take(a.now()) {
		log.Printf("[source:remotive] request budget spent, skipping")
		return nil, nil
	}

	q := url.Values{}
	if p.Query != "" {
		q.Set("search", p.Query)
	}
	q.Set("category", category)
	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))

	var body response
	if _, err := util.GetJSON(ctx, a.hc, a.limiter, a.baseURL+"/api/remote-jobs?"+q.Encode(), nil, &body); err != nil {
		return nil, fmt.Errorf("remotive: %w", err)
	}

	fetched := a.now().UTC()
	out := make([]domain.Job, 0, len(body.Jobs))
	for _, r := range body.Jobs {
		out = append(out, normalize(r, fetched))
	}
	return out, nil
}

func normalize(r rawJob, fetched time.Time) domain.Job {
	company := r.CompanyName
	if company == "" {
		company = "Unknown Company"
	}
	role := r.Title
	if role == "" {
		role = "Unknown Role"
	}
	loc := r.CandidateLocation
	if loc == "" {
		loc = "Remote"
	}
	jobType := r.JobType
	if m, ok := jobTypes[jobType]; ok {
		jobType = m
	}

	posted := fetched.Truncate(24 * time.Hour)
	if d, err := time.Parse("2006-01-02", strings.SplitN(r.PublicationDate, "T", 2)[0]); err == nil {
		posted = d
	}

	return domain.Job{
		ID:             "remotive-" + strconv.Itoa(r.ID),
		Company:        company,
		Role:           role,
		Location:       loc,
		ApplicationURL: r.URL,
		DatePosted:     posted,
		Source:         domain.SourceRemotive,
		Salary:         r.Salary,
		Description:    util.Truncate(util.StripHTML(r.Description), maxDescription),
		EmploymentType: jobType,
		Remote:         true,
		FetchedAt:      &fetched,
	}
}
