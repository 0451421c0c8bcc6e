// Package jsearch queries the JSearch aggregator on RapidAPI.
package jsearch

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
	"daymark-engine/internal/source/util"
)

const (
	DefaultBaseURL = "https://jsearch.p.rapidapi.com"
	apiHost        = "jsearch.p.rapidapi.com"

	defaultQuery    = "software engineer intern"
	defaultLocation = "USA"
	maxDescription  = 500
)

type rawJob struct {
	JobID          string   `json:"job_id"`
	EmployerName   string   `json:"employer_name"`
	JobTitle       string   `json:"job_title"`
	City           string   `json:"job_city"`
	State          string   `json:"job_state"`
	Country        string   `json:"job_country"`
	ApplyLink      string   `json:"job_apply_link"`
	PostedAtUTC    string   `json:"job_posted_at_datetime_utc"`
	Description    string   `json:"job_description"`
	EmploymentType string   `json:"job_employment_type"`
	IsRemote       bool     `json:"job_is_remote"`
	MinSalary      *float64 `json:"job_min_salary"`
	MaxSalary      *float64 `json:"job_max_salary"`
	SalaryCurrency string   `json:"job_salary_currency"`
	SalaryPeriod   string   `json:"job_salary_period"`
}

type response struct {
	Status string   `json:"status"`
	Data   []rawJob `json:"data"`
}

type Adapter struct {
	baseURL string
	key     source.Secret
	hc      *http.Client
	limiter *util.HostLimiter
	now     func() time.Time

	mu   sync.Mutex
	rate *source.RateLimit
}

func New(baseURL string, key source.Secret, limiter *util.HostLimiter) *Adapter {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if key == nil {
		key = source.Static("")
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		hc:      util.NewClient(),
		limiter: limiter,
		now:     time.Now,
	}
}

func (a *Adapter) Source() domain.Source { return domain.SourceJSearch }

func (a *Adapter) IsConfigured() bool { return a.key() != "" }

// RateLimit reports the quota from the last response that carried one.
func (a *Adapter) RateLimit() (source.RateLimit, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rate == nil {
		return source.RateLimit{}, false
	}
	return *a.rate, true
}

func (a *Adapter) Fetch(ctx context.Context, p source.Params) ([]domain.Job, error) {
	key := a.key()
	if key == "" {
		log.Printf("[source:jsearch] api key not configured, skipping")
		return nil, nil
	}

	h := http.Header{}
	h.Set("X-RapidAPI-Key", key)
	h.Set("X-RapidAPI-Host", apiHost)

	var body response
	hdr, err := util.GetJSON(ctx, a.hc, a.limiter, a.searchURL(p), h, &body)
	a.trackRate(hdr)
	if err != nil {
		return nil, fmt.Errorf("jsearch: %w", err)
	}
	if body.Data == nil {
		log.Printf("[source:jsearch] no data status=%q", body.Status)
		return nil, nil
	}

	fetched := a.now().UTC()
	out := make([]domain.Job, 0, len(body.Data))
	for _, r := range body.Data {
		out = append(out, normalize(r, fetched))
	}
	return out, nil
}

func (a *Adapter) searchURL(p source.Params) string {
	q := url.Values{}
	query := p.Query
	if query == "" {
		query = defaultQuery
	}
	loc := p.Location
	if loc == "" {
		loc = defaultLocation
	}
	q.Set("query", query+" in "+loc)
	page := p.Page
	if page < 1 {
		page = 1
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("num_pages", "1")
	if p.DatePosted != "" {
		q.Set("date_posted", p.DatePosted)
	}
	if p.Remote {
		q.Set("remote_jobs_only", "true")
	}
	if p.EmploymentType != "" {
		q.Set("employment_types", p.EmploymentType)
	}
	return a.baseURL + "/search?" + q.Encode()
}

func (a *Adapter) trackRate(h http.Header) {
	if h == nil {
		return
	}
	remaining, err1 := strconv.Atoi(h.Get("X-Ratelimit-Requests-Remaining"))
	total, err2 := strconv.Atoi(h.Get("X-Ratelimit-Requests-Limit"))
	if err1 != nil || err2 != nil {
		return
	}
	rl := source.RateLimit{Remaining: remaining, Total: total, ResetAt: a.now().UTC()}
	if reset, err := strconv.ParseInt(h.Get("X-Ratelimit-Requests-Reset"), 10, 64); err == nil {
		rl.ResetAt = time.Unix(reset, 0).UTC()
	}
	a.mu.Lock()
	a.rate = &rl
	a.mu.Unlock()
}

func normalize(r rawJob, fetched time.Time) domain.Job {
	var parts []string
	for _, p := range []string{r.City, r.State, r.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	loc := strings.Join(parts, ", ")
	if loc == "" {
		loc = "Not specified"
	}
	company := r.EmployerName
	if company == "" {
		company = "Unknown Company"
	}
	role := r.JobTitle
	if role == "" {
		role = "Unknown Role"
	}

	posted := fetched.Truncate(24 * time.Hour)
	if t, err := time.Parse(time.RFC3339, r.PostedAtUTC); err == nil {
		posted = t.UTC().Truncate(24 * time.Hour)
	} else if t, err := time.Parse("2006-01-02", strings.SplitN(r.PostedAtUTC, "T", 2)[0]); err == nil {
		posted = t
	}

	return domain.Job{
		ID:             "jsearch-" + r.JobID,
		Company:        company,
		Role:           role,
		Location:       loc,
		ApplicationURL: r.ApplyLink,
		DatePosted:     posted,
		Source:         domain.SourceJSearch,
		Salary:         salary(r),
		Description:    util.Truncate(r.Description, maxDescription),
		EmploymentType: r.EmploymentType,
		Remote:         r.IsRemote,
		FetchedAt:      &fetched,
	}
}

func salary(r rawJob) string {
	lo, hi := positive(r.MinSalary), positive(r.MaxSalary)
	if lo == 0 && hi == 0 {
		return ""
	}
	currency := r.SalaryCurrency
	if currency == "" {
		currency = "USD"
	}
	period := strings.ToLower(r.SalaryPeriod)
	if period == "" {
		period = "year"
	}
	if lo > 0 && hi > 0 {
		return fmt.Sprintf("%s %s-%s/%s", currency, util.Thousands(lo), util.Thousands(hi), period)
	}
	return fmt.Sprintf("%s %s/%s", currency, util.Thousands(max(lo, hi)), period)
}

func positive(v *float64) int64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return int64(math.Round(*v))
}
