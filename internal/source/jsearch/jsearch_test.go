package jsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/source"
)

const payload = `{
  "status": "OK",
  "data": [
    {
      "job_id": "abc123",
      "employer_name": "Acme",
      "job_title": "Backend Engineer",
      "job_city": "Austin",
      "job_state": "TX",
      "job_country": "US",
      "job_apply_link": "https://acme.example/apply",
      "job_posted_at_datetime_utc": "2026-10-14T08:30:00.000Z",
      "job_description": "Go, PostgreSQL and Kubernetes.",
      "job_employment_type": "FULLTIME",
      "job_is_remote": false,
      "job_min_salary": 120000,
      "job_max_salary": 150000,
      "job_salary_period": "YEAR"
    },
    {
      "job_id": "def456",
      "employer_name": "",
      "job_title": "",
      "job_is_remote": true,
      "job_max_salary": 55.5,
      "job_salary_currency": "EUR",
      "job_salary_period": "hour"
    }
  ]
}`

func TestFetch(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		w.Header().Set("X-RateLimit-Requests-Remaining", "180")
		w.Header().Set("X-RateLimit-Requests-Limit", "200")
		w.Header().Set("X-RateLimit-Requests-Reset", "1792137600")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := New(srv.URL, source.Static("k"), nil)
	a.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	jobs, err := a.Fetch(context.Background(), source.Params{Remote: true, DatePosted: "week", EmploymentType: "INTERN"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	got := <-reqs
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "k", got.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, "jsearch.p.rapidapi.com", got.Header.Get("X-RapidAPI-Host"))
	q := got.URL.Query()
	assert.Equal(t, "software engineer intern in USA", q.Get("query"))
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "1", q.Get("num_pages"))
	assert.Equal(t, "week", q.Get("date_posted"))
	assert.Equal(t, "true", q.Get("remote_jobs_only"))
	assert.Equal(t, "INTERN", q.Get("employment_types"))

	j := jobs[0]
	assert.Equal(t, "jsearch-abc123", j.ID)
	assert.Equal(t, "Acme", j.Company)
	assert.Equal(t, "Austin, TX, US", j.Location)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), j.DatePosted)
	assert.Equal(t, "USD 120,000-150,000/year", j.Salary)
	assert.Equal(t, domain.SourceJSearch, j.Source)

	k := jobs[1]
	assert.Equal(t, "Unknown Company", k.Company)
	assert.Equal(t, "Unknown Role", k.Role)
	assert.Equal(t, "Not specified", k.Location)
	assert.Equal(t, "EUR 56/hour", k.Salary)
	assert.True(t, k.Remote)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), k.DatePosted)

	rl, ok := a.RateLimit()
	require.True(t, ok)
	assert.Equal(t, 180, rl.Remaining)
	assert.Equal(t, 200, rl.Total)
	assert.Equal(t, int64(1792137600), rl.ResetAt.Unix())
}

func TestFetch_NotConfigured(t *testing.T) {
	a := New("http://127.0.0.1:1", nil, nil)
	assert.False(t, a.IsConfigured())
	jobs, err := a.Fetch(context.Background(), source.Params{})
	require.NoError(t, err)
	assert.Nil(t, jobs)
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL, source.Static("k"), nil).Fetch(context.Background(), source.Params{Query: "go developer", Location: "Denver"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestDescriptionTruncated(t *testing.T) {
	long := make([]byte, 800)
	for i := range long {
		long[i] = 'x'
	}
	j := normalize(rawJob{JobID: "1", Description: string(long)}, time.Now())
	assert.Len(t, j.Description, 500)
}
