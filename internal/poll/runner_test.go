package poll

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"daymark-engine/internal/catalog"
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/source"
)

type fakeFetcher struct {
	jobs    []domain.Job
	block   chan struct{}
	enabled []domain.Source
	params  source.Params
}

func (f *fakeFetcher) FetchAll(ctx context.Context, enabled []domain.Source, p source.Params) source.Result {
	f.enabled, f.params = enabled, p
	if f.block != nil {
		<-f.block
	}
	return source.Result{
		Jobs:     f.jobs,
		Outcomes: []source.Outcome{{Source: domain.SourceRemotive, Jobs: len(f.jobs)}},
	}
}

type fakeStore struct {
	mu      sync.Mutex
	jobs    map[string]domain.Job
	removed int64
}

func newFakeStore() *fakeStore { return &fakeStore{jobs: map[string]domain.Job{}} }

func (s *fakeStore) UpsertJobs(_ context.Context, jobs []domain.Job) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, j := range jobs {
		if _, ok := s.jobs[j.ID]; !ok {
			added++
		}
		s.jobs[j.ID] = j
	}
	return added, nil
}

func (s *fakeStore) ListJobs(context.Context) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Job
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (s *fakeStore) CleanupOldJobs(context.Context, time.Duration, time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed > 0 {
		delete(s.jobs, "old")
	}
	return s.removed, nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Sources.Enabled = []string{"remotive", "jsearch"}
	cfg.Sources.Search.Query = "go developer"
	cfg.Sources.Search.Remote = true
	cfg.Filters.LocationsBlock = []string{"London"}
	cfg.Filters.RedFlags = []string{"clearance"}
	return cfg
}

func TestRunOnceFiltersStoresAndPublishes(t *testing.T) {
	f := &fakeFetcher{jobs: []domain.Job{
		{ID: "a", Role: "Go Engineer", Company: "Acme", Location: "Remote"},
		{ID: "b", Role: "Backend", Company: "Tea", Location: "London, UK"},
		{ID: "c", Role: "Engineer", Company: "Gov", Description: "Active Secret Clearance required"},
	}}
	st := newFakeStore()
	cat := catalog.New()
	hub := events.NewHub()
	sub := hub.Subscribe()

	r := NewRunner(st, cat, f, hub, testConfig)
	added, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	assert.Equal(t, []domain.Source{"remotive", "jsearch"}, f.enabled)
	assert.Equal(t, "go developer", f.params.Query)
	assert.True(t, f.params.Remote)
	assert.Equal(t, 1, f.params.Page)

	_, ok := cat.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, cat.Len())

	status := r.Status()
	assert.False(t, status.Running)
	assert.Equal(t, 3, status.LastFetched)
	assert.Equal(t, 2, status.LastFiltered)
	assert.Equal(t, 1, status.LastAdded)
	assert.NotEmpty(t, status.LastOkAt)
	assert.Empty(t, status.LastError)
	require.Len(t, status.Sources, 1)

	assert.Contains(t, <-sub, `"type":"jobs.updated"`)

	added, err = r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Len(t, sub, 0)
}

func TestRunOnceRejectsConcurrentRun(t *testing.T) {
	f := &fakeFetcher{block: make(chan struct{})}
	r := NewRunner(newFakeStore(), catalog.New(), f, nil, testConfig)

	require.NoError(t, r.Start(context.Background()))
	assert.True(t, r.Status().Running)
	assert.ErrorIs(t, r.Start(context.Background()), ErrRunning)
	_, err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrRunning)

	close(f.block)
	require.Eventually(t, func() bool { return !r.Status().Running }, time.Second, 5*time.Millisecond)
	_, err = r.RunOnce(context.Background())
	assert.NoError(t, err)
}

func TestRunOnceReloadsCatalogAfterCleanup(t *testing.T) {
	st := newFakeStore()
	st.jobs["old"] = domain.Job{ID: "old"}
	st.removed = 1
	cat := catalog.New()
	cat.Replace([]domain.Job{{ID: "old"}})

	f := &fakeFetcher{jobs: []domain.Job{{ID: "new", Role: "Engineer"}}}
	r := NewRunner(st, cat, f, nil, testConfig)
	_, err := r.RunOnce(context.Background())
	require.NoError(t, err)

	_, ok := cat.Get("old")
	assert.False(t, ok)
	_, ok = cat.Get("new")
	assert.True(t, ok)
	assert.Equal(t, int64(1), r.Status().LastRemoved)
}

func TestFilter(t *testing.T) {
	jobs := []domain.Job{
		{ID: "1", Location: "Austin, TX"},
		{ID: "2", Location: "Remote - India"},
		{ID: "3", Role: "Unpaid Intern"},
	}
	kept, dropped := Filter(jobs, []string{"india"}, []string{"UNPAID", ""})
	assert.Equal(t, 2, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "1", kept[0].ID)

	kept, dropped = Filter(jobs, nil, nil)
	assert.Len(t, kept, 3)
	assert.Zero(t, dropped)
}

func TestBuildRegistry(t *testing.T) {
	keyring.MockInit()
	t.Setenv("RAPIDAPI_KEY", "")
	t.Setenv("ADZUNA_APP_ID", "")
	t.Setenv("ADZUNA_APP_KEY", "")
	cfg := config.Default()
	cfg.Sources.Greenhouse.Companies = []domain.Company{{Name: "Stripe", Slug: "stripe"}}
	reg := BuildRegistry(cfg)
	for _, s := range source.Order {
		_, ok := reg.Get(s)
		assert.True(t, ok, s)
	}
	configured := reg.Configured()
	assert.Contains(t, configured, domain.SourceSimplify)
	assert.Contains(t, configured, domain.SourceGreenhouse)
	assert.NotContains(t, configured, domain.SourceLever)
	assert.NotContains(t, configured, domain.SourceJSearch)
}
