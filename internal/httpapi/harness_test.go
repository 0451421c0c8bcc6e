package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/catalog"
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/poll"
	"daymark-engine/internal/rank"
	"daymark-engine/internal/source"
	"daymark-engine/internal/store"
	"daymark-engine/internal/timeshift"
)

const today = "2026-10-16"

var fixedNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

type stubFetcher struct {
	block chan struct{}
	jobs  []domain.Job
}

func (f *stubFetcher) FetchAll(context.Context, []domain.Source, source.Params) source.Result {
	if f.block != nil {
		<-f.block
	}
	return source.Result{Jobs: f.jobs}
}

type stubCalendar struct {
	slots []domain.BusySlot
	err   error
}

func (c stubCalendar) BusySlots(context.Context, string, *time.Location) ([]domain.BusySlot, error) {
	return c.slots, c.err
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	db      *store.DB
	catalog *catalog.Catalog
	hub     *events.Hub
	cfg     *atomic.Value
	cfgPath string
	fetcher *stubFetcher

	mu      sync.Mutex
	applied []config.Config
}

func sampleJobs(n int) []domain.Job {
	jobs := make([]domain.Job, n)
	for i := range jobs {
		jobs[i] = domain.Job{
			ID:             fmt.Sprintf("job-%d", i),
			Company:        fmt.Sprintf("Company %d", i),
			Role:           "Software Engineer",
			Location:       "Remote",
			ApplicationURL: fmt.Sprintf("https://example.com/%d", i),
			DatePosted:     fixedNow.AddDate(0, 0, -i),
			Source:         domain.SourceRemotive,
			Description:    "Python Django PostgreSQL",
		}
	}
	jobs[0].Role = "Data Analyst"
	jobs[0].Description = "SQL Excel"
	return jobs
}

func newHarness(t *testing.T, cal BusySource) *harness {
	t.Helper()
	ctx := context.Background()

	dir := t.TempDir()
	db, err := store.Open(filepath.Join(dir, "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, store.Migrate(db.Pool))

	_, err = db.UpsertJobs(ctx, sampleJobs(8))
	require.NoError(t, err)
	cat := catalog.New()
	require.NoError(t, cat.Load(ctx, db))

	cfg := config.Default()
	cfg.App.Timezone = "UTC"
	cfg.Polling.RetentionDays = 0
	cfgVal := &atomic.Value{}
	cfgVal.Store(cfg)

	now := func() time.Time { return fixedNow }
	scorer := rank.NewMatchScorer(rank.NewRoleTable(nil))
	ranker := rank.NewCache(scorer)
	engine := assign.New(db, cat, db, ranker, scorer, assign.Options{
		JobsPerDay: cfg.Jobs.PerDay, DisplayLimit: cfg.Jobs.DisplayLimit, Now: now,
	})
	hub := events.NewHub()
	fetcher := &stubFetcher{}
	runner := poll.NewRunner(db, cat, fetcher, hub, func() config.Config { return cfgVal.Load().(config.Config) })

	h := &harness{t: t, db: db, catalog: cat, hub: hub, cfg: cfgVal, cfgPath: filepath.Join(dir, "config.yml"), fetcher: fetcher}
	mux := NewMux(Deps{
		BaseCtx:     ctx,
		Store:       db,
		Catalog:     cat,
		Ranker:      ranker,
		Engine:      engine,
		Schedules:   timeshift.NewCache(),
		Runner:      runner,
		Calendar:    cal,
		Hub:         hub,
		CfgVal:      cfgVal,
		UserCfgPath: h.cfgPath,
		OnConfig: func(c config.Config) {
			h.mu.Lock()
			h.applied = append(h.applied, c)
			h.mu.Unlock()
		},
		Now: now,
	})
	h.srv = httptest.NewServer(Handler(mux))
	t.Cleanup(h.srv.Close)
	return h
}

// do sends body as JSON (a string is sent as is) and returns the status
// and raw response body.
func (h *harness) do(method, path string, body any) (int, []byte) {
	h.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.srv.URL+path, rd)
	require.NoError(h.t, err)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, out
}

func (h *harness) decode(method, path string, body any, wantStatus int, v any) {
	h.t.Helper()
	status, raw := h.do(method, path, body)
	require.Equal(h.t, wantStatus, status, string(raw))
	if v != nil {
		require.NoError(h.t, json.Unmarshal(raw, v), string(raw))
	}
}

func errorCode(t *testing.T, raw []byte) string {
	t.Helper()
	var e APIError
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e.Error.Code
}
