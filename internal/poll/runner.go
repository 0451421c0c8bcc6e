// Package poll runs the job source aggregator and folds its results into the
// store and the in-memory catalog.
package poll

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"daymark-engine/internal/catalog"
	"daymark-engine/internal/config"
	"daymark-engine/internal/domain"
	"daymark-engine/internal/events"
	"daymark-engine/internal/source"
)

var ErrRunning = errors.New("fetch already running")

type Store interface {
	UpsertJobs(ctx context.Context, jobs []domain.Job) (int, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
	CleanupOldJobs(ctx context.Context, maxAge time.Duration, now time.Time) (int64, error)
}

// Fetcher is satisfied by *source.Registry.
type Fetcher interface {
	FetchAll(ctx context.Context, enabled []domain.Source, p source.Params) source.Result
}

// Status describes the last run. Times are RFC3339.
type Status struct {
	Running        bool             `json:"running"`
	LastStartedAt  string           `json:"last_started_at,omitempty"`
	LastFinishedAt string           `json:"last_finished_at,omitempty"`
	LastOkAt       string           `json:"last_ok_at,omitempty"`
	LastFetched    int              `json:"last_fetched"`
	LastFiltered   int              `json:"last_filtered"`
	LastAdded      int              `json:"last_added"`
	LastRemoved    int64            `json:"last_removed"`
	LastError      string           `json:"last_error,omitempty"`
	Sources        []source.Outcome `json:"sources,omitempty"`
}

type Runner struct {
	store   Store
	catalog *catalog.Catalog
	fetch   Fetcher
	hub     *events.Hub
	config  func() config.Config
	now     func() time.Time

	running atomic.Bool
	status  atomic.Value // Status
}

func NewRunner(store Store, cat *catalog.Catalog, fetch Fetcher, hub *events.Hub, cfg func() config.Config) *Runner {
	r := &Runner{store: store, catalog: cat, fetch: fetch, hub: hub, config: cfg, now: time.Now}
	r.status.Store(Status{})
	return r
}

func (r *Runner) Status() Status {
	st := r.status.Load().(Status)
	st.Running = r.running.Load()
	return st
}

// RunOnce fetches, filters and stores one round of jobs and returns the
// number of new ones. It fails with ErrRunning when a run is in progress.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	if !r.running.CompareAndSwap(false, true) {
		return 0, ErrRunning
	}
	defer r.running.Store(false)
	return r.run(ctx)
}

// Start launches a run in the background. Only the claim on the running
// flag is synchronous, so a second Start fails with ErrRunning.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	go func() {
		defer r.running.Store(false)
		if _, err := r.run(ctx); err != nil {
			log.Printf("[poll] error: %v", err)
		}
	}()
	return nil
}

func (r *Runner) run(ctx context.Context) (added int, err error) {
	cfg := r.config()
	st := r.Status()
	st.LastStartedAt = r.now().Format(time.RFC3339)
	r.status.Store(st)

	defer func() {
		st.LastFinishedAt = r.now().Format(time.RFC3339)
		st.LastAdded = added
		if err != nil {
			st.LastError = err.Error()
		} else {
			st.LastError = ""
			st.LastOkAt = st.LastFinishedAt
		}
		r.status.Store(st)
	}()

	res := r.fetch.FetchAll(ctx, EnabledSources(cfg), ParamsFrom(cfg))
	st.Sources = res.Outcomes
	st.LastFetched = len(res.Jobs)

	kept, dropped := Filter(res.Jobs, cfg.Filters.LocationsBlock, cfg.Filters.RedFlags)
	st.LastFiltered = dropped

	added, err = r.store.UpsertJobs(ctx, kept)
	if err != nil {
		return 0, fmt.Errorf("upsert jobs: %w", err)
	}
	r.catalog.Merge(kept)

	if days := cfg.Polling.RetentionDays; days > 0 {
		removed, err := r.store.CleanupOldJobs(ctx, time.Duration(days)*24*time.Hour, r.now())
		if err != nil {
			return added, fmt.Errorf("cleanup jobs: %w", err)
		}
		st.LastRemoved = removed
		if removed > 0 {
			if err := r.catalog.Load(ctx, r.store); err != nil {
				return added, fmt.Errorf("reload catalog: %w", err)
			}
		}
	}

	log.Printf("[poll] ok fetched=%d filtered=%d added=%d removed=%d", len(res.Jobs), dropped, added, st.LastRemoved)
	if r.hub != nil && (added > 0 || st.LastRemoved > 0) {
		r.hub.Emit("", events.JobsUpdated, map[string]any{"added": added, "removed": st.LastRemoved})
	}
	return added, nil
}
