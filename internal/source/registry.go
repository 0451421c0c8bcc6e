package source

import (
	"context"
	"log"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"daymark-engine/internal/domain"
)

// Order is the fixed enumeration order of sources. When two sources return
// the same listing the earlier one wins.
var Order = []domain.Source{
	domain.SourceSimplify,
	domain.SourceJSearch,
	domain.SourceRemotive,
	domain.SourceAdzuna,
	domain.SourceGreenhouse,
	domain.SourceLever,
}

// Known reports whether s is one of the sources in Order.
func Known(s domain.Source) bool {
	return slices.Contains(Order, s)
}

// Outcome reports what one source contributed to a FetchAll.
type Outcome struct {
	Source  domain.Source `json:"source"`
	Jobs    int           `json:"jobs"`
	Skipped bool          `json:"skipped,omitempty"`
	Error   string        `json:"error,omitempty"`
	Took    time.Duration `json:"took"`
}

type Result struct {
	Jobs     []domain.Job `json:"jobs"`
	Outcomes []Outcome    `json:"outcomes"`
}

// Registry dispatches to adapters by source.
type Registry struct {
	adapters map[domain.Source]Adapter
	timeout  time.Duration
}

// NewRegistry registers adapters. Adapters for unknown sources are dropped.
// timeout bounds each adapter call; zero means two minutes.
func NewRegistry(timeout time.Duration, adapters ...Adapter) *Registry {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	r := &Registry{adapters: make(map[domain.Source]Adapter), timeout: timeout}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		if !Known(a.Source()) {
			log.Printf("[source] unknown source=%q ignored", a.Source())
			continue
		}
		r.adapters[a.Source()] = a
	}
	return r
}

func (r *Registry) Get(s domain.Source) (Adapter, bool) {
	a, ok := r.adapters[s]
	return a, ok
}

// Configured lists the registered sources that are ready to fetch, in Order.
func (r *Registry) Configured() []domain.Source {
	var out []domain.Source
	for _, s := range Order {
		if a, ok := r.adapters[s]; ok && a.IsConfigured() {
			out = append(out, s)
		}
	}
	return out
}

// FetchAll calls every enabled, configured adapter concurrently and waits
// for all of them. A failing adapter is logged and contributes nothing.
// Results are merged in Order, not in enabled order or completion order,
// then deduplicated by Key.
func (r *Registry) FetchAll(ctx context.Context, enabled []domain.Source, p Params) Result {
	var sources []domain.Source
	for _, s := range Order {
		if slices.Contains(enabled, s) {
			sources = append(sources, s)
		}
	}

	batches := make([][]domain.Job, len(sources))
	outcomes := make([]Outcome, len(sources))

	var g errgroup.Group
	for i, s := range sources {
		outcomes[i].Source = s
		a, ok := r.adapters[s]
		if !ok || !a.IsConfigured() {
			outcomes[i].Skipped = true
			continue
		}

		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			start := time.Now()
			jobs, err := a.Fetch(fctx, p)
			outcomes[i].Took = time.Since(start)
			if err != nil {
				log.Printf("[source:%s] error: %v", s, err)
				outcomes[i].Error = err.Error()
				// best-effort: never cancel siblings
				return nil
			}
			batches[i] = jobs
			outcomes[i].Jobs = len(jobs)
			log.Printf("[source:%s] jobs=%d took=%s", s, len(jobs), outcomes[i].Took.Round(time.Millisecond))
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.Job
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return Result{Jobs: Dedup(merged), Outcomes: outcomes}
}
