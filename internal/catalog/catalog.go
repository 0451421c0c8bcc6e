// Package catalog holds the job pool in memory with a version that changes
// whenever the pool does.
package catalog

import (
	"context"
	"sync"

	"daymark-engine/internal/domain"
)

type Loader interface {
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

type Catalog struct {
	mu      sync.RWMutex
	version uint64
	jobs    []domain.Job
	index   map[string]int
}

func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Load replaces the pool with everything the loader has.
func (c *Catalog) Load(ctx context.Context, l Loader) error {
	jobs, err := l.ListJobs(ctx)
	if err != nil {
		return err
	}
	c.Replace(jobs)
	return nil
}

func (c *Catalog) Replace(jobs []domain.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jobs = make([]domain.Job, 0, len(jobs))
	c.index = make(map[string]int, len(jobs))
	for _, j := range jobs {
		if _, dup := c.index[j.ID]; dup || j.ID == "" {
			continue
		}
		c.index[j.ID] = len(c.jobs)
		c.jobs = append(c.jobs, j.WithoutScore())
	}
	c.version++
}

// Merge appends unseen jobs and refreshes known ones in place. It returns
// the number of new ids.
func (c *Catalog) Merge(jobs []domain.Job) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, j := range jobs {
		if j.ID == "" {
			continue
		}
		j = j.WithoutScore()
		if i, ok := c.index[j.ID]; ok {
			c.jobs[i] = j
			continue
		}
		c.index[j.ID] = len(c.jobs)
		c.jobs = append(c.jobs, j)
		added++
	}
	if len(jobs) > 0 {
		c.version++
	}
	return added
}

// Snapshot returns the current version and a copy of the pool.
func (c *Catalog) Snapshot(context.Context) (uint64, []domain.Job, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, append([]domain.Job(nil), c.jobs...), nil
}

func (c *Catalog) Get(id string) (domain.Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return domain.Job{}, false
	}
	return c.jobs[i], true
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.jobs)
}
