package rank

import (
	"sync"

	"daymark-engine/internal/domain"
)

const maxCacheEntries = 64

type cacheKey struct {
	jobsVersion uint64
	skills      uint64
	hasResume   bool
}

// Cache memoizes Rank by (job set version, skills fingerprint, hasResume).
// Callers must bump the job set version whenever the pool changes.
type Cache struct {
	scorer *MatchScorer

	mu      sync.Mutex
	entries map[cacheKey][]domain.Job
}

func NewCache(scorer *MatchScorer) *Cache {
	return &Cache{scorer: scorer, entries: make(map[cacheKey][]domain.Job)}
}

func (c *Cache) Scorer() *MatchScorer { return c.scorer }

// Rank returns the ranked pool. The returned slice is owned by the caller.
func (c *Cache) Rank(jobsVersion uint64, jobs []domain.Job, us domain.UserSkills, hasResume bool) []domain.Job {
	key := cacheKey{jobsVersion: jobsVersion, skills: us.Fingerprint(), hasResume: hasResume}

	c.mu.Lock()
	if hit, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return append([]domain.Job(nil), hit...)
	}
	c.mu.Unlock()

	ranked := c.scorer.Rank(jobs, us, hasResume)

	c.mu.Lock()
	for k := range c.entries {
		// older pool versions can never be hit again
		if k.jobsVersion < jobsVersion {
			delete(c.entries, k)
		}
	}
	if len(c.entries) >= maxCacheEntries {
		clear(c.entries)
	}
	c.entries[key] = ranked
	c.mu.Unlock()

	return append([]domain.Job(nil), ranked...)
}

// Len reports the number of memoized results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
