// Package scheduler runs named background tasks on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

type entry struct {
	id   cron.EntryID
	spec string
	job  cron.Job
}

// Scheduler wraps robfig/cron. Every task also runs once when the scheduler
// starts, and a run is skipped while the previous one is still going.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron

	mu      sync.Mutex
	entries map[string]*entry
}

func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		ctx:     ctx,
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger)),
		entries: make(map[string]*entry),
	}
}

// Add registers task under name on spec (standard five fields or a
// descriptor such as "@every 60m").
func (s *Scheduler) Add(name, spec string, task Task) error {
	run := cron.FuncJob(func() {
		start := time.Now()
		if err := task(s.ctx); err != nil {
			log.Printf("[%s] error: %v", name, err)
			return
		}
		log.Printf("[%s] done took=%s", name, time.Since(start).Round(time.Millisecond))
	})
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(run)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("task %q already added", name)
	}
	id, err := s.cron.AddJob(spec, job)
	if err != nil {
		return fmt.Errorf("cron.AddJob %s: %w", name, err)
	}
	s.entries[name] = &entry{id: id, spec: spec, job: job}
	return nil
}

// Reschedule moves name to a new spec. The same spec is a no-op.
func (s *Scheduler) Reschedule(name, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("task %q not found", name)
	}
	if e.spec == spec {
		return nil
	}
	id, err := s.cron.AddJob(spec, e.job)
	if err != nil {
		return fmt.Errorf("cron.AddJob %s: %w", name, err)
	}
	s.cron.Remove(e.id)
	e.id, e.spec = id, spec
	log.Printf("[scheduler] task=%s spec=%q", name, spec)
	return nil
}

// Next returns when name runs next, or the zero time before Start.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	e, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(e.id).Next
}

// Start runs every task once in the background and starts the cron loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	for name, e := range s.entries {
		log.Printf("[scheduler] task=%s spec=%q", name, e.spec)
		go e.job.Run()
	}
	s.mu.Unlock()
	s.cron.Start()
}

// Stop stops the cron loop and waits for running tasks or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	log.Println("[scheduler] stopped")
}
