// Package assign hands out a bounded daily slate of jobs per user and keeps
// it topped up as jobs are applied to or skipped.
package assign

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"daymark-engine/internal/domain"
	"daymark-engine/internal/rank"
)

const (
	DefaultJobsPerDay   = 5
	DefaultDisplayLimit = 5
)

// Pool provides the current job pool and its version.
type Pool interface {
	Snapshot(ctx context.Context) (version uint64, jobs []domain.Job, err error)
}

// Profiles provides a user's skills.
type Profiles interface {
	Profile(ctx context.Context, userID string) (domain.Profile, error)
}

// Ranker ranks a job pool identified by version.
type Ranker interface {
	Rank(version uint64, jobs []domain.Job, us domain.UserSkills, hasResume bool) []domain.Job
}

type Options struct {
	JobsPerDay   int
	DisplayLimit int
	Now          func() time.Time
}

type Engine struct {
	repo     Repository
	pool     Pool
	profiles Profiles
	ranker   Ranker
	scorer   rank.Scorer

	perDay  atomic.Int64
	display atomic.Int64
	now     func() time.Time
	locks   userLocks
}

func New(repo Repository, pool Pool, profiles Profiles, ranker Ranker, scorer rank.Scorer, opts Options) *Engine {
	e := &Engine{
		repo:     repo,
		pool:     pool,
		profiles: profiles,
		ranker:   ranker,
		scorer:   scorer,
		now:      opts.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.SetLimits(opts.JobsPerDay, opts.DisplayLimit)
	return e
}

// SetLimits updates the daily target and display cap. Non-positive values
// fall back to the defaults.
func (e *Engine) SetLimits(jobsPerDay, displayLimit int) {
	if jobsPerDay <= 0 {
		jobsPerDay = DefaultJobsPerDay
	}
	if displayLimit <= 0 {
		displayLimit = DefaultDisplayLimit
	}
	e.perDay.Store(int64(jobsPerDay))
	e.display.Store(int64(displayLimit))
}

func (e *Engine) JobsPerDay() int { return int(e.perDay.Load()) }

// input is the snapshot an operation works on.
type input struct {
	state   *State
	version uint64
	jobs    []domain.Job
	byID    map[string]domain.Job
	profile domain.Profile
}

func (e *Engine) load(ctx context.Context, userID string) (*input, error) {
	st, err := e.repo.LoadState(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	version, jobs, err := e.pool.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("job pool: %w", err)
	}
	prof, err := e.profiles.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	byID := make(map[string]domain.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	return &input{state: st, version: version, jobs: jobs, byID: byID, profile: prof}, nil
}

func (e *Engine) ranked(in *input) []domain.Job {
	return e.ranker.Rank(in.version, in.jobs, in.profile.Skills, in.profile.HasResume())
}

// AssignForDay creates the slate for date with the top count ranked jobs not
// applied to, skipped, seen, or assigned to another date. An existing slate
// is returned unchanged; Clear is the only reset.
func (e *Engine) AssignForDay(ctx context.Context, userID, date string, count int) (domain.DailyJobAssignment, error) {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return domain.DailyJobAssignment{}, err
	}
	return e.assignLocked(ctx, userID, date, count, in)
}

func (e *Engine) assignLocked(ctx context.Context, userID, date string, count int, in *input) (domain.DailyJobAssignment, error) {
	if a, ok := in.state.Assignments[date]; ok {
		return a, nil
	}
	a := domain.DailyJobAssignment{
		Date:            date,
		JobIDs:          pick(e.ranked(in), in.state.exclusions(date), count),
		CompletedJobIDs: []string{},
		SkippedJobIDs:   []string{},
	}
	if a.JobIDs == nil {
		a.JobIDs = []string{}
	}
	if err := e.repo.SaveAssignment(ctx, userID, a); err != nil {
		return domain.DailyJobAssignment{}, fmt.Errorf("save assignment: %w", err)
	}
	in.state.Assignments[date] = a
	log.Printf("[assign] user=%s date=%s assigned=%d", userID, date, len(a.JobIDs))
	return a, nil
}

// MarkApplied records an application and marks the job completed on date.
// Unknown jobs are ignored. Applying twice on the same date is a no-op.
func (e *Engine) MarkApplied(ctx context.Context, userID, jobID, date string, status domain.ApplicationStatus) error {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := in.byID[jobID]; !ok {
		return nil
	}
	a := e.assignmentFor(in, date)
	if contains(a.CompletedJobIDs, jobID) {
		return nil
	}
	if status == "" || !status.Valid() {
		status = domain.StatusApplied
	}

	ev := domain.JobEvent{
		ID:     uuid.NewString(),
		JobID:  jobID,
		Kind:   domain.EventApplied,
		Date:   date,
		Status: status,
		At:     e.now().UTC(),
	}
	a.JobIDs = appendUnique(a.JobIDs, jobID)
	a.SkippedJobIDs = remove(a.SkippedJobIDs, jobID)
	a.CompletedJobIDs = append(a.CompletedJobIDs, jobID)
	if err := e.repo.RecordEvent(ctx, userID, ev, a); err != nil {
		return fmt.Errorf("record applied: %w", err)
	}
	return nil
}

// MarkSkipped records a skip, marks the job skipped on date and tops the
// slate back up to the daily target.
func (e *Engine) MarkSkipped(ctx context.Context, userID, jobID, date, reason string) error {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return err
	}
	if _, ok := in.byID[jobID]; !ok {
		return nil
	}
	a := e.assignmentFor(in, date)
	if contains(a.CompletedJobIDs, jobID) || contains(a.SkippedJobIDs, jobID) {
		return nil
	}

	ev := domain.JobEvent{
		ID:     uuid.NewString(),
		JobID:  jobID,
		Kind:   domain.EventSkipped,
		Date:   date,
		Reason: reason,
		At:     e.now().UTC(),
	}
	a.JobIDs = appendUnique(a.JobIDs, jobID)
	a.SkippedJobIDs = append(a.SkippedJobIDs, jobID)
	if err := e.repo.RecordEvent(ctx, userID, ev, a); err != nil {
		return fmt.Errorf("record skipped: %w", err)
	}
	in.state.Events = append(in.state.Events, ev)
	in.state.Assignments[date] = a

	_, err = e.refillLocked(ctx, userID, date, in)
	return err
}

// Refill appends ranked jobs to date's slate until the active count reaches
// the daily target. It never removes ids. It returns the number appended.
func (e *Engine) Refill(ctx context.Context, userID, date string) (int, error) {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return 0, err
	}
	return e.refillLocked(ctx, userID, date, in)
}

func (e *Engine) refillLocked(ctx context.Context, userID, date string, in *input) (int, error) {
	a, ok := in.state.Assignments[date]
	if !ok {
		return 0, nil
	}
	need := e.JobsPerDay() - len(a.Active())
	if need <= 0 {
		return 0, nil
	}

	ex := in.state.exclusions(date)
	for _, id := range a.JobIDs {
		ex[id] = true
	}
	added := pick(e.ranked(in), ex, need)
	if len(added) == 0 {
		return 0, nil
	}

	a = a.Clone()
	a.JobIDs = append(a.JobIDs, added...)
	if err := e.repo.SaveAssignment(ctx, userID, a); err != nil {
		return 0, fmt.Errorf("save assignment: %w", err)
	}
	in.state.Assignments[date] = a
	log.Printf("[assign] user=%s date=%s refill added=%d", userID, date, len(added))
	return len(added), nil
}

// RefreshForDay marks the active jobs of date as seen so they never come
// back, keeps the completed ones and fills the rest of the slate with fresh
// picks.
func (e *Engine) RefreshForDay(ctx context.Context, userID, date string) (domain.DailyJobAssignment, error) {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return domain.DailyJobAssignment{}, err
	}
	old := e.assignmentFor(in, date)

	active := old.Active()
	if len(active) > 0 {
		if err := e.repo.AddSeen(ctx, userID, active); err != nil {
			return domain.DailyJobAssignment{}, fmt.Errorf("mark seen: %w", err)
		}
		for _, id := range active {
			in.state.Seen[id] = true
		}
	}

	ex := in.state.exclusions(date)
	for _, id := range old.JobIDs {
		ex[id] = true
	}
	fresh := pick(e.ranked(in), ex, e.JobsPerDay()-len(old.CompletedJobIDs))
	return e.rebuildLocked(ctx, userID, old, fresh, "refresh")
}

// ReassignForResume replaces every non-completed job on date's slate with a
// new ranking under the user's current skills. Completed jobs stay.
func (e *Engine) ReassignForResume(ctx context.Context, userID, date string) (domain.DailyJobAssignment, error) {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return domain.DailyJobAssignment{}, err
	}
	old, ok := in.state.Assignments[date]
	if !ok {
		return e.assignLocked(ctx, userID, date, e.JobsPerDay(), in)
	}

	ex := in.state.exclusions(date)
	for _, id := range old.CompletedJobIDs {
		ex[id] = true
	}
	fresh := pick(e.ranked(in), ex, e.JobsPerDay()-len(old.CompletedJobIDs))
	return e.rebuildLocked(ctx, userID, old, fresh, "reassign")
}

func (e *Engine) rebuildLocked(ctx context.Context, userID string, old domain.DailyJobAssignment, fresh []string, op string) (domain.DailyJobAssignment, error) {
	a := domain.DailyJobAssignment{
		Date:            old.Date,
		JobIDs:          append(append([]string{}, old.CompletedJobIDs...), fresh...),
		CompletedJobIDs: append([]string{}, old.CompletedJobIDs...),
		SkippedJobIDs:   []string{},
	}
	if err := e.repo.SaveAssignment(ctx, userID, a); err != nil {
		return domain.DailyJobAssignment{}, fmt.Errorf("save assignment: %w", err)
	}
	log.Printf("[assign] user=%s date=%s %s kept=%d fresh=%d", userID, a.Date, op, len(a.CompletedJobIDs), len(fresh))
	return a, nil
}

// Clear deletes date's slate. The application history and seen set stay.
func (e *Engine) Clear(ctx context.Context, userID, date string) error {
	defer e.locks.lock(userID)()
	if err := e.repo.DeleteAssignment(ctx, userID, date); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// assignmentFor returns date's slate or an empty one when none exists yet.
func (e *Engine) assignmentFor(in *input, date string) domain.DailyJobAssignment {
	if a, ok := in.state.Assignments[date]; ok {
		return a.Clone()
	}
	return domain.DailyJobAssignment{
		Date:            date,
		JobIDs:          []string{},
		CompletedJobIDs: []string{},
		SkippedJobIDs:   []string{},
	}
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
