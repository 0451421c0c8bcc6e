package assign

import (
	"context"
	"sort"
	"time"

	"daymark-engine/internal/domain"
)

// DailyView is what the dashboard shows for one date.
type DailyView struct {
	Date       string                    `json:"date"`
	Active     []domain.Job              `json:"active"`
	Completed  []domain.Job              `json:"completed"`
	Skipped    int                       `json:"skipped"`
	Remaining  int                       `json:"remaining"`
	Assignment domain.DailyJobAssignment `json:"assignment"`
}

// Daily returns date's slate, creating it when absent and the pool is not
// empty. Active jobs are re-scored with the user's current skills and capped
// at the display limit. Ids no longer in the pool are left out.
func (e *Engine) Daily(ctx context.Context, userID, date string) (DailyView, error) {
	defer e.locks.lock(userID)()

	in, err := e.load(ctx, userID)
	if err != nil {
		return DailyView{}, err
	}
	a, ok := in.state.Assignments[date]
	if !ok && len(in.jobs) > 0 {
		if a, err = e.assignLocked(ctx, userID, date, e.JobsPerDay(), in); err != nil {
			return DailyView{}, err
		}
	}
	if !ok && len(in.jobs) == 0 {
		a = e.assignmentFor(in, date)
	}

	skills, hasResume := in.profile.Skills, in.profile.HasResume()
	var active []domain.Job
	for _, id := range a.Active() {
		if j, ok := in.byID[id]; ok {
			active = append(active, e.scorer.Score(j, skills, hasResume).Job)
		}
	}
	if hasResume {
		sort.SliceStable(active, func(i, j int) bool {
			return scoreOf(active[i]) > scoreOf(active[j])
		})
	}
	remaining := len(active)
	if limit := int(e.display.Load()); len(active) > limit {
		active = active[:limit]
	}

	var completed []domain.Job
	for _, id := range a.CompletedJobIDs {
		if j, ok := in.byID[id]; ok {
			completed = append(completed, j)
		}
	}

	return DailyView{
		Date:       date,
		Active:     nonNil(active),
		Completed:  nonNil(completed),
		Skipped:    len(a.SkippedJobIDs),
		Remaining:  remaining,
		Assignment: a,
	}, nil
}

// Stats summarizes the application history as of today.
func (e *Engine) Stats(ctx context.Context, userID, today string) (domain.ApplicationStats, error) {
	st, err := e.repo.LoadState(ctx, userID)
	if err != nil {
		return domain.ApplicationStats{}, err
	}
	weekAgo := e.now().Add(-7 * 24 * time.Hour)

	s := domain.ApplicationStats{ByStatus: make(map[domain.ApplicationStatus]int, len(domain.ApplicationStatuses))}
	for _, status := range domain.ApplicationStatuses {
		s.ByStatus[status] = 0
	}
	for _, ev := range st.Events {
		if ev.Kind != domain.EventApplied {
			continue
		}
		s.TotalApplied++
		s.ByStatus[ev.CurrentStatus()]++
		if !ev.At.Before(weekAgo) {
			s.ThisWeek++
		}
	}
	if a, ok := st.Assignments[today]; ok {
		s.TodayCompleted = len(a.CompletedJobIDs)
	}
	s.TodayTotal = e.JobsPerDay()
	return s, nil
}

// History returns the user's application events, newest first.
func (e *Engine) History(ctx context.Context, userID string) ([]domain.JobEvent, error) {
	st, err := e.repo.LoadState(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := append([]domain.JobEvent(nil), st.Events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}

func scoreOf(j domain.Job) int {
	if j.MatchScore == nil {
		return -1
	}
	return *j.MatchScore
}

func nonNil(jobs []domain.Job) []domain.Job {
	if jobs == nil {
		return []domain.Job{}
	}
	return jobs
}
