package assign

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daymark-engine/internal/domain"
)

func appliedEventID(t *testing.T, f *fixture, jobID string) string {
	t.Helper()
	for _, ev := range f.state(t).Events {
		if ev.JobID == jobID && ev.Kind == domain.EventApplied {
			return ev.ID
		}
	}
	t.Fatalf("no applied event for %s", jobID)
	return ""
}

func ptr[T any](v T) *T { return &v }

func TestUpdateApplication_TracksPipeline(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	require.NoError(t, f.eng.MarkApplied(ctx, user, "j0", d1, ""))
	id := appliedEventID(t, f, "j0")

	ev, err := f.eng.UpdateApplication(ctx, user, id, ApplicationUpdate{
		Status:        ptr(domain.StatusInterview),
		Notes:         ptr("  recruiter call went well "),
		InterviewDate: ptr("2026-10-21"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInterview, ev.Status)
	assert.Equal(t, "recruiter call went well", ev.Notes)
	assert.Equal(t, "2026-10-21", ev.InterviewDate)
	require.NotNil(t, ev.UpdatedAt)

	// only the status moves; notes and date stay
	ev, err = f.eng.UpdateApplication(ctx, user, id, ApplicationUpdate{Status: ptr(domain.StatusOffer)})
	require.NoError(t, err)
	assert.Equal(t, "recruiter call went well", ev.Notes)

	stored := f.state(t).Events[0]
	assert.Equal(t, domain.StatusOffer, stored.Status)
	assert.Equal(t, "2026-10-21", stored.InterviewDate)

	s, err := f.eng.Stats(ctx, user, d1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ByStatus[domain.StatusOffer])
	assert.Zero(t, s.ByStatus[domain.StatusApplied])
	assert.Equal(t, 1, s.TotalApplied)

	ev, err = f.eng.UpdateApplication(ctx, user, id, ApplicationUpdate{InterviewDate: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, ev.InterviewDate)
}

func TestUpdateApplication_Rejects(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	_, err := f.eng.AssignForDay(ctx, user, d1, 5)
	require.NoError(t, err)
	require.NoError(t, f.eng.MarkApplied(ctx, user, "j0", d1, ""))
	require.NoError(t, f.eng.MarkSkipped(ctx, user, "j1", d1, "too far"))
	applied := appliedEventID(t, f, "j0")

	var skipped string
	for _, ev := range f.state(t).Events {
		if ev.Kind == domain.EventSkipped {
			skipped = ev.ID
		}
	}
	require.NotEmpty(t, skipped)

	_, err = f.eng.UpdateApplication(ctx, user, "missing", ApplicationUpdate{Status: ptr(domain.StatusOffer)})
	assert.ErrorIs(t, err, ErrNoApplication)

	_, err = f.eng.UpdateApplication(ctx, user, skipped, ApplicationUpdate{Status: ptr(domain.StatusOffer)})
	assert.ErrorIs(t, err, ErrNoApplication)

	_, err = f.eng.UpdateApplication(ctx, user, applied, ApplicationUpdate{Status: ptr(domain.ApplicationStatus("hired"))})
	assert.ErrorIs(t, err, ErrBadStatus)

	_, err = f.eng.UpdateApplication(ctx, user, applied, ApplicationUpdate{InterviewDate: ptr("next tuesday")})
	assert.ErrorIs(t, err, ErrBadInterviewDate)

	_, err = f.eng.UpdateApplication(ctx, user, applied, ApplicationUpdate{InterviewDate: ptr("2026-10-21T15:00:00-05:00")})
	assert.NoError(t, err)

	assert.Equal(t, domain.StatusApplied, f.state(t).Events[0].CurrentStatus())
}

// failingRecorder refuses every RecordEvent.
type failingRecorder struct {
	*MemoryRepository
}

func (failingRecorder) RecordEvent(context.Context, string, domain.JobEvent, domain.DailyJobAssignment) error {
	return errors.New("disk full")
}

func TestMarkApplied_FailedWriteLeavesNoTrace(t *testing.T) {
	f := newFixture(t, 8)
	ctx := context.Background()
	_, err := f.eng.AssignForDay(ctx, user, d1, 5)
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	eng := New(failingRecorder{f.repo}, f.pool, f.profiles, f.eng.ranker, f.eng.scorer, Options{JobsPerDay: 5, Now: now})

	require.Error(t, eng.MarkApplied(ctx, user, "j0", d1, ""))
	require.Error(t, eng.MarkSkipped(ctx, user, "j1", d1, ""))

	st := f.state(t)
	assert.Empty(t, st.Events)
	assert.Empty(t, st.Assignments[d1].CompletedJobIDs)
	assert.Empty(t, st.Assignments[d1].SkippedJobIDs)
}
