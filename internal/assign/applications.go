package assign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"daymark-engine/internal/domain"
)

var (
	ErrNoApplication    = errors.New("application not found")
	ErrBadStatus        = errors.New("unknown application status")
	ErrBadInterviewDate = errors.New("interview date must be YYYY-MM-DD or RFC3339")
)

// ApplicationUpdate changes how an application is tracked after it was
// sent. Nil fields are left as they are; an empty notes or interview date
// clears it.
type ApplicationUpdate struct {
	Status        *domain.ApplicationStatus
	Notes         *string
	InterviewDate *string
}

// UpdateApplication applies u to the applied event eventID. Skip events are
// not applications and report ErrNoApplication.
func (e *Engine) UpdateApplication(ctx context.Context, userID, eventID string, u ApplicationUpdate) (domain.JobEvent, error) {
	defer e.locks.lock(userID)()

	st, err := e.repo.LoadState(ctx, userID)
	if err != nil {
		return domain.JobEvent{}, fmt.Errorf("load state: %w", err)
	}
	i := slices.IndexFunc(st.Events, func(ev domain.JobEvent) bool {
		return ev.ID == eventID && ev.Kind == domain.EventApplied
	})
	if i < 0 {
		return domain.JobEvent{}, ErrNoApplication
	}
	ev := st.Events[i]

	if u.Status != nil {
		if !u.Status.Valid() {
			return domain.JobEvent{}, ErrBadStatus
		}
		ev.Status = *u.Status
	}
	if u.Notes != nil {
		ev.Notes = strings.TrimSpace(*u.Notes)
	}
	if u.InterviewDate != nil {
		d := strings.TrimSpace(*u.InterviewDate)
		if d != "" && !validInterviewDate(d) {
			return domain.JobEvent{}, ErrBadInterviewDate
		}
		ev.InterviewDate = d
	}
	now := e.now().UTC()
	ev.UpdatedAt = &now

	if err := e.repo.UpdateEvent(ctx, userID, ev); err != nil {
		return domain.JobEvent{}, fmt.Errorf("update event: %w", err)
	}
	log.Printf("[assign] user=%s application=%s status=%s", userID, ev.ID, ev.CurrentStatus())
	return ev, nil
}

func validInterviewDate(s string) bool {
	if CheckDate(s) == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
