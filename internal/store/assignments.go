package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"daymark-engine/internal/assign"
	"daymark-engine/internal/domain"
)

var _ assign.Repository = (*DB)(nil)

// LoadState reads a user's assignments, events and seen set.
func (d *DB) LoadState(ctx context.Context, userID string) (*assign.State, error) {
	st := assign.NewState()

	rows, err := d.Pool.QueryContext(ctx, `
SELECT date, job_ids, completed_job_ids, skipped_job_ids
FROM daily_assignments
WHERE user_id = ?;`, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var a domain.DailyJobAssignment
		var ids, done, skipped string
		if err := rows.Scan(&a.Date, &ids, &done, &skipped); err != nil {
			rows.Close()
			return nil, err
		}
		a.JobIDs, a.CompletedJobIDs, a.SkippedJobIDs = decodeIDs(ids), decodeIDs(done), decodeIDs(skipped)
		st.Assignments[a.Date] = a
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = d.Pool.QueryContext(ctx, `
SELECT id, job_id, kind, date, status, reason, notes, interview_date, at, updated_at
FROM job_events
WHERE user_id = ?
ORDER BY at ASC, rowid ASC;`, userID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ev domain.JobEvent
		var kind, status, at, updated string
		if err := rows.Scan(&ev.ID, &ev.JobID, &kind, &ev.Date, &status, &ev.Reason, &ev.Notes, &ev.InterviewDate, &at, &updated); err != nil {
			rows.Close()
			return nil, err
		}
		ev.Kind, ev.Status, ev.At = domain.EventKind(kind), domain.ApplicationStatus(status), parseTime(at)
		ev.UpdatedAt = parseTimePtr(updated)
		st.Events = append(st.Events, ev)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = d.Pool.QueryContext(ctx, `SELECT job_id FROM seen_jobs WHERE user_id = ?;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		st.Seen[id] = true
	}
	return st, rows.Err()
}

func (d *DB) SaveAssignment(ctx context.Context, userID string, a domain.DailyJobAssignment) error {
	if err := saveAssignment(ctx, d.Pool, userID, a); err != nil {
		return fmt.Errorf("save assignment %s: %w", a.Date, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveAssignment(ctx context.Context, x execer, userID string, a domain.DailyJobAssignment) error {
	_, err := x.ExecContext(ctx, `
INSERT INTO daily_assignments (user_id, date, job_ids, completed_job_ids, skipped_job_ids)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id, date) DO UPDATE SET
  job_ids = excluded.job_ids,
  completed_job_ids = excluded.completed_job_ids,
  skipped_job_ids = excluded.skipped_job_ids;`,
		userID, a.Date, encodeIDs(a.JobIDs), encodeIDs(a.CompletedJobIDs), encodeIDs(a.SkippedJobIDs))
	return err
}

func (d *DB) DeleteAssignment(ctx context.Context, userID, date string) error {
	_, err := d.Pool.ExecContext(ctx, `DELETE FROM daily_assignments WHERE user_id = ? AND date = ?;`, userID, date)
	return err
}

// RecordEvent writes ev and the slate it changed in one transaction.
func (d *DB) RecordEvent(ctx context.Context, userID string, ev domain.JobEvent, a domain.DailyJobAssignment) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveAssignment(ctx, tx, userID, a); err != nil {
		return fmt.Errorf("save assignment %s: %w", a.Date, err)
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO job_events (id, user_id, job_id, kind, date, status, reason, notes, interview_date, at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		ev.ID, userID, ev.JobID, string(ev.Kind), ev.Date, string(ev.Status), ev.Reason,
		ev.Notes, ev.InterviewDate, formatTime(ev.At), formatTimePtr(ev.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert event %s: %w", ev.ID, err)
	}
	return tx.Commit()
}

// UpdateEvent rewrites the tracking fields of an existing event.
func (d *DB) UpdateEvent(ctx context.Context, userID string, ev domain.JobEvent) error {
	res, err := d.Pool.ExecContext(ctx, `
UPDATE job_events
SET status = ?, notes = ?, interview_date = ?, updated_at = ?
WHERE id = ? AND user_id = ?;`,
		string(ev.Status), ev.Notes, ev.InterviewDate, formatTimePtr(ev.UpdatedAt), ev.ID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) AddSeen(ctx context.Context, userID string, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, id := range jobIDs {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO seen_jobs (user_id, job_id) VALUES (?, ?);`, userID, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func encodeIDs(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func decodeIDs(s string) []string {
	out := []string{}
	_ = json.Unmarshal([]byte(s), &out)
	return out
}
