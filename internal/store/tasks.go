package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"daymark-engine/internal/domain"
)

const taskColumns = `id, user_id, title, description, date, duration, preferred_time_slot,
  start_time, end_time, category, status, created_at, updated_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (domain.Task, error) {
	var (
		t                                  domain.Task
		slot, start, end, category, status string
		created, updated, completed        string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Date, &t.Duration, &slot,
		&start, &end, &category, &status, &created, &updated, &completed); err != nil {
		return domain.Task{}, err
	}
	t.PreferredTimeSlot = domain.TimeOfDay(slot)
	t.StartTime, t.EndTime = parseTimePtr(start), parseTimePtr(end)
	t.Category, t.Status = domain.TaskCategory(category), domain.TaskStatus(status)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	t.CompletedAt = parseTimePtr(completed)
	return t, nil
}

// ListTasks returns the user's tasks for date in creation order.
func (d *DB) ListTasks(ctx context.Context, userID, date string) ([]domain.Task, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT `+taskColumns+`
FROM tasks
WHERE user_id = ? AND date = ?
ORDER BY created_at ASC, id ASC;`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (d *DB) GetTask(ctx context.Context, userID, id string) (domain.Task, error) {
	row := d.Pool.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?;`, userID, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, ErrNotFound
	}
	return t, err
}

// SaveTask inserts or replaces a task.
func (d *DB) SaveTask(ctx context.Context, t domain.Task) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO tasks (`+taskColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title = excluded.title,
  description = excluded.description,
  date = excluded.date,
  duration = excluded.duration,
  preferred_time_slot = excluded.preferred_time_slot,
  start_time = excluded.start_time,
  end_time = excluded.end_time,
  category = excluded.category,
  status = excluded.status,
  updated_at = excluded.updated_at,
  completed_at = excluded.completed_at;`,
		t.ID, t.UserID, t.Title, t.Description, t.Date, t.Duration, string(t.PreferredTimeSlot),
		formatTimePtr(t.StartTime), formatTimePtr(t.EndTime), string(t.Category), string(t.Status),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), formatTimePtr(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("save task %s: %w", t.ID, err)
	}
	return nil
}

func (d *DB) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?;`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
