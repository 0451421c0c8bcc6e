package store

import (
	"context"

	"daymark-engine/internal/domain"
)

// BusySlots returns the stored busy intervals for date, earliest first.
func (d *DB) BusySlots(ctx context.Context, userID, date string) ([]domain.BusySlot, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT start_at, end_at FROM busy_slots
WHERE user_id = ? AND date = ?
ORDER BY start_at ASC;`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.BusySlot{}
	for rows.Next() {
		var s, e string
		if err := rows.Scan(&s, &e); err != nil {
			return nil, err
		}
		out = append(out, domain.BusySlot{Start: parseTime(s), End: parseTime(e)})
	}
	return out, rows.Err()
}

// ReplaceBusySlots swaps date's busy intervals for slots.
func (d *DB) ReplaceBusySlots(ctx context.Context, userID, date string, slots []domain.BusySlot) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM busy_slots WHERE user_id = ? AND date = ?;`, userID, date); err != nil {
		return err
	}
	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, `INSERT INTO busy_slots (user_id, date, start_at, end_at) VALUES (?, ?, ?, ?);`,
			userID, date, formatTime(s.Start), formatTime(s.End)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
