package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daymark-engine/internal/domain"
)

const jobColumns = `id, company, role, location, application_url, date_posted, source, salary,
  description, employment_type, remote, sponsorship, no_sponsorship, us_only, fetched_at`

// UpsertJobs inserts new jobs and refreshes known ones, keyed by id. It
// returns how many ids were new.
func (d *DB) UpsertJobs(ctx context.Context, jobs []domain.Job) (added int, err error) {
	if len(jobs) == 0 {
		return 0, nil
	}
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := tx.PrepareContext(ctx, `SELECT 1 FROM jobs WHERE id = ? LIMIT 1;`)
	if err != nil {
		return 0, err
	}
	defer exists.Close()

	upsert, err := tx.PrepareContext(ctx, `
INSERT INTO jobs (`+jobColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  company = excluded.company,
  role = excluded.role,
  location = excluded.location,
  application_url = excluded.application_url,
  date_posted = excluded.date_posted,
  salary = excluded.salary,
  description = excluded.description,
  employment_type = excluded.employment_type,
  remote = excluded.remote,
  sponsorship = excluded.sponsorship,
  no_sponsorship = excluded.no_sponsorship,
  us_only = excluded.us_only,
  fetched_at = excluded.fetched_at;`)
	if err != nil {
		return 0, err
	}
	defer upsert.Close()

	for _, j := range jobs {
		if j.ID == "" {
			continue
		}
		var one int
		switch err := exists.QueryRowContext(ctx, j.ID).Scan(&one); err {
		case nil:
		case sql.ErrNoRows:
			added++
		default:
			return 0, err
		}

		if _, err := upsert.ExecContext(ctx,
			j.ID, j.Company, j.Role, j.Location, j.ApplicationURL,
			formatTime(j.DatePosted), string(j.Source), j.Salary, j.Description, j.EmploymentType,
			boolInt(j.Remote), boolInt(j.Sponsorship), boolInt(j.NoSponsorship), boolInt(j.USOnly),
			formatTimePtr(j.FetchedAt),
		); err != nil {
			return 0, fmt.Errorf("upsert job %s: %w", j.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return added, nil
}

// ListJobs returns the whole pool, newest posting first.
func (d *DB) ListJobs(ctx context.Context) ([]domain.Job, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
ORDER BY date_posted DESC, id ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var (
			j                                  domain.Job
			src, posted, fetched               string
			remote, sponsor, noSponsor, usOnly int
		)
		if err := rows.Scan(
			&j.ID, &j.Company, &j.Role, &j.Location, &j.ApplicationURL,
			&posted, &src, &j.Salary, &j.Description, &j.EmploymentType,
			&remote, &sponsor, &noSponsor, &usOnly, &fetched,
		); err != nil {
			return nil, err
		}
		j.Source = domain.Source(src)
		j.DatePosted = parseTime(posted)
		j.FetchedAt = parseTimePtr(fetched)
		j.Remote, j.Sponsorship, j.NoSponsorship, j.USOnly = remote == 1, sponsor == 1, noSponsor == 1, usOnly == 1
		out = append(out, j)
	}
	return out, rows.Err()
}

func (d *DB) JobCount(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}

// CleanupOldJobs drops jobs posted before now minus maxAge.
func (d *DB) CleanupOldJobs(ctx context.Context, maxAge time.Duration, now time.Time) (deleted int64, err error) {
	res, err := d.Pool.ExecContext(ctx, `DELETE FROM jobs WHERE date_posted < ?;`, formatTime(now.Add(-maxAge)))
	if err != nil {
		return 0, fmt.Errorf("cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
