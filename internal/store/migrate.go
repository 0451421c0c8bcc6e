package store

import (
	"database/sql"
	"fmt"
)

// migrations[i] moves the schema from user_version i to i+1.
var migrations = []func(tx *sql.Tx) error{
	migrateV1,
	migrateV2,
	migrateV3,
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= len(migrations) {
		return tx.Commit()
	}

	for i := v; i < len(migrations); i++ {
		if err := migrations[i](tx); err != nil {
			return fmt.Errorf("migrate v%d: %w", i+1, err)
		}
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, len(migrations))); err != nil {
		return err
	}
	return tx.Commit()
}

func migrateV1(tx *sql.Tx) error {
	stmts := []string{`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  application_url TEXT NOT NULL DEFAULT '',
  date_posted TEXT NOT NULL,
  source TEXT NOT NULL,
  salary TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  employment_type TEXT NOT NULL DEFAULT '',
  remote INTEGER NOT NULL DEFAULT 0,
  sponsorship INTEGER NOT NULL DEFAULT 0,
  no_sponsorship INTEGER NOT NULL DEFAULT 0,
  us_only INTEGER NOT NULL DEFAULT 0,
  fetched_at TEXT NOT NULL DEFAULT ''
);`, `
CREATE INDEX IF NOT EXISTS idx_jobs_date_posted ON jobs(date_posted);`, `
CREATE TABLE IF NOT EXISTS daily_assignments (
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
  job_ids TEXT NOT NULL DEFAULT '[]',
  completed_job_ids TEXT NOT NULL DEFAULT '[]',
  skipped_job_ids TEXT NOT NULL DEFAULT '[]',
  PRIMARY KEY (user_id, date)
);`, `
CREATE TABLE IF NOT EXISTS job_events (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  job_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  date TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT '',
  at TEXT NOT NULL
);`, `
CREATE INDEX IF NOT EXISTS idx_job_events_user ON job_events(user_id, at);`, `
CREATE TABLE IF NOT EXISTS seen_jobs (
  user_id TEXT NOT NULL,
  job_id TEXT NOT NULL,
  PRIMARY KEY (user_id, job_id)
);`, `
CREATE TABLE IF NOT EXISTS profiles (
  user_id TEXT PRIMARY KEY,
  skills TEXT NOT NULL DEFAULT '{}',
  resume_file_name TEXT NOT NULL DEFAULT '',
  resume_uploaded_at TEXT NOT NULL DEFAULT ''
);`, `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  date TEXT NOT NULL,
  duration INTEGER NOT NULL DEFAULT 0,
  preferred_time_slot TEXT NOT NULL DEFAULT '',
  start_time TEXT NOT NULL DEFAULT '',
  end_time TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'other',
  status TEXT NOT NULL DEFAULT 'pending',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date);`, `
CREATE TABLE IF NOT EXISTS busy_slots (
  user_id TEXT NOT NULL,
  date TEXT NOT NULL,
  start_at TEXT NOT NULL,
  end_at TEXT NOT NULL
);`, `
CREATE INDEX IF NOT EXISTS idx_busy_slots_user_date ON busy_slots(user_id, date);`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// migrateV2 adds task completion time.
func migrateV2(tx *sql.Tx) error {
	if columnExists(tx, "tasks", "completed_at") {
		return nil
	}
	_, err := tx.Exec(`ALTER TABLE tasks ADD COLUMN completed_at TEXT NOT NULL DEFAULT '';`)
	return err
}

// migrateV3 adds application tracking to job events.
func migrateV3(tx *sql.Tx) error {
	for _, col := range []string{"notes", "interview_date", "updated_at"} {
		if columnExists(tx, "job_events", col) {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE job_events ADD COLUMN %s TEXT NOT NULL DEFAULT '';`, col)); err != nil {
			return err
		}
	}
	return nil
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
