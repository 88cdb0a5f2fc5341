package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS plans (
			plan_date  DATE PRIMARY KEY,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS plan_blocks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_date   DATE NOT NULL REFERENCES plans(plan_date),
			position    INTEGER NOT NULL,
			start_time  TEXT NOT NULL,
			end_time    TEXT NOT NULL,
			label       TEXT NOT NULL,
			block_type  TEXT NOT NULL CHECK(block_type IN ('anchor', 'fixed', 'flex')),
			metadata    TEXT NOT NULL DEFAULT '{}'
		);

		CREATE INDEX IF NOT EXISTS idx_plan_blocks_date ON plan_blocks(plan_date, position);

		CREATE TABLE IF NOT EXISTS session_logs (
			id          TEXT PRIMARY KEY,
			log_date    DATE NOT NULL,
			label       TEXT NOT NULL DEFAULT '',
			minutes     INTEGER NOT NULL CHECK(minutes > 0),
			notes       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_session_logs_date ON session_logs(log_date);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
