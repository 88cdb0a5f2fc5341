// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/session"
)

const dateLayout = "2006-01-02"

// SQLite implements block.Repository and session.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var (
	_ block.Repository   = (*SQLite)(nil)
	_ session.Repository = (*SQLite)(nil)
)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// SavePlan stores blocks as the plan for date, replacing any earlier plan.
// The blocks are re-checked for overlaps before anything is written; the
// old plan is left untouched on failure.
func (s *SQLite) SavePlan(ctx context.Context, date time.Time, blocks []block.Block) error {
	for i, b := range blocks {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("block %d (%q): %w", i, b.Label, err)
		}
	}

	sorted := block.Sort(blocks)
	day := date.Format(dateLayout)
	if err := block.CheckOverlaps(day, block.Intervals(sorted)); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_blocks WHERE plan_date = ?`, day); err != nil {
		return fmt.Errorf("clearing old plan blocks: %w", err)
	}

	upsert := `
		INSERT INTO plans (plan_date, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(plan_date) DO UPDATE SET updated_at = excluded.updated_at
	`
	now := time.Now().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, upsert, day, now, now); err != nil {
		return fmt.Errorf("upserting plan: %w", err)
	}

	query := `
		INSERT INTO plan_blocks (
			plan_date, position, start_time, end_time, label, block_type, metadata
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, b := range sorted {
		meta, err := encodeMetadata(b.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for %q: %w", b.Label, err)
		}
		_, err = stmt.ExecContext(ctx,
			day,
			i,
			b.Start.String(),
			b.End.String(),
			b.Label,
			string(b.Type),
			meta,
		)
		if err != nil {
			return fmt.Errorf("inserting block %q: %w", b.Label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetPlan returns the saved plan for date ordered by start time.
func (s *SQLite) GetPlan(ctx context.Context, date time.Time) ([]block.Block, error) {
	day := date.Format(dateLayout)

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plans WHERE plan_date = ?`, day).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("querying plan: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", block.ErrPlanNotFound, day)
	}

	query := `
		SELECT start_time, end_time, label, block_type, metadata
		FROM plan_blocks
		WHERE plan_date = ?
		ORDER BY position
	`

	rows, err := s.db.QueryContext(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("querying plan blocks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	blocks := []block.Block{}
	for rows.Next() {
		var (
			b          block.Block
			start, end string
			typ, meta  string
		)
		if err := rows.Scan(&start, &end, &b.Label, &typ, &meta); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}

		if b.Start, err = block.ParseClock(start); err != nil {
			return nil, fmt.Errorf("parsing start of %q: %w", b.Label, err)
		}
		if b.End, err = block.ParseClock(end); err != nil {
			return nil, fmt.Errorf("parsing end of %q: %w", b.Label, err)
		}
		b.Type = block.Type(typ)
		if b.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("decoding metadata of %q: %w", b.Label, err)
		}

		blocks = append(blocks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating blocks: %w", err)
	}

	return blocks, nil
}

// ListPlanDates returns the dates with a saved plan within the range (inclusive).
func (s *SQLite) ListPlanDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	query := `
		SELECT plan_date
		FROM plans
		WHERE plan_date >= ? AND plan_date <= ?
		ORDER BY plan_date
	`

	rows, err := s.db.QueryContext(ctx, query, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying plans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning plan date: %w", err)
		}
		d, err := parseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing plan date: %w", err)
		}
		dates = append(dates, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}

	return dates, nil
}

// DeletePlan removes the plan for date.
func (s *SQLite) DeletePlan(ctx context.Context, date time.Time) error {
	day := date.Format(dateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM plans WHERE plan_date = ?`, day)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%w: %s", block.ErrPlanNotFound, day)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_blocks WHERE plan_date = ?`, day); err != nil {
		return fmt.Errorf("deleting plan blocks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// AddSessionLog stores a new session log.
func (s *SQLite) AddSessionLog(ctx context.Context, l *session.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO session_logs (id, log_date, label, minutes, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		l.ID,
		l.Date.Format(dateLayout),
		l.Label,
		l.Minutes,
		l.Notes,
		l.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session log: %w", err)
	}

	return nil
}

// ListSessionLogs returns logs within the date range (inclusive), oldest first.
func (s *SQLite) ListSessionLogs(ctx context.Context, start, end time.Time) ([]*session.Log, error) {
	query := `
		SELECT id, log_date, label, minutes, notes, created_at
		FROM session_logs
		WHERE log_date >= ? AND log_date <= ?
		ORDER BY log_date, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, start.Format(dateLayout), end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []*session.Log
	for rows.Next() {
		var (
			l         session.Log
			logDate   string
			createdAt string
		)
		if err := rows.Scan(&l.ID, &logDate, &l.Label, &l.Minutes, &l.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning session log: %w", err)
		}

		l.Date, err = parseDate(logDate)
		if err != nil {
			return nil, fmt.Errorf("parsing log date: %w", err)
		}
		l.CreatedAt, err = parseDate(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}

		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session logs: %w", err)
	}

	return logs, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func encodeMetadata(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMetadata(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values (midnight) are parsed in local timezone to match time.Now() behavior.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, time.Local); err == nil {
		return t, nil
	}

	// SQLite returns DATE columns as "2006-01-02T00:00:00Z" - extract date and parse as local
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' && s[11:19] == "00:00:00" {
		if t, err := time.ParseInLocation(dateLayout, s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format: " + s)
}
