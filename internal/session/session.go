// Package session defines logged work sessions.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/google/uuid"
)

// Log records time actually spent on something during a day.
type Log struct {
	ID        string
	Date      time.Time // day the session happened; time of day is ignored
	Label     string    // free text, "Project | Task" convention applies
	Minutes   int
	Notes     string
	CreatedAt time.Time
}

// New creates a Log with a fresh random id.
func New(date time.Time, label string, minutes int, notes string) (*Log, error) {
	l := &Log{
		ID:        uuid.NewString(),
		Date:      truncateToDay(date),
		Label:     strings.TrimSpace(label),
		Minutes:   minutes,
		Notes:     strings.TrimSpace(notes),
		CreatedAt: time.Now(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks the log fields.
func (l *Log) Validate() error {
	if l.Label == "" && l.Notes == "" {
		return errors.New("session needs a label or notes")
	}
	if l.Minutes <= 0 {
		return errors.New("session minutes must be positive")
	}
	if l.Minutes > 24*60 {
		return errors.New("session cannot be longer than a day")
	}
	return nil
}

// Project returns the project part of a "Project | Task" label.
func (l *Log) Project() string {
	project, _, _ := block.SplitLabel(l.Label)
	return project
}

// Repository defines the storage interface for session logs.
type Repository interface {
	// AddSessionLog stores a new log.
	AddSessionLog(ctx context.Context, l *Log) error

	// ListSessionLogs returns logs within the date range (inclusive), oldest first.
	ListSessionLogs(ctx context.Context, start, end time.Time) ([]*Log, error)
}

// TotalMinutes sums the minutes of all logs.
func TotalMinutes(logs []*Log) int {
	total := 0
	for _, l := range logs {
		total += l.Minutes
	}
	return total
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
