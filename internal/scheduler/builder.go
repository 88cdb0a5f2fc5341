// Package scheduler turns weekly configuration into concrete day schedules
// and finds the free time between them.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
)

// WeekdayName returns the lowercase English weekday of date, e.g. "monday".
func WeekdayName(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

// BuildSchedule materializes the anchors configured for date's weekday.
// Fixed and flex entries are not included; they reach a plan through the
// planning step. A weekday with no definition or no anchors yields an empty,
// non-nil slice. The result is stably sorted by start time.
func BuildSchedule(cfg *config.Config, date time.Time) ([]block.Block, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}

	day := WeekdayName(date)
	def, ok := cfg.Day(day)
	if !ok {
		return []block.Block{}, nil
	}

	blocks := make([]block.Block, 0, len(def.Anchors))
	for i, e := range def.Anchors {
		b, err := entryBlock(e, block.TypeAnchor)
		if err != nil {
			return nil, withContext(fmt.Sprintf("%s anchors[%d]", day, i), err)
		}
		blocks = append(blocks, b)
	}

	return block.Sort(blocks), nil
}

// EntryBlocks converts configured entries of the given type to blocks,
// keeping input order. Used for fixed and flex hints.
func EntryBlocks(day string, entries []config.Entry, typ block.Type) ([]block.Block, error) {
	blocks := make([]block.Block, 0, len(entries))
	for i, e := range entries {
		b, err := entryBlock(e, typ)
		if err != nil {
			return nil, withContext(fmt.Sprintf("%s %s[%d]", day, typ, i), err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func entryBlock(e config.Entry, typ block.Type) (block.Block, error) {
	start, end, err := block.ParseSpan(e.Time)
	if err != nil {
		return block.Block{}, err
	}

	recurrence := e.Recurrence
	if recurrence == "" {
		recurrence = block.DefaultRecurrence
	}
	meta := map[string]string{block.MetaRecurrence: recurrence}
	if e.Project != "" {
		meta[block.MetaProject] = e.Project
	}
	if e.Notes != "" {
		meta[block.MetaNotes] = e.Notes
	}

	return block.New(start, end, e.Title(), typ, meta)
}

func withContext(where string, err error) error {
	var fe *block.FormatError
	if errors.As(err, &fe) {
		return fe.WithContext(where)
	}
	return fmt.Errorf("%s: %w", where, err)
}
