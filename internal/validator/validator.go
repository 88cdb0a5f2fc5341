// Package validator checks a loaded configuration's schedule content.
//
// ValidateConfig runs once at load time and fails fast: the first violation
// is returned and nothing after it is examined.
package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
)

// ErrWakeAfterSleep reports a wake_time that is not before sleep_time.
var ErrWakeAfterSleep = errors.New("wake_time must be before sleep_time")

// ValidateConfig checks, in order:
//  1. defaults.wake_time and defaults.sleep_time are legal clock times and
//     wake_time comes first (overnight windows are not supported)
//  2. project ids are unique
//  3. every weekday key is a known day and every anchor/fixed span parses
//  4. anchor and fixed spans within each day do not overlap
//
// Errors are *block.FormatError, *block.DuplicateIDError or *block.OverlapError.
func ValidateConfig(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	wake, err := checkClock("defaults.wake_time", cfg.Defaults.WakeTime)
	if err != nil {
		return err
	}
	sleep, err := checkClock("defaults.sleep_time", cfg.Defaults.SleepTime)
	if err != nil {
		return err
	}
	if !wake.Before(sleep) {
		return &block.FormatError{
			Context: "defaults",
			Raw:     cfg.Defaults.WakeTime + block.SpanSeparator + cfg.Defaults.SleepTime,
			Err:     ErrWakeAfterSleep,
		}
	}

	if err := checkProjectIDs(cfg.Projects); err != nil {
		return err
	}

	days := cfg.ScheduleDays()
	spansByDay := make(map[string][]block.Interval, len(days))
	for _, day := range days {
		if err := checkWeekday(day); err != nil {
			return err
		}
		spans, err := DaySpans(day, cfg.WeeklySchedule[day])
		if err != nil {
			return err
		}
		spansByDay[day] = spans
	}

	for _, day := range days {
		if err := block.CheckOverlaps(day, spansByDay[day]); err != nil {
			return err
		}
	}

	return nil
}

// DaySpans parses the anchor and fixed entries of one day, in that order.
func DaySpans(day string, def config.DayDefinition) ([]block.Interval, error) {
	spans := make([]block.Interval, 0, len(def.Anchors)+len(def.Fixed))

	buckets := []struct {
		name    string
		entries []config.Entry
	}{
		{"anchors", def.Anchors},
		{"fixed", def.Fixed},
	}
	for _, b := range buckets {
		for i, e := range b.entries {
			where := fmt.Sprintf("%s %s[%d]", day, b.name, i)

			start, end, err := block.ParseSpan(e.Time)
			if err != nil {
				var fe *block.FormatError
				if errors.As(err, &fe) {
					return nil, fe.WithContext(where)
				}
				return nil, fmt.Errorf("%s: %w", where, err)
			}
			if !start.Before(end) {
				return nil, &block.FormatError{Context: where, Raw: e.Time, Err: block.ErrEndBeforeStart}
			}

			spans = append(spans, block.Interval{Start: start, End: end, Label: e.Title()})
		}
	}

	return spans, nil
}

func checkClock(field, value string) (block.Clock, error) {
	c, err := block.ParseClock(value)
	if err != nil {
		return block.Clock{}, &block.FormatError{Context: field, Raw: value, Err: block.ErrIllegalTime}
	}
	return c, nil
}

// checkWeekday rejects schedule keys that are not lowercase day names,
// listing the accepted keys in the error.
func checkWeekday(day string) error {
	if slices.Contains(config.Weekdays, day) {
		return nil
	}
	err := fmt.Errorf("%w; use one of %s", block.ErrUnknownWeekday, strings.Join(config.Weekdays, ", "))
	if lower := strings.ToLower(strings.TrimSpace(day)); slices.Contains(config.Weekdays, lower) {
		err = fmt.Errorf("%w; did you mean %q?", block.ErrUnknownWeekday, lower)
	}
	return &block.FormatError{Context: "weekly_schedule", Raw: day, Err: err}
}

func checkProjectIDs(projects []config.Project) error {
	seen := make(map[string]bool, len(projects))
	for _, p := range projects {
		if seen[p.ID] {
			return &block.DuplicateIDError{ID: p.ID}
		}
		seen[p.ID] = true
	}
	return nil
}
