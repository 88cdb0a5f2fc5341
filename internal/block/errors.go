package block

import (
	"errors"
	"fmt"
)

// Format failure kinds carried by FormatError.
var (
	ErrMissingSeparator = errors.New("span must join two times with an EN-DASH (–)")
	ErrSpanTokens       = errors.New("span must contain exactly two times")
	ErrIllegalTime      = errors.New("time must be a 24-hour HH:MM or HH:MM:SS value")
	ErrEndBeforeStart   = errors.New("end time must be after start time")
	ErrUnknownWeekday   = errors.New("weekday must be a lowercase English day name")
)

// Storage errors.
var (
	ErrPlanNotFound = errors.New("no plan saved for date")
)

// FormatError reports a time or span string that does not parse.
// Context names the field that failed, e.g. "tuesday fixed[0].start".
type FormatError struct {
	Context string
	Raw     string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%v (got %q)", e.Err, e.Raw)
	}
	return fmt.Sprintf("%s: %v (got %q)", e.Context, e.Err, e.Raw)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// WithContext returns a copy of e whose context is prefixed by prefix.
func (e *FormatError) WithContext(prefix string) *FormatError {
	ctx := prefix
	if e.Context != "" {
		ctx = prefix + "." + e.Context
	}
	return &FormatError{Context: ctx, Raw: e.Raw, Err: e.Err}
}

// DuplicateIDError reports a project identifier used more than once.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate project id %q", e.ID)
}

// OverlapError reports two spans on the same day that intersect.
// First is the span that started earlier.
type OverlapError struct {
	Day    string
	First  Interval
	Second Interval
}

func (e *OverlapError) Error() string {
	msg := fmt.Sprintf("%q (%s) overlaps %q (%s)",
		e.Second.Label, e.Second.Span(), e.First.Label, e.First.Span())
	if e.Day == "" {
		return msg
	}
	return e.Day + ": " + msg
}
