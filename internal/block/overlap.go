package block

import (
	"cmp"
	"slices"
)

// Interval is a labelled half-open [Start, End) span used for overlap checks.
type Interval struct {
	Start Clock
	End   Clock
	Label string
}

// Span renders the interval as "HH:MM–HH:MM".
func (i Interval) Span() string {
	return FormatSpan(i.Start, i.End)
}

// SortIntervals returns a copy of spans stably sorted by start minute.
func SortIntervals(spans []Interval) []Interval {
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, func(a, b Interval) int {
		return cmp.Compare(a.Start.Minutes(), b.Start.Minutes())
	})
	return sorted
}

// CheckOverlaps returns an *OverlapError for the first pair of spans that
// intersect, or nil. Each span is compared against the furthest end seen so
// far, so a short span nested inside an earlier, longer one is caught even
// when another span sorts between them. Touching spans do not overlap.
func CheckOverlaps(day string, spans []Interval) error {
	sorted := SortIntervals(spans)
	if len(sorted) < 2 {
		return nil
	}

	reach := sorted[0]
	for _, cur := range sorted[1:] {
		if cur.Start.Minutes() < reach.End.Minutes() {
			return &OverlapError{Day: day, First: reach, Second: cur}
		}
		if cur.End.Minutes() > reach.End.Minutes() {
			reach = cur
		}
	}
	return nil
}
