package scheduler

import (
	"fmt"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
)

// Slot is a free half-open [Start, End) range within a day.
type Slot struct {
	Start block.Clock
	End   block.Clock
}

// Minutes returns the slot length.
func (s Slot) Minutes() int {
	return s.End.Minutes() - s.Start.Minutes()
}

// String renders the slot as a span.
func (s Slot) String() string {
	return block.FormatSpan(s.Start, s.End)
}

// FreeSlots returns the gaps inside [wake, sleep) not covered by any block,
// in ascending order. Blocks may be unsorted and may extend past the window.
func FreeSlots(blocks []block.Block, wake, sleep block.Clock) []Slot {
	var slots []Slot

	cursor := wake.Minutes()
	limit := sleep.Minutes()
	for _, b := range block.Sort(blocks) {
		start, end := b.Start.Minutes(), b.End.Minutes()
		if end <= cursor {
			continue
		}
		if start >= limit {
			break
		}
		if start > cursor {
			slots = append(slots, Slot{Start: block.ClockFromMinutes(cursor), End: block.ClockFromMinutes(start)})
		}
		cursor = end
	}
	if cursor < limit {
		slots = append(slots, Slot{Start: block.ClockFromMinutes(cursor), End: block.ClockFromMinutes(limit)})
	}

	return slots
}

// FreeMinutes sums the length of all slots.
func FreeMinutes(slots []Slot) int {
	total := 0
	for _, s := range slots {
		total += s.Minutes()
	}
	return total
}

// TrimBefore drops the part of each slot that lies before from.
func TrimBefore(slots []Slot, from block.Clock) []Slot {
	var out []Slot
	for _, s := range slots {
		if s.End.Minutes() <= from.Minutes() {
			continue
		}
		if s.Start.Minutes() < from.Minutes() {
			s.Start = block.ClockFromMinutes(from.Minutes())
		}
		out = append(out, s)
	}
	return out
}

// EarliestStart returns the first clock time on date at which new work may
// begin. For today it is now rounded up to the next quarter hour, but never
// before wake; for other days it is wake.
func EarliestStart(now, date time.Time, wake block.Clock) block.Clock {
	if !sameDay(now, date) {
		return wake
	}

	rounded := roundUpTo15Min(now)
	if !sameDay(rounded, date) {
		return block.ClockFromMinutes(block.MinutesPerDay)
	}
	c := block.NewClock(rounded.Hour(), rounded.Minute())
	if c.Before(wake) {
		return wake
	}
	return c
}

// CheckWindow reports the first block that starts before wake or ends after sleep.
func CheckWindow(blocks []block.Block, wake, sleep block.Clock) error {
	for _, b := range blocks {
		if b.Start.Before(wake) || sleep.Before(b.End) {
			return fmt.Errorf("%q (%s) is outside the day window %s", b.Label, b.Span(), block.FormatSpan(wake, sleep))
		}
	}
	return nil
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
// If already on a boundary, returns the same time.
func roundUpTo15Min(t time.Time) time.Time {
	minute := t.Minute()
	remainder := minute % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Truncate(time.Minute).Add(time.Duration(15-remainder) * time.Minute)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
