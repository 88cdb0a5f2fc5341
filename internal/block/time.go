package block

import (
	"fmt"
	"strings"
)

// SpanSeparator is the EN-DASH (U+2013) that joins the two ends of a span.
// An ASCII hyphen is not accepted.
const SpanSeparator = "–"

// MinutesPerDay is the number of minutes in a wall-clock day.
const MinutesPerDay = 24 * 60

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// NewClock returns a Clock for the given hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock{Hour: hour, Minute: minute}
}

// ClockFromMinutes converts minutes since midnight back to a Clock.
// Values outside a single day are clamped.
func ClockFromMinutes(m int) Clock {
	if m < 0 {
		m = 0
	}
	if m >= MinutesPerDay {
		m = MinutesPerDay - 1
	}
	return Clock{Hour: m / 60, Minute: m % 60}
}

// ParseClock parses "HH:MM" or "HH:MM:SS" in 24-hour form.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, &FormatError{Raw: s, Err: ErrIllegalTime}
	}

	limits := []int{23, 59, 59}
	values := make([]int, 3)
	for i, p := range parts {
		v, ok := twoDigits(p)
		if !ok || v > limits[i] {
			return Clock{}, &FormatError{Raw: s, Err: ErrIllegalTime}
		}
		values[i] = v
	}

	return Clock{Hour: values[0], Minute: values[1], Second: values[2]}, nil
}

func twoDigits(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// Minutes returns minutes since midnight. Seconds are ignored.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Before reports whether c is earlier than other at minute resolution.
func (c Clock) Before(other Clock) bool {
	return c.Minutes() < other.Minutes()
}

// String renders "HH:MM", or "HH:MM:SS" when seconds are set.
func (c Clock) String() string {
	if c.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
	}
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// MarshalText implements encoding.TextMarshaler.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseSpan parses "HH:MM–HH:MM" (EN-DASH separated, no surrounding spaces).
// A missing separator and an illegal time value fail with different sentinels.
func ParseSpan(text string) (start, end Clock, err error) {
	if !strings.Contains(text, SpanSeparator) {
		return Clock{}, Clock{}, &FormatError{Raw: text, Err: ErrMissingSeparator}
	}

	tokens := strings.Split(text, SpanSeparator)
	if len(tokens) != 2 {
		return Clock{}, Clock{}, &FormatError{Raw: text, Err: ErrSpanTokens}
	}

	start, err = ParseClock(tokens[0])
	if err != nil {
		return Clock{}, Clock{}, &FormatError{Context: "start", Raw: text, Err: ErrIllegalTime}
	}
	end, err = ParseClock(tokens[1])
	if err != nil {
		return Clock{}, Clock{}, &FormatError{Context: "end", Raw: text, Err: ErrIllegalTime}
	}

	return start, end, nil
}

// FormatSpan renders a span in the form accepted by ParseSpan.
func FormatSpan(start, end Clock) string {
	return start.String() + SpanSeparator + end.String()
}

// OverlapMinutes returns how many minutes two half-open ranges share.
func OverlapMinutes(start1, end1, start2, end2 Clock) int {
	overlapStart := max(start1.Minutes(), start2.Minutes())
	overlapEnd := min(end1.Minutes(), end2.Minutes())
	if overlapEnd <= overlapStart {
		return 0
	}
	return overlapEnd - overlapStart
}
