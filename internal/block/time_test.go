package block

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Clock
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: Clock{}},
		{name: "morning", input: "09:30", want: Clock{Hour: 9, Minute: 30}},
		{name: "last minute", input: "23:59", want: Clock{Hour: 23, Minute: 59}},
		{name: "with seconds", input: "12:15:45", want: Clock{Hour: 12, Minute: 15, Second: 45}},
		{name: "hour 24", input: "24:00", wantErr: true},
		{name: "minute 60", input: "09:60", wantErr: true},
		{name: "second 60", input: "09:00:60", wantErr: true},
		{name: "single digit hour", input: "9:00", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "ab:cd", wantErr: true},
		{name: "too many parts", input: "01:02:03:04", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrIllegalTime) {
					t.Fatalf("ParseClock(%q) error = %v, want ErrIllegalTime", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClockMinutes(t *testing.T) {
	tests := []struct {
		name  string
		clock Clock
		want  int
	}{
		{name: "midnight", clock: Clock{}, want: 0},
		{name: "9am", clock: NewClock(9, 0), want: 540},
		{name: "seconds ignored", clock: Clock{Hour: 9, Minute: 30, Second: 59}, want: 570},
		{name: "11:59pm", clock: NewClock(23, 59), want: 1439},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clock.Minutes(); got != tt.want {
				t.Errorf("Minutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClockFromMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input int
		want  string
	}{
		{name: "midnight", input: 0, want: "00:00"},
		{name: "with minutes", input: 570, want: "09:30"},
		{name: "negative clamps to zero", input: -10, want: "00:00"},
		{name: "over 24h clamps", input: 1500, want: "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClockFromMinutes(tt.input).String(); got != tt.want {
				t.Errorf("ClockFromMinutes(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStart string
		wantEnd   string
		wantErr   error
	}{
		{name: "valid", input: "09:00–10:00", wantStart: "09:00", wantEnd: "10:00"},
		{name: "with seconds", input: "09:00:30–10:00", wantStart: "09:00:30", wantEnd: "10:00"},
		{name: "spaces around separator", input: "09:00 – 10:00", wantErr: ErrIllegalTime},
		{name: "trailing space", input: "09:00–10:00 ", wantErr: ErrIllegalTime},
		{name: "ascii hyphen", input: "9:00-10:00", wantErr: ErrMissingSeparator},
		{name: "ascii hyphen padded", input: "09:00-10:00", wantErr: ErrMissingSeparator},
		{name: "em dash", input: "09:00—10:00", wantErr: ErrMissingSeparator},
		{name: "illegal hour", input: "24:00–25:00", wantErr: ErrIllegalTime},
		{name: "illegal end minute", input: "09:00–10:75", wantErr: ErrIllegalTime},
		{name: "three tokens", input: "09:00–10:00–11:00", wantErr: ErrSpanTokens},
		{name: "empty", input: "", wantErr: ErrMissingSeparator},
		{name: "only separator", input: "–", wantErr: ErrIllegalTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := ParseSpan(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseSpan(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				var fe *FormatError
				if !errors.As(err, &fe) {
					t.Fatalf("ParseSpan(%q) error %T is not *FormatError", tt.input, err)
				}
				if fe.Raw != tt.input {
					t.Errorf("FormatError.Raw = %q, want %q", fe.Raw, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpan(%q) unexpected error: %v", tt.input, err)
			}
			if start.String() != tt.wantStart || end.String() != tt.wantEnd {
				t.Errorf("ParseSpan(%q) = %s, %s; want %s, %s", tt.input, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseSpan_SeparatorAndTimeErrorsDiffer(t *testing.T) {
	_, _, hyphenErr := ParseSpan("09:00-10:00")
	_, _, hourErr := ParseSpan("24:00–25:00")

	if hyphenErr == nil || hourErr == nil {
		t.Fatal("expected both spans to fail")
	}
	if hyphenErr.Error() == hourErr.Error() {
		t.Errorf("expected distinct messages, both were %q", hyphenErr.Error())
	}
	if errors.Is(hyphenErr, ErrIllegalTime) {
		t.Error("hyphen error should not be ErrIllegalTime")
	}
	if errors.Is(hourErr, ErrMissingSeparator) {
		t.Error("illegal hour error should not be ErrMissingSeparator")
	}
}

func TestParseSpan_IllegalSideIsNamed(t *testing.T) {
	_, _, err := ParseSpan("09:00–25:00")
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FormatError, got %v", err)
	}
	if fe.Context != "end" {
		t.Errorf("Context = %q, want %q", fe.Context, "end")
	}
}

func TestFormatSpan_RoundTrip(t *testing.T) {
	for m := 0; m < MinutesPerDay; m += 7 {
		start := ClockFromMinutes(m)
		end := ClockFromMinutes((m + 45) % MinutesPerDay)

		text := FormatSpan(start, end)
		gotStart, gotEnd, err := ParseSpan(text)
		if err != nil {
			t.Fatalf("ParseSpan(%q) unexpected error: %v", text, err)
		}
		if gotStart != start || gotEnd != end {
			t.Fatalf("round trip of %q = %s, %s; want %s, %s", text, gotStart, gotEnd, start, end)
		}
	}
}

func TestClockText(t *testing.T) {
	var c Clock
	if err := c.UnmarshalText([]byte("07:05")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := c.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "07:05" {
		t.Errorf("MarshalText = %q, want %q", text, "07:05")
	}
	if err := c.UnmarshalText([]byte("7:05")); err == nil {
		t.Error("expected error for single-digit hour")
	}
}

func TestOverlapMinutes(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 Clock
		want                       int
	}{
		{name: "no overlap", start1: NewClock(9, 0), end1: NewClock(10, 0), start2: NewClock(10, 0), end2: NewClock(11, 0), want: 0},
		{name: "partial", start1: NewClock(9, 0), end1: NewClock(10, 0), start2: NewClock(9, 30), end2: NewClock(11, 0), want: 30},
		{name: "contained", start1: NewClock(9, 0), end1: NewClock(12, 0), start2: NewClock(10, 0), end2: NewClock(11, 0), want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OverlapMinutes(tt.start1, tt.end1, tt.start2, tt.end2); got != tt.want {
				t.Errorf("OverlapMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}
