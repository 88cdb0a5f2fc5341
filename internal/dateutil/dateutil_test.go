package dateutil

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		got, err := ParseDate("2025-01-15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("empty defaults to today", func(t *testing.T) {
		got, err := ParseDate("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		today := TruncateToDay(time.Now())
		if !got.Equal(today) {
			t.Errorf("got %v, want %v", got, today)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseDate("01-15-2025")
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestParseDay(t *testing.T) {
	// Wednesday, 2025-01-15 14:30
	now := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "2025-01-15"},
		{input: "today", want: "2025-01-15"},
		{input: "TODAY", want: "2025-01-15"},
		{input: "tomorrow", want: "2025-01-16"},
		{input: "yesterday", want: "2025-01-14"},
		{input: "wednesday", want: "2025-01-15"},
		{input: "thursday", want: "2025-01-16"},
		{input: "monday", want: "2025-01-20"},
		{input: " Friday ", want: "2025-01-17"},
		{input: "next-wednesday", want: "2025-01-22"},
		{input: "next-friday", want: "2025-01-17"},
		{input: "last-wednesday", want: "2025-01-08"},
		{input: "last-monday", want: "2025-01-13"},
		{input: "last-thursday", want: "2025-01-09"},
		{input: "2025-01-20", want: "2025-01-20"},
		{input: "2024-12-31", want: "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDay(tt.input, now)
			if err != nil {
				t.Fatalf("ParseDay(%q) unexpected error: %v", tt.input, err)
			}
			if got.Format(DateLayout) != tt.want {
				t.Errorf("ParseDay(%q) = %s, want %s", tt.input, got.Format(DateLayout), tt.want)
			}
			if got.Hour() != 0 || got.Minute() != 0 {
				t.Errorf("ParseDay(%q) = %v, want midnight", tt.input, got)
			}
		})
	}
}

func TestParseDay_Errors(t *testing.T) {
	now := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	for _, input := range []string{"someday", "next-month", "last-week", "2025-13-01", "15/01/2025", "next-"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseDay(input, now); !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseDay(%q) error = %v, want ErrInvalidDateFormat", input, err)
			}
		})
	}
}

func TestNewDateRange(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("valid date range", func(t *testing.T) {
		dr, err := NewDateRange("2025-01-13", "today", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dr.Start.Format(DateLayout) != "2025-01-13" || dr.End.Format(DateLayout) != "2025-01-15" {
			t.Errorf("got %s..%s", dr.Start.Format(DateLayout), dr.End.Format(DateLayout))
		}
		if len(dr.Days()) != 3 {
			t.Errorf("Days() = %d, want 3", len(dr.Days()))
		}
	})

	t.Run("empty end defaults to start", func(t *testing.T) {
		dr, err := NewDateRange("yesterday", "", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !dr.Start.Equal(dr.End) {
			t.Errorf("start %v != end %v", dr.Start, dr.End)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := NewDateRange("2025-01-20", "2025-01-15", now)
		if !errors.Is(err, ErrEndDateBeforeStart) {
			t.Errorf("got error %v, want %v", err, ErrEndDateBeforeStart)
		}
	})

	t.Run("invalid end", func(t *testing.T) {
		_, err := NewDateRange("today", "later", now)
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("got error %v, want %v", err, ErrInvalidDateFormat)
		}
	})
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name       string
		input      time.Time
		wantMonday string
		wantSunday string
	}{
		{name: "wednesday", input: time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC), wantMonday: "2025-01-13", wantSunday: "2025-01-19"},
		{name: "monday", input: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), wantMonday: "2025-01-13", wantSunday: "2025-01-19"},
		{name: "sunday", input: time.Date(2025, 1, 19, 23, 0, 0, 0, time.UTC), wantMonday: "2025-01-13", wantSunday: "2025-01-19"},
		{name: "crosses year", input: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), wantMonday: "2024-12-30", wantSunday: "2025-01-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monday, sunday := WeekRange(tt.input)
			if monday.Format(DateLayout) != tt.wantMonday {
				t.Errorf("monday = %s, want %s", monday.Format(DateLayout), tt.wantMonday)
			}
			if sunday.Format(DateLayout) != tt.wantSunday {
				t.Errorf("sunday = %s, want %s", sunday.Format(DateLayout), tt.wantSunday)
			}
		})
	}
}

func TestTruncateToDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123, time.UTC)
	want := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	if got := TruncateToDay(input); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
