package summary

import (
	"context"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/dateutil"
	"github.com/S-Leuthold/echo/internal/session"
)

// WeekSummary holds one DaySummary per day of an ISO week.
type WeekSummary struct {
	Start time.Time
	End   time.Time
	Days  []*DaySummary

	TypeMinutes    map[block.Type]int
	PlannedMinutes int
	FreeMinutes    int
	LoggedMinutes  int
}

// BuildWeekSummary summarizes Monday through Sunday of the week containing weekOf.
func BuildWeekSummary(ctx context.Context, cfg *config.Config, plans block.Repository, sessions session.Repository, weekOf time.Time) (*WeekSummary, error) {
	start, end := dateutil.WeekRange(weekOf)

	days := make([]*DaySummary, 0, 7)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day, err := BuildDaySummary(ctx, cfg, plans, sessions, BuildDayOptions{Date: d})
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}

	return SummarizeWeek(start, end, days), nil
}

// SummarizeWeek totals already built day summaries.
func SummarizeWeek(start, end time.Time, days []*DaySummary) *WeekSummary {
	w := &WeekSummary{
		Start:       start,
		End:         end,
		Days:        days,
		TypeMinutes: make(map[block.Type]int, 3),
	}
	for _, d := range days {
		for typ, m := range d.TypeMinutes {
			w.TypeMinutes[typ] += m
		}
		w.PlannedMinutes += d.PlannedMinutes
		w.FreeMinutes += d.FreeMinutes
		w.LoggedMinutes += d.LoggedMinutes
	}
	return w
}
