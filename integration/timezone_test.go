package integration

import (
	"context"
	"testing"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/dateutil"
)

func TestPlanDateSurvivesLocalTimezone(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	now := time.Now()
	today := dateutil.TruncateToDay(now)
	start, end := dateutil.WeekRange(now)
	t.Logf("today %v, week %v - %v (%v)", today, start, end, now.Location())

	b, err := block.New(block.NewClock(10, 0), block.NewClock(11, 0), "Deep work", block.TypeFlex, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.SavePlan(ctx, today, []block.Block{b}); err != nil {
		t.Fatalf("SavePlan() unexpected error: %v", err)
	}

	dates, err := repo.ListPlanDates(ctx, start, end)
	if err != nil {
		t.Fatalf("ListPlanDates() unexpected error: %v", err)
	}
	if len(dates) != 1 {
		t.Fatalf("expected 1 plan date this week, got %d", len(dates))
	}
	got := dates[0]
	if got.Year() != today.Year() || got.Month() != today.Month() || got.Day() != today.Day() {
		t.Errorf("plan date = %v, want %v", got, today)
	}
	if got.Location() != time.Local {
		t.Errorf("plan date location = %v, want Local", got.Location())
	}

	// A late-evening time on the same day resolves to the same plan.
	late := time.Date(now.Year(), now.Month(), now.Day(), 23, 30, 0, 0, time.Local)
	blocks, err := repo.GetPlan(ctx, late)
	if err != nil {
		t.Fatalf("GetPlan() unexpected error: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Label != "Deep work" {
		t.Errorf("GetPlan() = %v", blocks)
	}
}
