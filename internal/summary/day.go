// Package summary reshapes plans and session logs into per-day and per-week totals.
package summary

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/llm"
	"github.com/S-Leuthold/echo/internal/planner"
	"github.com/S-Leuthold/echo/internal/scheduler"
	"github.com/S-Leuthold/echo/internal/session"
)

// NoProject groups time whose label carries no project.
const NoProject = "(no project)"

// ProjectMinutes is the time attributed to one project.
type ProjectMinutes struct {
	Project string
	Minutes int
}

// DaySummary holds aggregated data for one day and an optional review.
type DaySummary struct {
	Date   time.Time
	Blocks []block.Block

	// Saved is false when no plan was saved and Blocks are the configured
	// anchors and fixed entries.
	Saved bool

	TypeMinutes    map[block.Type]int
	Projects       []ProjectMinutes
	PlannedMinutes int
	FreeMinutes    int

	Logs           []*session.Log
	LoggedMinutes  int
	LoggedProjects []ProjectMinutes

	Review string
}

// SummarizeDay aggregates blocks and logs for date. Free time is measured
// inside [wake, sleep).
func SummarizeDay(date time.Time, blocks []block.Block, logs []*session.Log, wake, sleep block.Clock) *DaySummary {
	s := &DaySummary{
		Date:        date,
		Blocks:      block.Sort(blocks),
		TypeMinutes: make(map[block.Type]int, 3),
		Logs:        logs,
	}

	planned := make(map[string]int)
	for _, b := range s.Blocks {
		s.TypeMinutes[b.Type] += b.Duration()
		s.PlannedMinutes += b.Duration()
		planned[orNoProject(b.Project())] += b.Duration()
	}
	s.Projects = sortedProjects(planned)
	s.FreeMinutes = scheduler.FreeMinutes(scheduler.FreeSlots(s.Blocks, wake, sleep))

	logged := make(map[string]int)
	for _, l := range logs {
		logged[orNoProject(l.Project())] += l.Minutes
	}
	s.LoggedMinutes = session.TotalMinutes(logs)
	s.LoggedProjects = sortedProjects(logged)

	return s
}

// BuildDayOptions configures the repository-backed day summary.
type BuildDayOptions struct {
	Date          time.Time
	IncludeReview bool

	// Client reviews the day. When nil and IncludeReview is set, a client is
	// created from the llm config section.
	Client llm.Client
}

// BuildDaySummary loads the saved plan and session logs for opts.Date. Days
// without a saved plan fall back to the configured anchors and fixed entries.
func BuildDaySummary(ctx context.Context, cfg *config.Config, plans block.Repository, sessions session.Repository, opts BuildDayOptions) (*DaySummary, error) {
	wake, err := block.ParseClock(cfg.Defaults.WakeTime)
	if err != nil {
		return nil, fmt.Errorf("wake_time: %w", err)
	}
	sleep, err := block.ParseClock(cfg.Defaults.SleepTime)
	if err != nil {
		return nil, fmt.Errorf("sleep_time: %w", err)
	}

	blocks, saved, err := loadBlocks(ctx, cfg, plans, opts.Date)
	if err != nil {
		return nil, err
	}

	var logs []*session.Log
	if sessions != nil {
		logs, err = sessions.ListSessionLogs(ctx, opts.Date, opts.Date)
		if err != nil {
			return nil, fmt.Errorf("fetching session logs: %w", err)
		}
	}

	s := SummarizeDay(opts.Date, blocks, logs, wake, sleep)
	s.Saved = saved

	if opts.IncludeReview && (len(s.Blocks) > 0 || len(logs) > 0) {
		client := opts.Client
		if client == nil {
			if cfg.LLM.Model == "" {
				return nil, errors.New("model is required for review")
			}
			client, err = llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL)
			if err != nil {
				return nil, fmt.Errorf("creating LLM client: %w", err)
			}
		}

		review, err := llm.NewEvaluator(client).EvaluateDay(ctx, opts.Date, s.Blocks, logs)
		if err != nil {
			return nil, fmt.Errorf("reviewing day: %w", err)
		}
		s.Review = review
	}

	return s, nil
}

func loadBlocks(ctx context.Context, cfg *config.Config, plans block.Repository, date time.Time) ([]block.Block, bool, error) {
	if plans != nil {
		blocks, err := plans.GetPlan(ctx, date)
		if err == nil {
			return blocks, true, nil
		}
		if !errors.Is(err, block.ErrPlanNotFound) {
			return nil, false, fmt.Errorf("fetching plan: %w", err)
		}
	}

	blocks, err := planner.FixedBlocks(cfg, date)
	if err != nil {
		return nil, false, fmt.Errorf("building schedule: %w", err)
	}
	return blocks, false, nil
}

func orNoProject(p string) string {
	if p == "" {
		return NoProject
	}
	return p
}

// sortedProjects orders projects by minutes, largest first, then by name.
func sortedProjects(minutes map[string]int) []ProjectMinutes {
	out := make([]ProjectMinutes, 0, len(minutes))
	for p, m := range minutes {
		out = append(out, ProjectMinutes{Project: p, Minutes: m})
	}
	slices.SortFunc(out, func(a, b ProjectMinutes) int {
		if c := cmp.Compare(b.Minutes, a.Minutes); c != 0 {
			return c
		}
		return cmp.Compare(a.Project, b.Project)
	})
	return out
}
