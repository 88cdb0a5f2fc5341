// Package planner builds day plans: it merges fixed blocks with proposed flex
// blocks and drives the LLM through validation retries.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/llm"
	"github.com/S-Leuthold/echo/internal/logger"
	"github.com/S-Leuthold/echo/internal/scheduler"
)

// DefaultMaxRetries is the number of corrective rounds after the first attempt.
const DefaultMaxRetries = 3

// historyDays is how far back saved plans are offered to the LLM as history.
const historyDays = 14

var (
	// ErrNoSession is returned by ContinuePlanning before Plan was called.
	ErrNoSession = errors.New("no active planning session")

	// ErrUnresolved is returned by Save when the result still has validation errors.
	ErrUnresolved = errors.New("cannot save: plan has validation errors")
)

// Planner orchestrates day planning using the LLM, the configuration and the
// plan repository.
type Planner struct {
	llmClient llm.Client
	repo      block.Repository
	config    *config.Config
	now       func() time.Time

	// Conversation state for interactive planning
	messages     []llm.Message
	lastResponse *llm.PlanResponse
	day          *dayContext
}

// dayContext is everything fixed about the day being planned.
type dayContext struct {
	date     time.Time
	wake     block.Clock
	sleep    block.Clock
	earliest block.Clock
	fixed    []block.Block
	slots    []scheduler.Slot
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the current time source.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New creates a new Planner with the given dependencies.
// repo may be nil, in which case no history is offered and Save fails.
func New(client llm.Client, cfg *config.Config, repo block.Repository, opts ...Option) *Planner {
	p := &Planner{
		llmClient: client,
		repo:      repo,
		config:    cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanRequest contains the input for planning.
type PlanRequest struct {
	Input string    // natural language description of the day's work
	Date  time.Time // day to plan
}

// PlanResult contains the result of a planning operation.
type PlanResult struct {
	Date time.Time

	// Blocks is the merged, ordered plan. Nil when ValidationErrors is set.
	Blocks []block.Block

	// Fixed holds the anchors and fixed blocks the plan was built around.
	Fixed []block.Block

	// Proposed holds the flex blocks from the last LLM response that parsed.
	Proposed []block.Block

	// LLM metadata
	Warnings    []string
	Suggestions []string

	// Validation info (populated if retries exhausted)
	ValidationErrors []string

	// Context for display
	EarliestStart block.Clock
	FreeMinutes   int
	Attempts      int
}

// HasValidationErrors returns true if there are unresolved validation errors.
func (r *PlanResult) HasValidationErrors() bool {
	return len(r.ValidationErrors) > 0
}

// FixedBlocks returns the anchors and fixed entries configured for date,
// merged and ordered. A weekday with nothing configured yields no blocks.
func FixedBlocks(cfg *config.Config, date time.Time) ([]block.Block, error) {
	anchors, err := scheduler.BuildSchedule(cfg, date)
	if err != nil {
		return nil, err
	}

	day := scheduler.WeekdayName(date)
	def, _ := cfg.Day(day)
	fixed, err := scheduler.EntryBlocks(day, def.Fixed, block.TypeFixed)
	if err != nil {
		return nil, err
	}

	merged, err := MergePlan(anchors, fixed)
	if err != nil {
		var oe *block.OverlapError
		if errors.As(err, &oe) {
			oe.Day = day
		}
		return nil, err
	}
	return merged, nil
}

// Plan asks the LLM for flex blocks for req.Date, validating each response
// and feeding errors back for up to maxRetries further attempts. When the
// retries are exhausted the result carries ValidationErrors and no Blocks.
func (p *Planner) Plan(ctx context.Context, req PlanRequest, maxRetries int) (*PlanResult, error) {
	day, err := p.prepareDay(req.Date)
	if err != nil {
		return nil, err
	}
	p.day = day

	recent, err := p.fetchRecentBlocks(ctx, req.Date)
	if err != nil {
		return nil, fmt.Errorf("fetching recent plans: %w", err)
	}

	hints, err := p.flexHints(req.Date)
	if err != nil {
		return nil, err
	}

	llmReq := llm.PlanRequest{
		Input:            req.Input,
		Date:             req.Date,
		Now:              p.now(),
		WakeTime:         day.wake.String(),
		SleepTime:        day.sleep.String(),
		EarliestStart:    day.earliest.String(),
		Fixed:            llm.ExistingBlocks(req.Date, day.fixed),
		FreeSlots:        slotStrings(day.slots),
		Hints:            llm.ExistingBlocks(req.Date, hints),
		Projects:         p.activeProjects(),
		RecentBlocks:     recent,
		UseCompactPrompt: llm.IsLocal(p.config.LLM.Provider),
	}

	llmPlanner := llm.NewPlanner(p.llmClient)
	p.messages = llmPlanner.BuildInitialMessages(llmReq)
	p.messages = append(p.messages, llm.Message{Role: llm.RoleUser, Content: req.Input})
	p.lastResponse = nil

	logger.Info("planning day", "date", req.Date.Format("2006-01-02"), "fixed", len(day.fixed), "free_minutes", scheduler.FreeMinutes(day.slots))

	return p.runLoop(ctx, llmPlanner, maxRetries)
}

// ContinuePlanning adds user feedback to the conversation and replans.
// Used when the user wants to modify the proposal.
func (p *Planner) ContinuePlanning(ctx context.Context, feedback string, maxRetries int) (*PlanResult, error) {
	if len(p.messages) == 0 || p.day == nil {
		return nil, ErrNoSession
	}

	// Add previous response to context if we have one
	if p.lastResponse != nil {
		p.messages = append(p.messages, llm.Message{
			Role:    llm.RoleAssistant,
			Content: responseJSON(p.lastResponse),
		})
	}

	p.messages = append(p.messages, llm.Message{
		Role:    llm.RoleUser,
		Content: feedback,
	})

	logger.Info("continuing plan", "date", p.day.date.Format("2006-01-02"))

	return p.runLoop(ctx, llm.NewPlanner(p.llmClient), maxRetries)
}

func (p *Planner) runLoop(ctx context.Context, llmPlanner *llm.Planner, maxRetries int) (*PlanResult, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	var (
		lastErrors   []string
		lastProposed []block.Block
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := llmPlanner.PlanWithMessages(ctx, p.messages)
		if err != nil {
			return nil, fmt.Errorf("LLM planning (attempt %d): %w", attempt+1, err)
		}
		p.lastResponse = resp

		proposed, merged, errs := p.check(resp)
		if proposed != nil {
			lastProposed = proposed
		}
		if len(errs) == 0 {
			logger.Info("plan accepted", "attempt", attempt+1, "blocks", len(merged))
			result := p.buildResult(resp, proposed, attempt+1, nil)
			result.Blocks = merged
			return result, nil
		}

		lastErrors = errs
		logger.Warn("plan rejected", "attempt", attempt+1, "errors", strings.Join(errs, "; "))

		// Validation failed - append error feedback for retry
		if attempt < maxRetries {
			p.messages = append(p.messages,
				llm.Message{Role: llm.RoleAssistant, Content: responseJSON(resp)},
				llm.Message{Role: llm.RoleUser, Content: formatErrors(errs)},
			)
		}
	}

	logger.Error("plan retries exhausted", "attempts", maxRetries+1)
	return p.buildResult(p.lastResponse, lastProposed, maxRetries+1, lastErrors), nil
}

// check validates a response against the day. It returns the parsed flex
// blocks (nil if they did not parse), the merged plan and any problems.
func (p *Planner) check(resp *llm.PlanResponse) ([]block.Block, []block.Block, []string) {
	proposed, err := resp.ToBlocks()
	if err != nil {
		return nil, nil, []string{err.Error()}
	}

	var errs []string
	if err := scheduler.CheckWindow(proposed, p.day.wake, p.day.sleep); err != nil {
		errs = append(errs, err.Error())
	}
	for _, b := range proposed {
		if b.Start.Before(p.day.earliest) {
			errs = append(errs, fmt.Sprintf("%q (%s) starts before the earliest allowed start %s", b.Label, b.Span(), p.day.earliest))
		}
	}

	merged, err := MergePlan(p.day.fixed, proposed)
	if err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return proposed, nil, errs
	}
	return proposed, merged, nil
}

// Save persists an accepted plan, replacing any plan saved for that day.
func (p *Planner) Save(ctx context.Context, result *PlanResult) error {
	if result.HasValidationErrors() || result.Blocks == nil {
		return ErrUnresolved
	}
	if p.repo == nil {
		return errors.New("no plan repository configured")
	}

	if err := p.repo.SavePlan(ctx, result.Date, result.Blocks); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	logger.Info("plan saved", "date", result.Date.Format("2006-01-02"), "blocks", len(result.Blocks))
	return nil
}

func (p *Planner) prepareDay(date time.Time) (*dayContext, error) {
	wake, err := block.ParseClock(p.config.Defaults.WakeTime)
	if err != nil {
		return nil, fmt.Errorf("wake_time: %w", err)
	}
	sleep, err := block.ParseClock(p.config.Defaults.SleepTime)
	if err != nil {
		return nil, fmt.Errorf("sleep_time: %w", err)
	}

	fixed, err := FixedBlocks(p.config, date)
	if err != nil {
		return nil, fmt.Errorf("building fixed blocks: %w", err)
	}

	earliest := scheduler.EarliestStart(p.now(), date, wake)
	slots := scheduler.TrimBefore(scheduler.FreeSlots(fixed, wake, sleep), earliest)

	return &dayContext{
		date:     date,
		wake:     wake,
		sleep:    sleep,
		earliest: earliest,
		fixed:    fixed,
		slots:    slots,
	}, nil
}

func (p *Planner) flexHints(date time.Time) ([]block.Block, error) {
	day := scheduler.WeekdayName(date)
	def, _ := p.config.Day(day)
	hints, err := scheduler.EntryBlocks(day, def.Flex, block.TypeFlex)
	if err != nil {
		return nil, fmt.Errorf("reading flex hints: %w", err)
	}
	return hints, nil
}

// fetchRecentBlocks retrieves saved plans from the previous two weeks for history context.
func (p *Planner) fetchRecentBlocks(ctx context.Context, date time.Time) ([]llm.ExistingBlock, error) {
	if p.repo == nil {
		return nil, nil
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dates, err := p.repo.ListPlanDates(ctx, startOfDay.AddDate(0, 0, -historyDays), startOfDay.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}

	var recent []llm.ExistingBlock
	for _, d := range dates {
		blocks, err := p.repo.GetPlan(ctx, d)
		if err != nil {
			if errors.Is(err, block.ErrPlanNotFound) {
				continue
			}
			return nil, err
		}
		recent = append(recent, llm.ExistingBlocks(d, blocks)...)
	}
	return recent, nil
}

func (p *Planner) activeProjects() []llm.ProjectContext {
	active := p.config.ActiveProjects()
	out := make([]llm.ProjectContext, 0, len(active))
	for _, proj := range active {
		out = append(out, llm.ProjectContext{ID: proj.ID, Name: proj.Name, Status: proj.Status})
	}
	return out
}

// buildResult creates a PlanResult from an LLM response.
func (p *Planner) buildResult(resp *llm.PlanResponse, proposed []block.Block, attempts int, validationErrors []string) *PlanResult {
	result := &PlanResult{
		Date:             p.day.date,
		Fixed:            p.day.fixed,
		Proposed:         proposed,
		ValidationErrors: validationErrors,
		EarliestStart:    p.day.earliest,
		FreeMinutes:      scheduler.FreeMinutes(p.day.slots),
		Attempts:         attempts,
	}
	if resp != nil {
		result.Warnings = resp.Warnings
		result.Suggestions = resp.Suggestions
	}
	return result
}

// formatErrors renders validation errors as feedback for the LLM.
func formatErrors(errs []string) string {
	var sb strings.Builder
	sb.WriteString("Your response had these errors:\n")
	for _, e := range errs {
		fmt.Fprintf(&sb, "- %s\n", e)
	}
	sb.WriteString("\nPlease correct these issues and respond again with valid JSON.")
	return sb.String()
}

func responseJSON(resp *llm.PlanResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func slotStrings(slots []scheduler.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}
