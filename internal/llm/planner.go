package llm

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
)

const systemPromptWithContext = `You are a daily planning assistant. You place flexible work blocks around a person's fixed commitments.

Context:
- Planning for: %s, %s (%s)
- Current time: %s
- Day window: %s to %s
- Earliest allowed start: %s

%s

%s

%s

%s

%s

%s

User request: "%s"

Rules:
1. Place blocks ONLY inside the free slots listed above
2. Never overlap a fixed block, not even by one minute (touching is fine: 10:00-11:00 then 11:00-12:00)
3. Never start before the earliest allowed start
4. Use 24-hour time format (HH:MM) for start and end
5. Round durations to 15-minute increments (minimum 15 minutes)
6. Label project work as "Project | Task" using the project name, and set "project" to the project id
7. Prefer the weekday's usual flex blocks when they fit the request
8. Prefer long focused blocks earlier in the day and batch small tasks together
9. If a block lacks a specific time, infer a likely placement from the recent history above
10. Warn if the requested work does not fit in the free time

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "blocks": [
    {
      "start": "HH:MM",
      "end": "HH:MM",
      "label": "string",
      "project": "string or empty",
      "notes": "string or empty"
    }
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

const systemPromptCompact = `You are a scheduling assistant. Use the context and return JSON only.

Date: %s (%s)
Day window: %s to %s
Earliest start: %s

%s

%s

User request: "%s"

Rules:
- Return JSON only (no markdown).
- Put blocks only inside the free slots above; never overlap fixed blocks.
- Use HH:MM (24-hour) for start and end, 15-minute increments.
- Label project work "Project | Task".
- "warnings" and "suggestions" must be arrays of strings (no objects).

JSON schema:
{
  "blocks": [
    {"start": "HH:MM", "end": "HH:MM", "label": "string", "project": "string", "notes": "string"}
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

// ExistingBlock describes a block already on a schedule, for LLM context.
type ExistingBlock struct {
	Date  string // YYYY-MM-DD
	Start string // HH:MM
	End   string // HH:MM
	Label string
	Type  string // "anchor", "fixed" or "flex"
}

// ProjectContext describes a project the LLM may schedule work for.
type ProjectContext struct {
	ID     string
	Name   string
	Status string
}

// PlanRequest contains the input for the planner.
type PlanRequest struct {
	Input            string
	Date             time.Time
	Now              time.Time
	WakeTime         string          // "HH:MM"
	SleepTime        string          // "HH:MM"
	EarliestStart    string          // "HH:MM"
	Fixed            []ExistingBlock // blocks that must not move
	FreeSlots        []string        // "HH:MM–HH:MM"
	Hints            []ExistingBlock // the weekday's configured flex blocks
	Projects         []ProjectContext
	RecentBlocks     []ExistingBlock // recent saved plans for pattern inference
	UseCompactPrompt bool            // shorter prompt for local models
}

// PlanResponse contains the parsed LLM response.
type PlanResponse struct {
	Blocks      []ProposedBlock `json:"blocks"`
	Warnings    []string        `json:"warnings"`
	Suggestions []string        `json:"suggestions"`
}

// ProposedBlock is a flex block proposed by the LLM.
type ProposedBlock struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Label   string `json:"label"`
	Project string `json:"project,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Planner uses an LLM to propose flex blocks from natural language input.
type Planner struct {
	client Client
}

// NewPlanner creates a new Planner with the given LLM client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// Plan builds the prompt for req and asks the LLM for blocks.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	messages := p.BuildInitialMessages(req)
	messages = append(messages, Message{Role: RoleUser, Content: req.Input})
	return p.PlanWithMessages(ctx, messages)
}

// PlanWithMessages allows planning with a pre-built message history.
// This is used for retry logic where we need to append error feedback.
func (p *Planner) PlanWithMessages(ctx context.Context, messages []Message) (*PlanResponse, error) {
	var resp PlanResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("getting plan from LLM: %w", err)
	}
	return &resp, nil
}

// BuildInitialMessages creates the system message for a planning request.
func (p *Planner) BuildInitialMessages(req PlanRequest) []Message {
	date := req.Date.Format("2006-01-02")
	dayOfWeek := req.Date.Format("Monday")
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	wake := orDefault(req.WakeTime, "06:00")
	sleep := orDefault(req.SleepTime, "22:00")
	earliest := orDefault(req.EarliestStart, wake)

	fixedSection := formatBlocks("Fixed blocks (do not overlap):", req.Fixed, false)
	slotSection := formatFreeSlots(req.FreeSlots)

	var prompt string
	if req.UseCompactPrompt {
		prompt = fmt.Sprintf(systemPromptCompact,
			dayOfWeek,    // Day of week
			date,         // Date
			wake,         // Window start
			sleep,        // Window end
			earliest,     // Earliest start
			fixedSection, // Fixed blocks
			slotSection,  // Free slots
			req.Input,    // User request
		)
	} else {
		hintSection := formatBlocks("Usual flex blocks for this weekday:", req.Hints, false)
		historySection := formatBlocks("Recent schedule history (last 14 days):", req.RecentBlocks, true)

		prompt = fmt.Sprintf(systemPromptWithContext,
			dayOfWeek,                              // Day of week
			date,                                   // Date
			dayKind(req.Date),                      // weekday or weekend
			now.Format("15:04"),                    // Current time
			wake,                                   // Window start
			sleep,                                  // Window end
			earliest,                               // Earliest start
			fixedSection,                           // Fixed blocks
			slotSection,                            // Free slots
			hintSection,                            // Weekday flex hints
			formatProjects(req.Projects),           // Active projects
			historySection,                         // Recent history
			formatSuggestedTimes(req.RecentBlocks), // Suggested windows
			req.Input,                              // User request
		)
	}

	return []Message{
		{Role: RoleSystem, Content: prompt},
	}
}

// ToBlocks converts proposed blocks to flex Blocks.
func (pr *PlanResponse) ToBlocks() ([]block.Block, error) {
	blocks := make([]block.Block, 0, len(pr.Blocks))

	for i, pb := range pr.Blocks {
		label := strings.TrimSpace(pb.Label)
		if label == "" {
			return nil, fmt.Errorf("block %d: label is empty", i)
		}

		start, err := block.ParseClock(strings.TrimSpace(pb.Start))
		if err != nil {
			return nil, fmt.Errorf("block %d (%q) start: %w", i, label, err)
		}
		end, err := block.ParseClock(strings.TrimSpace(pb.End))
		if err != nil {
			return nil, fmt.Errorf("block %d (%q) end: %w", i, label, err)
		}

		meta := map[string]string{block.MetaRecurrence: block.DefaultRecurrence}
		if pb.Project != "" {
			meta[block.MetaProject] = pb.Project
		}
		if pb.Notes != "" {
			meta[block.MetaNotes] = pb.Notes
		}

		b, err := block.New(start, end, label, block.TypeFlex, meta)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}

	return blocks, nil
}

// ExistingBlocks converts blocks on date to prompt context.
func ExistingBlocks(date time.Time, blocks []block.Block) []ExistingBlock {
	out := make([]ExistingBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, ExistingBlock{
			Date:  date.Format("2006-01-02"),
			Start: b.Start.String(),
			End:   b.End.String(),
			Label: b.Label,
			Type:  string(b.Type),
		})
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func dayKind(t time.Time) string {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return "weekend"
	default:
		return "weekday"
	}
}

func formatBlocks(header string, blocks []ExistingBlock, withDate bool) string {
	if len(blocks) == 0 {
		return header + " None"
	}

	if withDate {
		blocks = sortedExistingBlocks(blocks)
	}

	var sb strings.Builder
	sb.WriteString(header + "\n")
	for _, b := range blocks {
		if withDate {
			fmt.Fprintf(&sb, "- %s %s-%s: %s [%s]\n", b.Date, b.Start, b.End, b.Label, b.Type)
		} else {
			fmt.Fprintf(&sb, "- %s-%s: %s [%s]\n", b.Start, b.End, b.Label, b.Type)
		}
	}
	return sb.String()
}

func formatFreeSlots(slots []string) string {
	if len(slots) == 0 {
		return "Free slots: None (the day is full)"
	}

	var sb strings.Builder
	sb.WriteString("Free slots (the only places blocks may go):\n")
	for _, s := range slots {
		fmt.Fprintf(&sb, "- %s\n", s)
	}
	return sb.String()
}

func formatProjects(projects []ProjectContext) string {
	if len(projects) == 0 {
		return "Active projects: None"
	}

	var sb strings.Builder
	sb.WriteString("Active projects:\n")
	for _, p := range projects {
		fmt.Fprintf(&sb, "- %s (id: %s)\n", p.Name, p.ID)
	}
	return sb.String()
}

func formatSuggestedTimes(blocks []ExistingBlock) string {
	suggestions := suggestedTimeWindows(blocks)
	if len(suggestions) == 0 {
		return "Suggested time windows from recent history: None"
	}

	var sb strings.Builder
	sb.WriteString("Suggested time windows from recent history (median):\n")
	for _, suggestion := range suggestions {
		fmt.Fprintf(&sb, "- %s\n", suggestion)
	}
	return sb.String()
}

// suggestedTimeWindows summarizes recurring labels by their median start and end.
// Only flex blocks are considered; anchors and fixed blocks are already in the prompt.
func suggestedTimeWindows(blocks []ExistingBlock) []string {
	type timeSummary struct {
		starts []int
		ends   []int
	}

	summaries := make(map[string]*timeSummary)
	for _, b := range blocks {
		if b.Label == "" || (b.Type != "" && b.Type != string(block.TypeFlex)) {
			continue
		}
		start, err := block.ParseClock(b.Start)
		if err != nil {
			continue
		}
		end, err := block.ParseClock(b.End)
		if err != nil {
			continue
		}
		summary := summaries[b.Label]
		if summary == nil {
			summary = &timeSummary{}
			summaries[b.Label] = summary
		}
		summary.starts = append(summary.starts, start.Minutes())
		summary.ends = append(summary.ends, end.Minutes())
	}

	keys := make([]string, 0, len(summaries))
	for key := range summaries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	suggestions := make([]string, 0, len(keys))
	for _, key := range keys {
		summary := summaries[key]
		slices.Sort(summary.starts)
		slices.Sort(summary.ends)
		startMedian := roundToQuarterHour(medianMinutes(summary.starts))
		endMedian := roundToQuarterHour(medianMinutes(summary.ends))
		suggestions = append(suggestions, fmt.Sprintf("%s: ~%s-%s (n=%d)",
			key, block.ClockFromMinutes(startMedian), block.ClockFromMinutes(endMedian), len(summary.starts)))
	}
	return suggestions
}

func sortedExistingBlocks(blocks []ExistingBlock) []ExistingBlock {
	sorted := slices.Clone(blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	return sorted
}

func medianMinutes(values []int) int {
	if len(values) == 0 {
		return 0
	}
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

func roundToQuarterHour(minutes int) int {
	if minutes < 0 {
		return 0
	}
	rounded := ((minutes + 7) / 15) * 15
	if rounded >= block.MinutesPerDay {
		return block.MinutesPerDay - 1
	}
	return rounded
}
