package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/session"
)

const evaluatorSystemPrompt = `You are a minimalist planning coach. Output ONLY the exact format shown - no markdown, no extra text. Be extremely concise.`

const reviewPromptTemplate = `Compare this day's plan with what was actually logged and output EXACTLY this format (no markdown, no code blocks):

THEME: [ 2-4 word theme ]

PLAN vs LOG: One sentence on how much planned flex time was actually logged.
DRIFT: Name the biggest gap between a planned block and the log, if any.
ANCHORS: Mention any anchor that crowded out planned work.

TOMORROW:
➜  First specific scheduling change.
➜  Second specific scheduling change.

Data Format:
- [A] = Anchor, [F] = Fixed, [X] = Flex
- Planned total: %s, logged total: %s

Day Data:
%s

Rules:
- Use the exact prefixes shown
- Keep each line under 70 characters
- Be specific with times and durations from the data
- If no issue exists for a category, omit that line
- Output plain text only, no markdown formatting`

// Evaluator reviews a day's plan against logged sessions.
type Evaluator struct {
	client Client
}

// NewEvaluator creates a new Evaluator with the given LLM client.
func NewEvaluator(client Client) *Evaluator {
	return &Evaluator{client: client}
}

// EvaluateDay sends the day's plan and session logs to the LLM for review.
func (e *Evaluator) EvaluateDay(ctx context.Context, date time.Time, blocks []block.Block, logs []*session.Log) (string, error) {
	planned := 0
	for _, b := range blocks {
		planned += b.Duration()
	}

	prompt := fmt.Sprintf(reviewPromptTemplate,
		formatDuration(planned),
		formatDuration(session.TotalMinutes(logs)),
		formatDayData(date, blocks, logs))

	return e.client.Chat(ctx, []Message{
		{Role: RoleSystem, Content: evaluatorSystemPrompt},
		{Role: RoleUser, Content: prompt},
	})
}

// formatDayData renders the plan and log in a compact text form for the LLM.
func formatDayData(date time.Time, blocks []block.Block, logs []*session.Log) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n", date.Format("Mon Jan 2, 2006"))
	sb.WriteString("Plan:\n")
	if len(blocks) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, b := range block.Sort(blocks) {
		fmt.Fprintf(&sb, "  %s-%s  %s  %s  %s\n",
			b.Start, b.End, typeMarker(b.Type), b.Label, formatDuration(b.Duration()))
	}

	sb.WriteString("Logged:\n")
	if len(logs) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, l := range logs {
		label := l.Label
		if label == "" {
			label = l.Notes
		}
		fmt.Fprintf(&sb, "  %s  %s\n", label, formatDuration(l.Minutes))
	}

	return sb.String()
}

func typeMarker(t block.Type) string {
	switch t {
	case block.TypeAnchor:
		return "[A]"
	case block.TypeFixed:
		return "[F]"
	default:
		return "[X]"
	}
}

// formatDuration formats minutes as a human-readable duration.
func formatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}
