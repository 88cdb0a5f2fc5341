package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/summary"
)

// rowOverhead is the width of everything on a block row except the label:
// "  [A]  HH:MM–HH:MM  " plus the "  XhYYm" duration suffix.
const rowOverhead = 20 + 8

// typeMarker returns the one-letter marker for a block type.
func typeMarker(t block.Type) string {
	switch t {
	case block.TypeAnchor:
		return "[A]"
	case block.TypeFixed:
		return "[F]"
	case block.TypeFlex:
		return "[X]"
	default:
		return "[?]"
	}
}

// labelWidth returns how many columns a label may take on a terminal of
// the given width, never less than min.
func labelWidth(width, minWidth int) int {
	if w := width - rowOverhead; w > minWidth {
		return w
	}
	return minWidth
}

// truncateLabel shortens s to at most width display columns.
func truncateLabel(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// padLabel truncates s and pads it to exactly width display columns.
func padLabel(s string, width int) string {
	return runewidth.FillRight(truncateLabel(s, width), width)
}

// printBlockRow prints a single block with consistent formatting.
func printBlockRow(w io.Writer, b block.Block, width int) {
	fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		formatType(b.Type, typeMarker(b.Type)),
		b.Span(),
		padLabel(b.Label, width),
		formatMuted(FormatDuration(b.Duration())),
	)
}

// printBlocks prints blocks in order, or a placeholder when there are none.
func printBlocks(w io.Writer, blocks []block.Block, width int) {
	if len(blocks) == 0 {
		fmt.Fprintln(w, formatMuted("  (no blocks)"))
		return
	}
	for _, b := range blocks {
		printBlockRow(w, b, width)
	}
}

// printDayStats prints the per-type, per-project and logged totals of a day.
func printDayStats(w io.Writer, s *summary.DaySummary) {
	fmt.Fprintf(w, "%s | %s | %s | Free: %s\n",
		formatType(block.TypeAnchor, "Anchor: "+FormatDuration(s.TypeMinutes[block.TypeAnchor])),
		formatType(block.TypeFixed, "Fixed: "+FormatDuration(s.TypeMinutes[block.TypeFixed])),
		formatType(block.TypeFlex, "Flex: "+FormatDuration(s.TypeMinutes[block.TypeFlex])),
		formatStats(FormatDuration(s.FreeMinutes)),
	)

	if len(s.Projects) > 0 {
		parts := make([]string, 0, len(s.Projects))
		for _, p := range s.Projects {
			parts = append(parts, fmt.Sprintf("%s %s", p.Project, FormatDuration(p.Minutes)))
		}
		fmt.Fprintf(w, "Projects: %s\n", strings.Join(parts, ", "))
	}

	if s.LoggedMinutes > 0 {
		fmt.Fprintf(w, "Logged: %s\n", formatStats(FormatDuration(s.LoggedMinutes)))
		if flex := s.TypeMinutes[block.TypeFlex]; flex > 0 {
			fmt.Fprintf(w, "Follow-through: %s\n", FlowBar(s.LoggedMinutes, flex, 20))
		}
	}
}

// FlowBar creates an ASCII progress bar of done against planned minutes.
// Values over 100% fill the bar.
func FlowBar(done, planned, width int) string {
	if planned == 0 {
		return "[" + strings.Repeat("░", width) + "] (0%)"
	}

	pct := (done * 100) / planned
	filled := min((done*width)/planned, width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", formatType(block.TypeFlex, bar), formatStats(fmt.Sprintf("(%d%%)", pct)))
}

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
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

// plainText removes color codes so text can be copied or piped.
func plainText(s string) string {
	return ansi.Strip(s)
}

// printInsightWrapped prints LLM review text, wrapping long lines to width
// and keeping the "PREFIX:" and "➜" line structure.
func printInsightWrapped(w io.Writer, text string, width int) {
	for _, line := range strings.Split(stripMarkdownCodeBlocks(text), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}

		prefix := "  "
		if strings.HasPrefix(trimmed, "➜") || strings.HasPrefix(trimmed, "- ") {
			prefix = "    "
		}
		for i, part := range wrap(trimmed, width-runewidth.StringWidth(prefix)) {
			indent := prefix
			if i > 0 {
				indent += "  "
			}
			fmt.Fprintln(w, formatInsight(indent+part))
		}
	}
}

// wrap splits text into lines of at most width display columns at word
// boundaries. Words longer than width get a line of their own.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width {
			line += " " + word
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}

// stripMarkdownCodeBlocks removes ``` fence lines, keeping their content.
func stripMarkdownCodeBlocks(text string) string {
	lines := strings.Split(text, "\n")
	result := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
