package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/S-Leuthold/echo/internal/block"
)

// Color definitions for consistent styling across the UI.
var (
	// Anchors: bold magenta, they define the day
	colorAnchor = color.New(color.FgMagenta, color.Bold)

	// Fixed: blue for external commitments
	colorFixed = color.New(color.FgBlue)

	// Flex: bold cyan for the work the day is for
	colorFlex = color.New(color.FgCyan, color.Bold)

	// Insight/results: yellow to make it pop
	colorInsight = color.New(color.FgYellow)

	// Headers: bold
	colorHeader = color.New(color.Bold)

	// Stats: green for positive metrics
	colorStats = color.New(color.FgGreen)

	// Errors and warnings
	colorWarn = color.New(color.FgRed)

	// Muted: for secondary information
	colorMuted = color.New(color.FgWhite, color.Faint)
)

// termWidth returns the terminal width, or a default if detection fails.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // sensible default
	}
	return width
}

// colorFromEnv reports whether the environment allows color (NO_COLOR, CLICOLOR).
func colorFromEnv() bool {
	return !termenv.EnvNoColor()
}

// DisableColor disables all color output, including lipgloss tables.
func DisableColor() {
	color.NoColor = true
	lipgloss.SetColorProfile(termenv.Ascii)
}

// formatType formats text in the color of a block type.
func formatType(t block.Type, s string) string {
	switch t {
	case block.TypeAnchor:
		return colorAnchor.Sprint(s)
	case block.TypeFixed:
		return colorFixed.Sprint(s)
	default:
		return colorFlex.Sprint(s)
	}
}

// formatInsight formats text for insight/coaching output.
func formatInsight(s string) string {
	return colorInsight.Sprint(s)
}

// formatHeader formats text as a header.
func formatHeader(s string) string {
	return colorHeader.Sprint(s)
}

// formatStats formats text for statistics.
func formatStats(s string) string {
	return colorStats.Sprint(s)
}

// formatWarn formats warnings and validation errors.
func formatWarn(s string) string {
	return colorWarn.Sprint(s)
}

// formatMuted formats text as secondary/muted.
func formatMuted(s string) string {
	return colorMuted.Sprint(s)
}
