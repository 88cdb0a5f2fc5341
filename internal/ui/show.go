package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/summary"
)

func (a *App) showCmd() *cobra.Command {
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "show [date]",
		Short: "Show a day's plan",
		Long: `Display the saved plan for a day (default today) with per-type and
per-project totals and any logged sessions.

Days without a saved plan show the anchors and fixed entries from the
weekly schedule. This is a quick view without LLM review; use
'echo review' for that.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			day, err := summary.BuildDaySummary(context.Background(), a.config, a.store, a.store, summary.BuildDayOptions{Date: date})
			if err != nil {
				return fmt.Errorf("building day summary: %w", err)
			}

			var buf bytes.Buffer
			printDay(&buf, day, labelWidth(termWidth(), 40))
			if _, err := io.Copy(cmd.OutOrStdout(), &buf); err != nil {
				return err
			}

			if copyOut {
				if err := clipboard.WriteAll(plainText(buf.String())); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatMuted("Copied to clipboard."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyOut, "copy", false, "Copy the plan to the clipboard as plain text")
	return cmd
}

// printDay prints a day's blocks, totals and logged sessions.
func printDay(w io.Writer, day *summary.DaySummary, width int) {
	fmt.Fprintf(w, "=== %s ===\n", formatHeader(day.Date.Format("Monday, January 2, 2006")))
	if !day.Saved {
		fmt.Fprintln(w, formatMuted("(no saved plan, showing the weekly template)"))
	}
	fmt.Fprintln(w)

	printBlocks(w, day.Blocks, width)
	fmt.Fprintln(w)
	printDayStats(w, day)

	if len(day.Logs) > 0 {
		fmt.Fprintf(w, "\n%s\n", formatHeader("Sessions"))
		for _, l := range day.Logs {
			fmt.Fprintf(w, "  %s  %s", padLabel(l.Label, width), formatMuted(FormatDuration(l.Minutes)))
			if l.Notes != "" {
				fmt.Fprintf(w, "  %s", truncateLabel(l.Notes, 40))
			}
			fmt.Fprintln(w)
		}
	}
}
