package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/summary"
)

var weekHeaders = []string{"Day", "Plan", "Anchor", "Fixed", "Flex", "Free", "Logged"}

func (a *App) weekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week [date]",
		Short: "Show the week's planned and logged time",
		Long: `Display Monday through Sunday of the ISO week containing the date
(default today) as a table of anchor, fixed and flex time per day, with
the free time left in the day window and the time logged.

Days without a saved plan show the configured template.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			week, err := summary.BuildWeekSummary(context.Background(), a.config, a.store, a.store, date)
			if err != nil {
				return fmt.Errorf("building week summary: %w", err)
			}

			printWeek(cmd.OutOrStdout(), week)
			return nil
		},
	}
}

func printWeek(w io.Writer, week *summary.WeekSummary) {
	header := fmt.Sprintf("WEEK: %s - %s", week.Start.Format("Mon Jan 2"), week.End.Format("Mon Jan 2, 2006"))
	fmt.Fprintf(w, "\n  %s\n", formatHeader(header))
	fmt.Fprintln(w, renderWeekTable(week))

	fmt.Fprintf(w, "  Planned: %s | Free: %s | Logged: %s\n",
		formatStats(FormatDuration(week.PlannedMinutes)),
		formatStats(FormatDuration(week.FreeMinutes)),
		formatStats(FormatDuration(week.LoggedMinutes)),
	)
	if flex := week.TypeMinutes[block.TypeFlex]; flex > 0 {
		fmt.Fprintf(w, "  Follow-through: %s\n", FlowBar(week.LoggedMinutes, flex, 20))
	}
}

func renderWeekTable(week *summary.WeekSummary) string {
	rows := make([][]string, 0, len(week.Days)+1)
	for _, d := range week.Days {
		plan := "template"
		if d.Saved {
			plan = "saved"
		}
		rows = append(rows, []string{
			d.Date.Format("Mon Jan 2"),
			plan,
			FormatDuration(d.TypeMinutes[block.TypeAnchor]),
			FormatDuration(d.TypeMinutes[block.TypeFixed]),
			FormatDuration(d.TypeMinutes[block.TypeFlex]),
			FormatDuration(d.FreeMinutes),
			FormatDuration(d.LoggedMinutes),
		})
	}
	rows = append(rows, []string{
		"Total",
		"",
		FormatDuration(week.TypeMinutes[block.TypeAnchor]),
		FormatDuration(week.TypeMinutes[block.TypeFixed]),
		FormatDuration(week.TypeMinutes[block.TypeFlex]),
		FormatDuration(week.FreeMinutes),
		FormatDuration(week.LoggedMinutes),
	})
	total := len(rows) - 1

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	mutedStyle := cellStyle.Faint(true)

	t := table.New().
		Headers(weekHeaders...).
		Border(lipgloss.RoundedBorder()).
		BorderHeader(true).
		BorderColumn(true).
		BorderRow(false).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == total:
				return cellStyle.Bold(true)
			case col == 1 && rows[row][1] == "template":
				return mutedStyle
			case col > 1:
				return cellStyle.Align(lipgloss.Right)
			default:
				return cellStyle
			}
		})

	return strings.TrimRight(t.Render(), "\n")
}
