package ui

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/dateutil"
	"github.com/S-Leuthold/echo/internal/session"
)

func (a *App) logCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record and list work sessions",
		Long: `Session logs record time actually spent, next to the plan.
Labels follow the "Project | Task" convention so time can be grouped by
project in 'show', 'week' and 'review'.`,
	}
	cmd.AddCommand(a.logAddCmd())
	cmd.AddCommand(a.logListCmd())
	return cmd
}

func (a *App) logAddCmd() *cobra.Command {
	var (
		label   string
		minutes int
		day     string
	)

	cmd := &cobra.Command{
		Use:   "add [notes]",
		Short: "Log a work session",
		Example: `  echo log add --label "Echo | Release notes" --minutes 90
  echo log add --label "Thesis | Chapter 2" --minutes 45 --date yesterday "rewrote the intro"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateutil.ParseDay(day, a.now())
			if err != nil {
				return err
			}

			l, err := session.New(date, label, minutes, strings.Join(args, " "))
			if err != nil {
				return err
			}

			if err := a.ensureRepo(); err != nil {
				return err
			}
			if err := a.store.AddSessionLog(cmd.Context(), l); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s\n", FormatDuration(l.Minutes), l.Date.Format(dateutil.DateLayout))
			return nil
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", `Session label, e.g. "Project | Task"`)
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Minutes spent")
	cmd.Flags().StringVarP(&day, "date", "d", "today", "Day of the session")
	_ = cmd.MarkFlagRequired("minutes")
	return cmd
}

func (a *App) logListCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logged sessions",
		Long: `List sessions between --from and --to (inclusive, default today only).
Both accept the same dates as other commands: "today", "monday",
"last-friday", "2025-01-06".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := dateutil.NewDateRange(from, to, a.now())
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			logs, err := a.store.ListSessionLogs(cmd.Context(), r.Start, r.End)
			if err != nil {
				return fmt.Errorf("fetching sessions: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(logs) == 0 {
				fmt.Fprintln(out, "No sessions logged.")
				return nil
			}

			width := labelWidth(termWidth(), 30)
			current := ""
			for _, l := range logs {
				if d := l.Date.Format(dateutil.DateLayout); d != current {
					if current != "" {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "  %s\n", formatHeader(l.Date.Format("Mon Jan 2")))
					current = d
				}
				fmt.Fprintf(out, "    %s  %s", padLabel(l.Label, width), formatStats(FormatDuration(l.Minutes)))
				if l.Notes != "" {
					fmt.Fprintf(out, "  %s", formatMuted(truncateLabel(l.Notes, 40)))
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "\nTotal: %s in %d sessions\n", formatStats(FormatDuration(session.TotalMinutes(logs))), len(logs))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "today", "First day")
	cmd.Flags().StringVar(&to, "to", "", "Last day (default same as --from)")
	return cmd
}
