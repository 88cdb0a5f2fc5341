package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/planner"
	"github.com/S-Leuthold/echo/internal/scheduler"
)

func (a *App) buildCmd() *cobra.Command {
	var withFixed bool

	cmd := &cobra.Command{
		Use:   "build [date]",
		Short: "Show the anchors configured for a day",
		Long: `Build the schedule skeleton for a day from the weekly template.

Prints the anchors configured for the date's weekday. With --fixed the
fixed entries are merged in as well. Nothing is saved.

Examples:
  echo build
  echo build friday --fixed
  echo build 2025-01-06`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}

			var blocks []block.Block
			if withFixed {
				blocks, err = planner.FixedBlocks(a.config, date)
			} else {
				blocks, err = scheduler.BuildSchedule(a.config, date)
			}
			if err != nil {
				return fmt.Errorf("building schedule: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "=== %s ===\n\n", formatHeader(date.Format("Monday, January 2, 2006")))
			printBlocks(out, blocks, labelWidth(termWidth(), 30))
			return nil
		},
	}

	cmd.Flags().BoolVar(&withFixed, "fixed", false, "Include fixed entries")
	return cmd
}
