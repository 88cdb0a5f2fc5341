package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/calendar"
	"github.com/S-Leuthold/echo/internal/dateutil"
)

func (a *App) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [date]",
		Short: "Export a saved plan as an iCalendar file",
		Long: `Write the saved plan for a day (default today) as an .ics calendar.

Each block becomes one event in the configured calendar timezone. Event
UIDs are derived from the date, span and label, so importing the same
plan twice updates events instead of duplicating them.

Examples:
  echo export tomorrow -o tomorrow.ics
  echo export 2025-01-06 > monday.ics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			blocks, err := a.store.GetPlan(cmd.Context(), date)
			if err != nil {
				return fmt.Errorf("loading plan: %w", err)
			}

			loc, err := a.config.Location()
			if err != nil {
				return err
			}
			exporter := calendar.NewExporter(a.config.Calendar.Name, loc)

			if output == "" || output == "-" {
				return exporter.Write(cmd.OutOrStdout(), date, blocks)
			}

			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := exporter.Write(f, date, blocks); err != nil {
				f.Close()
				return fmt.Errorf("writing calendar: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d events for %s to %s\n", len(blocks), date.Format(dateutil.DateLayout), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}
