package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/dateutil"
)

func (a *App) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [date]",
		Short: "Delete a saved plan",
		Long: `Remove the saved plan for a day (default today). The day falls back to
its weekly template. Logged sessions are kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			if err := a.store.DeletePlan(cmd.Context(), date); err != nil {
				return fmt.Errorf("deleting plan: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan for %s deleted\n", date.Format(dateutil.DateLayout))
			return nil
		},
	}
}
