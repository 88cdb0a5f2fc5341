package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/validator"
)

func (a *App) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the weekly schedule for format errors and overlaps",
		Long: `Validate the configured weekly schedule.

Checks the wake and sleep times, project ids, every anchor and fixed span,
and that no two anchor or fixed blocks overlap on the same weekday.
The first problem found is reported.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipValidation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validator.ValidateConfig(a.config); err != nil {
				return fmt.Errorf("invalid schedule in %s: %w", a.configPath, err)
			}

			anchors, fixed := 0, 0
			for _, day := range a.config.ScheduleDays() {
				def := a.config.WeeklySchedule[day]
				anchors += len(def.Anchors)
				fixed += len(def.Fixed)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d days, %d anchors, %d fixed blocks, %d projects\n",
				formatStats("OK"), len(a.config.ScheduleDays()), anchors, fixed, len(a.config.Projects))
			return nil
		},
	}
}
