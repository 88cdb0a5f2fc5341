package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/summary"
)

func (a *App) reviewCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "review [date]",
		Short: "Review a day's plan against what was logged",
		Long: `Show a day's plan and sessions (default today) followed by an LLM
review comparing the two.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := a.dayArg(args)
			if err != nil {
				return err
			}
			if err := a.ensureRepo(); err != nil {
				return err
			}

			if model == "" {
				model = a.config.LLM.Model
			}
			client, err := a.newClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			day, err := summary.BuildDaySummary(context.Background(), a.config, a.store, a.store, summary.BuildDayOptions{
				Date:          date,
				IncludeReview: true,
				Client:        client,
			})
			if err != nil {
				return fmt.Errorf("building day summary: %w", err)
			}

			out := cmd.OutOrStdout()
			width := termWidth()
			printDay(out, day, labelWidth(width, 40))

			if day.Review == "" {
				fmt.Fprintln(out, formatMuted("\nNothing planned or logged, nothing to review."))
				return nil
			}
			fmt.Fprintf(out, "\n  %s\n", formatHeader("REVIEW"))
			fmt.Fprintln(out, strings.Repeat("─", min(width, 74)))
			printInsightWrapped(out, day.Review, min(width, 74)-2)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "LLM model to use (default from config)")
	return cmd
}
