package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/dateutil"
	"github.com/S-Leuthold/echo/internal/planner"
)

func (a *App) planCmd() *cobra.Command {
	var (
		modelFlag string
		dryRun    bool
		retries   int
	)

	cmd := &cobra.Command{
		Use:   "plan [date] <request>",
		Short: "Plan a day's flexible work around its fixed commitments",
		Long: `Use an LLM to fill the free time of a day with flex blocks.

The day's anchors and fixed entries come from the weekly schedule; the
request describes what you want to get done. Proposals that overlap a
fixed block, fall outside the day, or start before now are sent back to
the LLM with the errors until they pass or retries run out.

The first argument is taken as the date when it parses as one
("today", "tomorrow", "friday", "next-monday", "2025-01-15").

Examples:
  echo plan "Two hours on the thesis, answer email, gym after lunch"
  echo plan tomorrow "Finish the Echo release notes"
  echo plan friday "Review PRs" --dry-run

Interactive mode:
  After the proposal is shown, you can:
  - [a]ccept: Save the plan
  - [m]odify: Provide feedback to adjust the proposal
  - [c]ancel: Exit without saving`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := dateutil.TruncateToDay(a.now())
			if len(args) > 1 {
				if d, err := dateutil.ParseDay(args[0], a.now()); err == nil {
					date = d
					args = args[1:]
				}
			}
			input := strings.Join(args, " ")

			if err := a.ensureRepo(); err != nil {
				return err
			}

			// Use config default for model if not overridden
			model := modelFlag
			if model == "" {
				model = a.config.LLM.Model
			}
			client, err := a.newClient(a.config.LLM.Provider, model, a.config.LLM.BaseURL)
			if err != nil {
				return fmt.Errorf("creating LLM client: %w", err)
			}

			p := planner.New(client, a.config, a.store, planner.WithClock(a.now))
			ctx := context.Background()
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Planning...")
			result, err := p.Plan(ctx, planner.PlanRequest{Input: input, Date: date}, retries)
			if err != nil {
				return fmt.Errorf("planning: %w", err)
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			for {
				displayPlanResult(out, result)

				if dryRun {
					fmt.Fprintln(out, "\n(Dry run - plan not saved)")
					return nil
				}

				fmt.Fprint(out, "\n[a]ccept / [m]odify / [c]ancel: ")
				choice, err := reader.ReadString('\n')
				if err != nil && choice == "" {
					if errors.Is(err, io.EOF) {
						fmt.Fprintln(out, "\nPlanning cancelled.")
						return nil
					}
					return fmt.Errorf("reading input: %w", err)
				}
				choice = strings.TrimSpace(strings.ToLower(choice))

				switch choice {
				case "a", "accept":
					if result.HasValidationErrors() {
						fmt.Fprintln(out, "Cannot save: there are unresolved validation errors.")
						fmt.Fprintln(out, "Please [m]odify the plan or [c]ancel.")
						continue
					}
					if err := p.Save(ctx, result); err != nil {
						return fmt.Errorf("saving plan: %w", err)
					}
					fmt.Fprintf(out, "\nPlan for %s saved (%d blocks)\n", result.Date.Format(dateutil.DateLayout), len(result.Blocks))
					return nil

				case "m", "modify":
					fmt.Fprint(out, "What would you like to change? ")
					modification, _ := reader.ReadString('\n')
					modification = strings.TrimSpace(modification)
					if modification == "" {
						fmt.Fprintln(out, "No modification provided, showing current plan...")
						continue
					}

					fmt.Fprintln(out, "\nReplanning...")
					result, err = p.ContinuePlanning(ctx, modification, retries)
					if err != nil {
						return fmt.Errorf("replanning: %w", err)
					}

				case "c", "cancel":
					fmt.Fprintln(out, "Planning cancelled.")
					return nil

				default:
					fmt.Fprintln(out, "Invalid choice. Please enter 'a', 'm', or 'c'.")
				}
			}
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "LLM model to use (from config if not set)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the proposal without saving")
	cmd.Flags().IntVar(&retries, "retries", planner.DefaultMaxRetries, "Correction rounds when a proposal fails validation")

	return cmd
}

// displayPlanResult shows the planning result to the user.
func displayPlanResult(w io.Writer, result *planner.PlanResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Planning %s\n", formatHeader(result.Date.Format("Monday, January 2, 2006")))
	fmt.Fprintf(w, "Earliest start: %s, free time: %s\n", result.EarliestStart, FormatDuration(result.FreeMinutes))
	if result.Attempts > 1 {
		fmt.Fprintln(w, formatMuted(fmt.Sprintf("(%d attempts)", result.Attempts)))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, s := range result.Warnings {
			fmt.Fprintf(w, "  ! %s\n", s)
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range result.Suggestions {
			fmt.Fprintf(w, "  * %s\n", s)
		}
	}

	width := labelWidth(termWidth(), 30)
	fmt.Fprintln(w, strings.Repeat("-", 60))
	if result.HasValidationErrors() {
		// Nothing merged: show the fixed day and the rejected proposal apart.
		printBlocks(w, result.Fixed, width)
		if len(result.Proposed) > 0 {
			fmt.Fprintln(w, "\nProposed:")
			printBlocks(w, result.Proposed, width)
		}
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, formatWarn("Validation errors (retry limit reached):"))
		for _, ve := range result.ValidationErrors {
			fmt.Fprintf(w, "  - %s\n", ve)
		}
		return
	}

	printBlocks(w, result.Blocks, width)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	flex := 0
	for _, b := range result.Blocks {
		if b.Type == block.TypeFlex {
			flex += b.Duration()
		}
	}
	fmt.Fprintf(w, "Total: %d blocks, %s flex\n", len(result.Blocks), FormatDuration(flex))
}
