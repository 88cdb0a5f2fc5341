package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/config"
)

// exampleSchedule returns the week written by "config --init" so a new
// user has something to edit.
func exampleSchedule() ([]config.Project, map[string]config.DayDefinition) {
	projects := []config.Project{{ID: "echo", Name: "Echo", Status: "active"}}
	week := map[string]config.DayDefinition{
		"monday": {
			Anchors: []config.Entry{
				{Time: "06:00–06:30", Task: "Morning routine", Recurrence: "daily"},
				{Time: "09:00–09:30", Task: "Team standup", Recurrence: "weekly"},
			},
			Fixed: []config.Entry{{Time: "12:00–13:00", Label: "Lunch"}},
			Flex:  []config.Entry{{Time: "09:30–12:00", Task: "Echo | Deep work"}},
		},
	}
	return projects, week
}

func (a *App) configCmd() *cobra.Command {
	var initFlag, edit bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the current configuration.

With --init, writes a config file with default settings and an example
Monday if none exists. With --edit, prompts for the day bounds, LLM and
storage settings and saves them. Weekly schedule entries are edited in
the file directly.

Example:
  echo config --init
  echo config --edit`,
		Annotations: map[string]string{skipValidation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", a.configPath)

			if initFlag {
				created, err := a.initConfig()
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(out, "Created %s\n\n", a.configPath)
				} else {
					fmt.Fprintln(out, "Config file already exists, leaving it unchanged.")
				}
			}

			printConfig(out, a.config)

			if !edit {
				return nil
			}
			return a.editConfig(bufio.NewReader(cmd.InOrStdin()), out)
		},
	}

	cmd.Flags().BoolVar(&initFlag, "init", false, "Create a config file with an example schedule")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit settings interactively")
	return cmd
}

// initConfig writes the current settings to the config path, adding the
// example week when no schedule is configured. It reports false when the
// file already exists.
func (a *App) initConfig() (bool, error) {
	if _, err := os.Stat(a.configPath); err == nil {
		return false, nil
	}

	cfg := *a.config
	if len(cfg.WeeklySchedule) == 0 {
		cfg.Projects, cfg.WeeklySchedule = exampleSchedule()
	}
	if err := cfg.SaveTo(a.configPath); err != nil {
		return false, fmt.Errorf("saving config: %w", err)
	}

	a.config = &cfg
	return true, nil
}

func (a *App) editConfig(reader *bufio.Reader, out io.Writer) error {
	cfg := a.config
	fmt.Fprintln(out)

	cfg.Defaults.WakeTime = promptValue(reader, out, "Wake time", cfg.Defaults.WakeTime)
	cfg.Defaults.SleepTime = promptValue(reader, out, "Sleep time", cfg.Defaults.SleepTime)
	cfg.LLM.Provider = promptValue(reader, out, "LLM provider (openai, ollama, lmstudio)", cfg.LLM.Provider)
	cfg.LLM.Model = promptValue(reader, out, "LLM model", cfg.LLM.Model)
	cfg.LLM.BaseURL = promptValue(reader, out, "LLM base URL (Ollama/LM Studio)", cfg.LLM.BaseURL)
	cfg.Storage.DBPath = promptValue(reader, out, "Database path", cfg.Storage.DBPath)
	cfg.Calendar.Timezone = promptValue(reader, out, "Calendar timezone", cfg.Calendar.Timezone)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(a.configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[defaults]")
	fmt.Fprintf(w, "  wake_time  = %s\n", cfg.Defaults.WakeTime)
	fmt.Fprintf(w, "  sleep_time = %s\n", cfg.Defaults.SleepTime)
	fmt.Fprintln(w, "\n[weekly_schedule]")
	days := cfg.ScheduleDays()
	if len(days) == 0 {
		fmt.Fprintln(w, "  (empty)")
	}
	for _, day := range days {
		def := cfg.WeeklySchedule[day]
		fmt.Fprintf(w, "  %-10s %d anchors, %d fixed, %d flex\n", day, len(def.Anchors), len(def.Fixed), len(def.Flex))
	}
	if len(cfg.Projects) > 0 {
		fmt.Fprintln(w, "\n[projects]")
		for _, p := range cfg.Projects {
			fmt.Fprintf(w, "  %-10s %s (%s)\n", p.ID, p.Name, p.Status)
		}
	}
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider   = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model      = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url   = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  db_path    = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[calendar]")
	fmt.Fprintf(w, "  timezone   = %s\n", cfg.Calendar.Timezone)
	fmt.Fprintf(w, "  name       = %s\n", cfg.Calendar.Name)
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}
