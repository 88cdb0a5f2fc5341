// Package ui implements the echo command line interface.
package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/dateutil"
	"github.com/S-Leuthold/echo/internal/db"
	"github.com/S-Leuthold/echo/internal/llm"
	"github.com/S-Leuthold/echo/internal/logger"
	"github.com/S-Leuthold/echo/internal/validator"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// skipValidation marks commands that run even when the schedule is invalid.
const skipValidation = "skip-validation"

// App holds the CLI application state.
type App struct {
	store      *db.SQLite
	config     *config.Config
	configPath string
	root       *cobra.Command
	debug      bool // Enable debug logging
	noColor    bool

	// Replaceable in tests
	now       func() time.Time
	newClient func(provider, model, baseURL string) (llm.Client, error)
}

// NewApp creates a new CLI application for the given config, loaded from configPath.
// The database is opened on first use.
func NewApp(cfg *config.Config, configPath string) *App {
	a := &App{
		config:     cfg,
		configPath: configPath,
		now:        time.Now,
		newClient:  llm.NewClient,
	}

	a.root = &cobra.Command{
		Use:   "echo",
		Short: "A daily planner built around fixed commitments",
		Long: `Echo plans your day around a weekly template of commitments.

Anchors and fixed blocks come from your config; an LLM fills the free time
with flexible work blocks, and every plan is checked for overlaps before
it is saved.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (also logs to stderr)")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.validateCmd())
	a.root.AddCommand(a.buildCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.exportCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.logCmd())
	a.root.AddCommand(a.reviewCmd())

	return a
}

func (a *App) preRun(cmd *cobra.Command, _ []string) error {
	if a.noColor || !colorFromEnv() {
		DisableColor()
	}

	if err := logger.Init(logger.Config{
		Debug: a.debug || a.config.Log.Debug,
		Dir:   a.config.Log.Dir,
	}); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger.Debug("command started", "command", cmd.CommandPath())

	if cmd.Annotations[skipValidation] == "true" {
		return nil
	}
	if err := validator.ValidateConfig(a.config); err != nil {
		return fmt.Errorf("invalid schedule in %s: %w", a.configPath, err)
	}
	return nil
}

// ensureRepo opens the database if it is not open yet.
func (a *App) ensureRepo() error {
	if a.store != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(a.config.Storage.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.store = store
	logger.Debug("database opened", "path", a.config.Storage.DBPath)
	return nil
}

// dayArg resolves an optional leading date argument, defaulting to today.
func (a *App) dayArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return dateutil.TruncateToDay(a.now()), nil
	}
	return dateutil.ParseDay(args[0], a.now())
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version number",
		Annotations: map[string]string{skipValidation: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "echo %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the database and the log file.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if cerr := logger.Close(); err == nil {
		err = cerr
	}
	return err
}
