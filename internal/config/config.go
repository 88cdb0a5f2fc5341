// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
// It is loaded once per run and treated as read-only afterwards.
type Config struct {
	Defaults       DefaultsConfig           `toml:"defaults"`
	WeeklySchedule map[string]DayDefinition `toml:"weekly_schedule"`
	Projects       []Project                `toml:"projects"`
	LLM            LLMConfig                `toml:"llm"`
	Storage        StorageConfig            `toml:"storage"`
	Log            LogConfig                `toml:"log"`
	Calendar       CalendarConfig           `toml:"calendar"`
}

// DefaultsConfig bounds the plannable day.
type DefaultsConfig struct {
	WakeTime  string `toml:"wake_time"`  // e.g., "06:00"
	SleepTime string `toml:"sleep_time"` // e.g., "22:00"
}

// DayDefinition lists the recurring blocks configured for one weekday.
type DayDefinition struct {
	Anchors []Entry `toml:"anchors,omitempty"`
	Fixed   []Entry `toml:"fixed,omitempty"`
	Flex    []Entry `toml:"flex,omitempty"`
}

// Entry is a single configured block.
type Entry struct {
	Time       string `toml:"time"`                 // "HH:MM–HH:MM", EN-DASH separated
	Task       string `toml:"task,omitempty"`       // display label
	Label      string `toml:"label,omitempty"`      // alternative to task
	Recurrence string `toml:"recurrence,omitempty"` // e.g., "daily", "weekly"
	Project    string `toml:"project,omitempty"`    // project id
	Notes      string `toml:"notes,omitempty"`
}

// Title returns the entry's display label, preferring task over label.
func (e Entry) Title() string {
	if e.Task != "" {
		return e.Task
	}
	return e.Label
}

// Project describes a project referenced by block labels. Display only.
type Project struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	Status string `toml:"status"` // e.g., "active", "paused", "done"
}

// LLMConfig holds LLM provider settings.
type LLMConfig struct {
	Provider string `toml:"provider"` // "openai", "ollama", "lmstudio"
	Model    string `toml:"model"`    // e.g., "gpt-4o"
	BaseURL  string `toml:"base_url"` // e.g., "http://localhost:11434"
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Debug bool   `toml:"debug"`
	Dir   string `toml:"dir"`
}

// CalendarConfig holds calendar export settings.
type CalendarConfig struct {
	Timezone string `toml:"timezone"` // IANA name or "Local"
	Name     string `toml:"name"`
}

// Weekdays lists lowercase weekday names in calendar order, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var knownProviders = map[string]bool{
	"openai":   true,
	"ollama":   true,
	"lmstudio": true,
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			WakeTime:  "06:00",
			SleepTime: "22:00",
		},
		WeeklySchedule: map[string]DayDefinition{},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		Log: LogConfig{
			Dir: defaultLogDir(),
		},
		Calendar: CalendarConfig{
			Timezone: "Local",
			Name:     "Echo",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "echo.db"
	}
	return filepath.Join(home, ".local", "share", "echo", "echo.db")
}

func defaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "echo")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "echo", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Missing file is not an error
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.Dir = expandPath(cfg.Log.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.WeeklySchedule == nil {
		cfg.WeeklySchedule = map[string]DayDefinition{}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ECHO_WAKE_TIME"); v != "" {
		cfg.Defaults.WakeTime = v
	}
	if v := os.Getenv("ECHO_SLEEP_TIME"); v != "" {
		cfg.Defaults.SleepTime = v
	}

	if v := os.Getenv("ECHO_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("ECHO_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ECHO_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("ECHO_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("ECHO_LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
	if v := os.Getenv("ECHO_LOG_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ECHO_LOG_DEBUG: %w", err)
		}
		cfg.Log.Debug = debug
	}

	if v := os.Getenv("ECHO_TIMEZONE"); v != "" {
		cfg.Calendar.Timezone = v
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks the application settings.
// Schedule content (times, spans, overlaps) is checked by the validator package.
func (c *Config) Validate() error {
	if !knownProviders[strings.ToLower(strings.TrimSpace(c.LLM.Provider))] {
		return fmt.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the calendar timezone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Calendar.Timezone
	if tz == "" || tz == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Day returns the definition for a lowercase weekday name.
// The boolean is false when the weekday is not configured.
func (c *Config) Day(weekday string) (DayDefinition, bool) {
	day, ok := c.WeeklySchedule[weekday]
	return day, ok
}

// ScheduleDays returns the configured weekday keys: known weekdays in
// calendar order first, then any other keys sorted.
func (c *Config) ScheduleDays() []string {
	days := make([]string, 0, len(c.WeeklySchedule))
	seen := make(map[string]bool, len(Weekdays))
	for _, d := range Weekdays {
		seen[d] = true
		if _, ok := c.WeeklySchedule[d]; ok {
			days = append(days, d)
		}
	}
	var other []string
	for d := range c.WeeklySchedule {
		if !seen[d] {
			other = append(other, d)
		}
	}
	slices.Sort(other)
	return append(days, other...)
}

// Project returns the project with the given id.
func (c *Config) Project(id string) (Project, bool) {
	for _, p := range c.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ActiveProjects returns projects whose status is empty or "active".
func (c *Config) ActiveProjects() []Project {
	var active []Project
	for _, p := range c.Projects {
		if p.Status == "" || strings.EqualFold(p.Status, "active") {
			active = append(active, p)
		}
	}
	return active
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
