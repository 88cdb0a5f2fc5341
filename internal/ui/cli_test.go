package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/S-Leuthold/echo/internal/block"
	"github.com/S-Leuthold/echo/internal/config"
	"github.com/S-Leuthold/echo/internal/llm"
	"github.com/S-Leuthold/echo/internal/validator"
)

// fakeClient returns canned replies in order.
type fakeClient struct {
	replies []string
	calls   int
}

func (f *fakeClient) Chat(_ context.Context, _ []llm.Message) (string, error) {
	f.calls++
	if len(f.replies) == 0 {
		return "", errors.New("no more replies")
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}

func (f *fakeClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	content, err := f.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(content), result)
}

// sunday evening before the Monday most tests plan.
var testNow = time.Date(2025, 1, 5, 20, 0, 0, 0, time.Local)

const flexReply = `{"blocks":[{"start":"10:00","end":"12:00","label":"Echo | Release notes","project":"echo"}],"suggestions":["Walk after lunch"]}`

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "data", "echo.db")
	cfg.Log.Dir = filepath.Join(dir, "logs")
	cfg.Projects = []config.Project{{ID: "echo", Name: "Echo", Status: "active"}}
	cfg.WeeklySchedule = map[string]config.DayDefinition{
		"monday": {
			Anchors: []config.Entry{
				{Time: "06:00–06:30", Task: "Wake routine", Recurrence: "daily"},
				{Time: "09:00–10:00", Task: "Team standup"},
			},
			Fixed: []config.Entry{{Time: "12:00–13:00", Label: "Lunch"}},
			Flex:  []config.Entry{{Time: "10:00–12:00", Task: "Echo | Deep work"}},
		},
	}
	return cfg
}

// testEnv runs commands against one temp directory. Each run gets a fresh
// App so flag values do not leak between commands.
type testEnv struct {
	t      *testing.T
	dir    string
	cfg    *config.Config
	client *fakeClient
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	return &testEnv{t: t, dir: dir, cfg: testConfig(dir), client: &fakeClient{}}
}

func (e *testEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()

	a := NewApp(e.cfg, filepath.Join(e.dir, "config.toml"))
	a.now = func() time.Time { return testNow }
	a.newClient = func(_, _, _ string) (llm.Client, error) { return e.client, nil }
	defer a.Close()

	var out bytes.Buffer
	a.root.SetOut(&out)
	a.root.SetErr(&out)
	a.root.SetIn(strings.NewReader(stdin))
	a.root.SetArgs(args)

	err := a.Execute()
	return out.String(), err
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	assertContains(t, out, "echo dev")
}

func TestInvalidScheduleBlocksCommands(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.WeeklySchedule["tuesday"] = config.DayDefinition{
		Anchors: []config.Entry{{Time: "09:00–10:00", Task: "Standup"}},
		Fixed:   []config.Entry{{Time: "09:30–10:30", Label: "Dentist"}},
	}

	_, err := env.run("", "show", "monday")
	var oe *block.OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("show error = %v, want *block.OverlapError", err)
	}
	if !strings.Contains(err.Error(), "invalid schedule") {
		t.Errorf("error %q should mention the invalid schedule", err)
	}

	if _, err := env.run("", "validate"); !errors.As(err, &oe) {
		t.Errorf("validate error = %v, want *block.OverlapError", err)
	}
	if _, err := env.run("", "version"); err != nil {
		t.Errorf("version should skip validation: %v", err)
	}
}

func TestValidateCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run("", "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	assertContains(t, out, "OK", "1 days", "2 anchors", "1 fixed")
}

func TestBuildCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "build", "monday")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	assertContains(t, out, "Monday, January 6, 2025", "[A]  06:00–06:30  Wake routine", "Team standup")
	if strings.Contains(out, "Lunch") {
		t.Errorf("build without --fixed should only list anchors:\n%s", out)
	}

	out, err = env.run("", "build", "monday", "--fixed")
	if err != nil {
		t.Fatalf("build --fixed: %v", err)
	}
	assertContains(t, out, "[F]  12:00–13:00  Lunch")

	if _, err := env.run("", "build", "someday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestPlanShowExportDelete(t *testing.T) {
	env := newTestEnv(t)
	env.client.replies = []string{flexReply}

	out, err := env.run("a\n", "plan", "tomorrow", "Write", "the", "release", "notes")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	assertContains(t, out, "Echo | Release notes", "Walk after lunch", "Plan for 2025-01-06 saved (4 blocks)")

	out, err = env.run("", "show", "2025-01-06")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	assertContains(t, out, "[X]  10:00–12:00  Echo | Release notes", "Flex: 2h", "Echo 2h")
	if strings.Contains(out, "weekly template") {
		t.Errorf("saved plan should not be marked as template:\n%s", out)
	}

	icsPath := filepath.Join(env.dir, "out", "monday.ics")
	if _, err := env.run("", "export", "2025-01-06", "-o", icsPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(icsPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if n := strings.Count(string(data), "BEGIN:VEVENT"); n != 4 {
		t.Errorf("exported %d events, want 4", n)
	}

	if _, err := env.run("", "delete", "2025-01-06"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.run("", "delete", "2025-01-06"); !errors.Is(err, block.ErrPlanNotFound) {
		t.Errorf("second delete error = %v, want ErrPlanNotFound", err)
	}

	out, err = env.run("", "show", "2025-01-06")
	if err != nil {
		t.Fatalf("show after delete: %v", err)
	}
	assertContains(t, out, "weekly template", "Lunch")
}

func TestPlanCmd_DryRunAndCancel(t *testing.T) {
	env := newTestEnv(t)
	env.client.replies = []string{flexReply, flexReply}

	out, err := env.run("", "plan", "monday", "Release notes", "--dry-run")
	if err != nil {
		t.Fatalf("plan --dry-run: %v", err)
	}
	assertContains(t, out, "Dry run")

	out, err = env.run("c\n", "plan", "monday", "Release notes")
	if err != nil {
		t.Fatalf("plan cancel: %v", err)
	}
	assertContains(t, out, "Planning cancelled.")

	if _, err := env.run("", "export", "monday"); !errors.Is(err, block.ErrPlanNotFound) {
		t.Errorf("nothing should be saved, export error = %v", err)
	}
}

func TestPlanCmd_Modify(t *testing.T) {
	env := newTestEnv(t)
	later := `{"blocks":[{"start":"14:00","end":"15:30","label":"Echo | Release notes","project":"echo"}]}`
	env.client.replies = []string{flexReply, later}

	out, err := env.run("m\nafter lunch please\na\n", "plan", "monday", "Release notes")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	assertContains(t, out, "Replanning...", "14:00–15:30")
	if env.client.calls != 2 {
		t.Errorf("LLM calls = %d, want 2", env.client.calls)
	}
}

func TestPlanCmd_UnresolvedCannotBeAccepted(t *testing.T) {
	env := newTestEnv(t)
	overlap := `{"blocks":[{"start":"11:00","end":"12:30","label":"Echo | Release notes"}]}`
	env.client.replies = []string{overlap, overlap}

	out, err := env.run("a\nc\n", "plan", "monday", "Release notes", "--retries", "1")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	assertContains(t, out, "Validation errors", "Cannot save", "Planning cancelled.")
}

func TestLogCmds(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run("", "log", "add", "--label", "Echo | Release notes", "--minutes", "90", "--date", "yesterday", "first draft"); err != nil {
		t.Fatalf("log add: %v", err)
	}
	if _, err := env.run("", "log", "add", "-l", "Thesis | Reading", "-m", "30", "--date", "yesterday"); err != nil {
		t.Fatalf("log add: %v", err)
	}
	if _, err := env.run("", "log", "add", "--label", "Nothing", "--minutes", "0"); err == nil {
		t.Error("expected error for zero minutes")
	}

	out, err := env.run("", "log", "list", "--from", "yesterday")
	if err != nil {
		t.Fatalf("log list: %v", err)
	}
	assertContains(t, out, "Sat Jan 4", "Echo | Release notes", "1h30m", "first draft", "Total: 2h in 2 sessions")

	out, err = env.run("", "log", "list")
	if err != nil {
		t.Fatalf("log list: %v", err)
	}
	assertContains(t, out, "No sessions logged.")
}

func TestWeekCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "week", "2025-01-08")
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	assertContains(t, out, "WEEK: Mon Jan 6 - Sun Jan 12, 2025", "Anchor", "Total", "template", "Planned: 2h30m")
}

func TestReviewCmd(t *testing.T) {
	env := newTestEnv(t)
	env.client.replies = []string{"SUMMARY: Planned but not logged.\n➜ Log the deep work block"}

	out, err := env.run("", "review", "monday")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	assertContains(t, out, "REVIEW", "SUMMARY: Planned but not logged.", "➜ Log the deep work block")

	out, err = env.run("", "review", "sunday")
	if err != nil {
		t.Fatalf("review sunday: %v", err)
	}
	assertContains(t, out, "nothing to review")
	if env.client.calls != 1 {
		t.Errorf("LLM calls = %d, want 1", env.client.calls)
	}
}

func TestConfigCmd_Init(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "echo.db")
	cfg.Log.Dir = filepath.Join(dir, "logs")
	path := filepath.Join(dir, "config.toml")

	a := NewApp(cfg, path)
	defer a.Close()
	var out bytes.Buffer
	a.root.SetOut(&out)
	a.root.SetArgs([]string{"config", "--init"})
	if err := a.Execute(); err != nil {
		t.Fatalf("config --init: %v", err)
	}
	assertContains(t, out.String(), "Created "+path, "monday")

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() unexpected error: %v", err)
	}
	if err := validator.ValidateConfig(loaded); err != nil {
		t.Fatalf("example schedule should validate: %v", err)
	}
	if got := len(loaded.WeeklySchedule["monday"].Anchors); got != 2 {
		t.Errorf("monday anchors = %d, want 2", got)
	}
}

func TestConfigCmd_Edit(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "config.toml")

	// Wake, sleep, then keep every other value.
	out, err := env.run("07:00\n21:30\n\n\n\n\n\n", "config", "--edit")
	if err != nil {
		t.Fatalf("config --edit: %v", err)
	}
	assertContains(t, out, "Configuration saved!")

	loaded, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() unexpected error: %v", err)
	}
	if loaded.Defaults.WakeTime != "07:00" || loaded.Defaults.SleepTime != "21:30" {
		t.Errorf("defaults = %s/%s, want 07:00/21:30", loaded.Defaults.WakeTime, loaded.Defaults.SleepTime)
	}
	if len(loaded.WeeklySchedule["monday"].Anchors) != 2 {
		t.Error("editing settings should keep the weekly schedule")
	}
}
