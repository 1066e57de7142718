package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"dtl/internal/config"
	"dtl/internal/driver"
)

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addGlobalFlags(cmd)
	cmd.Flags().Int("jobs", 0, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{" on ", uiModeOn, false},
		{"off", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if !shouldUseTUI(uiModeOn, 0) || shouldUseTUI(uiModeOff, 10) {
		t.Error("explicit ui modes must win")
	}
	// один файл не стоит прогресс-бара
	if shouldUseTUI(uiModeAuto, 1) {
		t.Error("auto mode must stay off for a single file")
	}
}

func TestResolveSettingsFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Color = "on"
	cfg.Output.MaxDiagnostics = 7
	cfg.Jobs = 3
	cfg.Filters.Known = []string{"title"}

	t.Run("config values", func(t *testing.T) {
		cmd := newFlagCommand(t)
		s, err := resolveSettings(cmd, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if s.colorMode != "on" || s.maxDiagnostics != 7 {
			t.Errorf("unexpected settings %+v", s)
		}
		if jobs, _ := s.jobs(cmd); jobs != 3 {
			t.Errorf("jobs = %d, want 3", jobs)
		}
		if got := s.parseOptions(); got.MaxDiagnostics != 7 || len(got.KnownFilters) != 1 {
			t.Errorf("unexpected parse options %+v", got)
		}
	})

	t.Run("explicit flags", func(t *testing.T) {
		cmd := newFlagCommand(t, "--color=off", "--max-diagnostics=2", "--jobs=5", "--quiet")
		s, err := resolveSettings(cmd, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if s.colorMode != "off" || s.maxDiagnostics != 2 || !s.quiet {
			t.Errorf("unexpected settings %+v", s)
		}
		if jobs, _ := s.jobs(cmd); jobs != 5 {
			t.Errorf("jobs = %d, want 5", jobs)
		}
		if s.prettyOpts(nil).ShowFixes {
			t.Error("quiet must hide fixes")
		}
	})

	t.Run("bad color", func(t *testing.T) {
		cmd := newFlagCommand(t, "--color=always")
		if _, err := resolveSettings(cmd, cfg); err == nil {
			t.Fatal("expected error for --color=always")
		}
	})
}

func TestWriteCheckOutputShort(t *testing.T) {
	res := driver.ParseSource("page.html", []byte("<p>{{ }}</p>"), driver.ParseOptions{})
	s, err := resolveSettings(newFlagCommand(t, "--color=off"), config.Default())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeCheckOutput(&buf, "short", res.Bag, res.FileSet, s); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "SYN2001") || !strings.Contains(got, "page.html:1:4") || !strings.HasSuffix(got, "\n") {
		t.Errorf("unexpected short output %q", got)
	}

	buf.Reset()
	if err := writeCheckOutput(&buf, "json", res.Bag, res.FileSet, s); err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
}

func TestCheckSummary(t *testing.T) {
	res := driver.ParseSource("page.html", []byte("{{ }}"), driver.ParseOptions{})
	results := []driver.CheckResult{
		{Path: "a.html", Bag: res.Bag},
		{Path: "b.html", Cached: true},
	}
	got := checkSummary(results, res.Bag)
	if got != "checked 2 files (1 cached): 1 error, 0 warnings" {
		t.Errorf("summary = %q", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	info := versionInfo{Version: "1.2.3", GoVersion: "go1.25.1"}
	if err := renderVersionJSON(&buf, info); err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "dtl" || payload.Version != "1.2.3" || payload.GitCommit != "" {
		t.Errorf("unexpected payload %+v", payload)
	}
}

func TestCheckCommandExitCode(t *testing.T) {
	root := &cobra.Command{Use: "dtl", SilenceErrors: true, SilenceUsage: true}
	addGlobalFlags(root)
	root.AddCommand(checkCmd)

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{
		"check", "--config", "../../testdata/dtl.toml",
		"--ui", "off", "--no-cache", "--format", "short",
		"../../testdata/broken",
	})

	err := root.Execute()
	var exit exitError
	if !errors.As(err, &exit) || exit.code != 1 {
		t.Fatalf("expected exit code 1, got %v", err)
	}
	for _, code := range []string{"SYN2001", "SYN2005"} {
		if !strings.Contains(out.String(), code) {
			t.Errorf("output misses %s:\n%s", code, out.String())
		}
	}
}
