package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fakeyudi/codeclock/internal/entry"
	"github.com/fakeyudi/codeclock/internal/report"
)

func resetReportFlags() {
	reportPeriod = ""
	reportFormat = "text"
}

func TestReportJSONTotals(t *testing.T) {
	isolateHome(t)
	resetReportFlags()

	today := entry.DateOf(time.Now())
	seedEntries(t,
		entry.TimeEntry{Date: today, Project: "alpha", Branch: "main", Language: "Go", Minutes: 90},
		entry.TimeEntry{Date: "2024-01-15", Project: "beta", Branch: "dev", Language: "Python", Minutes: 45},
	)

	out, err := executeCommand(rootCmd, "report", "--period", "all", "--format", "json")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("unmarshal report output: %v\noutput:\n%s", err, out)
	}
	if rep.Period != report.PeriodAll {
		t.Errorf("period = %q, want %q", rep.Period, report.PeriodAll)
	}
	if rep.TotalMinutes != 135 {
		t.Errorf("total minutes = %v, want 135", rep.TotalMinutes)
	}
	if len(rep.Projects) != 2 {
		t.Errorf("projects = %d, want 2", len(rep.Projects))
	}
	if rep.Rollup.AllTime != 135 {
		t.Errorf("all-time rollup = %v, want 135", rep.Rollup.AllTime)
	}
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	isolateHome(t)
	resetReportFlags()
	seedEntries(t)

	_, err := executeCommand(rootCmd, "report", "--format", "yaml")
	if err == nil {
		t.Fatal("expected an error for unknown format, got nil")
	}
	if !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown-format error, got: %v", err)
	}
}

// The period flag falls back to the configured default when unset.
func TestReportUsesConfiguredPeriod(t *testing.T) {
	tmp := isolateHome(t)
	resetReportFlags()
	seedEntries(t)

	dir := filepath.Join(tmp, ".config", "codeclock")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	cfgJSON := []byte(`{"default_period": "day"}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), cfgJSON, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	out, err := executeCommand(rootCmd, "report", "--format", "json")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("unmarshal report output: %v", err)
	}
	if rep.Period != report.PeriodDay {
		t.Errorf("period = %q, want %q (from config)", rep.Period, report.PeriodDay)
	}
}
