package daemonctl

import (
	"strings"
	"testing"

	"reelforge/internal/config"
	"reelforge/internal/ipc"
)

func TestDeriveLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = "/var/log/reelforge"

	if got := DeriveLogDir("/run/reelforge/reelforged.lock", "", &cfg); got != "/run/reelforge" {
		t.Fatalf("lock path: got %q", got)
	}
	if got := DeriveLogDir("", "/data/reelforge/queue.db", &cfg); got != "/data/reelforge" {
		t.Fatalf("queue db path: got %q", got)
	}
	if got := DeriveLogDir("", "", &cfg); got != "/var/log/reelforge" {
		t.Fatalf("config fallback: got %q", got)
	}
	if got := DeriveLogDir("", "", nil); got != "" {
		t.Fatalf("no hints: got %q", got)
	}
}

func TestBuildDependencySummary(t *testing.T) {
	summary := BuildDependencySummary(nil)
	if summary.Severity != "info" {
		t.Fatalf("empty deps severity: got %q", summary.Severity)
	}

	deps := []ipc.DependencyStatus{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false},
		{Name: "ntfy", Available: false, Optional: true},
	}
	summary = BuildDependencySummary(deps)
	if summary.Total != 3 || summary.Available != 1 {
		t.Fatalf("counts: got %+v", summary)
	}
	if summary.MissingRequired != 1 || summary.MissingOptional != 1 {
		t.Fatalf("missing counts: got %+v", summary)
	}
	if summary.Severity != "error" {
		t.Fatalf("severity: got %q", summary.Severity)
	}
	if !strings.Contains(summary.Detail, "1/3 available") {
		t.Fatalf("detail: got %q", summary.Detail)
	}

	allOK := []ipc.DependencyStatus{{Name: "FFmpeg", Available: true}}
	summary = BuildDependencySummary(allOK)
	if summary.Severity != "ok" || summary.Detail != "1/1 available" {
		t.Fatalf("all available: got %+v", summary)
	}
}

func TestBuildSystemChecks(t *testing.T) {
	cfg := config.Default()
	cfg.Sheets.Source = "https://example.com/jobs.csv"
	cfg.Upload.Enabled = false
	cfg.Notifications.NtfyTopic = ""

	lines := BuildSystemChecks(&cfg, true)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0].Label != "Reelforge" || lines[0].Severity != "ok" {
		t.Fatalf("running line: got %+v", lines[0])
	}
	if lines[1].Label != "Sheet Source" || lines[1].Severity != "ok" {
		t.Fatalf("sheet line: got %+v", lines[1])
	}
	if lines[2].Label != "Upload" || !strings.Contains(lines[2].Detail, "Disabled") {
		t.Fatalf("upload line: got %+v", lines[2])
	}
	if lines[3].Label != "Notifications" || lines[3].Severity != "warn" {
		t.Fatalf("notifications line: got %+v", lines[3])
	}

	lines = BuildSystemChecks(&cfg, false)
	if lines[0].Severity != "warn" {
		t.Fatalf("not running severity: got %+v", lines[0])
	}
}
