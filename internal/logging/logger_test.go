package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelforge/internal/services"
)

func TestPrettyHandlerFormatsComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("stage started",
		String(FieldComponent, "stock-match"),
		String(FieldStage, "matching"),
		Int64(FieldItemID, 7),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO stock-match: stage started") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "stage=matching") || !strings.Contains(line, "item_id=7") {
		t.Fatalf("expected key=value fields, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be folded into the prefix, got %q", line)
	}
}

func TestPrettyHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("step matched", String(FieldSelector, "text=\"Match stock media\" on button"))

	if !strings.Contains(buf.String(), "selector=\"") {
		t.Fatalf("expected quoted selector value, got %q", buf.String())
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line should be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN kept") {
		t.Fatalf("warn line missing, got %q", out)
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "nested", "reelforge.log")
	logger, err := New(Options{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", String("k", "v"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"level":"info"`) {
		t.Fatalf("unexpected JSON output: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := services.WithItemID(context.Background(), 42)
	ctx = services.WithStage(ctx, "matching")
	ctx = services.WithRequestID(ctx, "req-1")

	WithContext(ctx, logger).Info("working")

	out := buf.String()
	for _, want := range []string{"item_id=42", "stage=matching", "correlation_id=req-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestCleanupOldLogsPrunesByAge(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "reelforge-old.log")
	fresh := filepath.Join(dir, "reelforge-fresh.log")
	keep := filepath.Join(dir, "reelforge-current.log")
	for _, p := range []string{old, fresh, keep} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(keep, stale, stale); err != nil {
		t.Fatal(err)
	}

	CleanupOldLogs(NewNop(), 7, RetentionTarget{Dir: dir, Pattern: "reelforge-*.log", Exclude: []string{keep}})

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expected old log to be pruned")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("expected fresh log to survive")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatal("expected excluded log to survive")
	}
}
