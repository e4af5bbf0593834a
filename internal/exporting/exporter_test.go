package exporting_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/exporting"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/testsupport"
	"reelforge/internal/uiflow"
)

type fakeElement struct {
	clicks   int
	clickErr error
}

func (e *fakeElement) Visible(context.Context) (bool, error) { return true, nil }
func (e *fakeElement) Enabled(context.Context) (bool, error) { return true, nil }
func (e *fakeElement) Click(context.Context) error {
	e.clicks++
	return e.clickErr
}

type fakeSurface struct {
	elements map[string][]uiflow.Element
	findErr  error
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{elements: make(map[string][]uiflow.Element)}
}

func (s *fakeSurface) add(c uiflow.Candidate, el uiflow.Element) {
	s.elements[c.String()] = append(s.elements[c.String()], el)
}

func (s *fakeSurface) Find(_ context.Context, c uiflow.Candidate) ([]uiflow.Element, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.elements[c.String()], nil
}

type fakeBrowser struct {
	surface   *fakeSurface
	typeErr   error
	typedText string
}

func (b *fakeBrowser) Type(_ context.Context, _ []uiflow.Candidate, text string) error {
	if b.typeErr != nil {
		return b.typeErr
	}
	b.typedText = text
	return nil
}

func (b *fakeBrowser) Surface() uiflow.Surface           { return b.surface }
func (b *fakeBrowser) HealthCheck(context.Context) error { return nil }

func dialogBrowser() (*fakeBrowser, *fakeElement, *fakeElement) {
	surface := newFakeSurface()
	open := &fakeElement{}
	confirm := &fakeElement{}
	surface.add(uiflow.Text("Export", "button"), open)
	surface.add(uiflow.TextWithin("Export", "dialog"), confirm)
	return &fakeBrowser{surface: surface}, open, confirm
}

func testConfig(t *testing.T) *config.Config {
	cfg := testsupport.NewConfig(t)
	cfg.Export.RenderWaitSeconds = 0
	cfg.Export.DownloadTimeout = 5
	if err := os.MkdirAll(cfg.Paths.DownloadDir, 0o755); err != nil {
		t.Fatalf("mkdir download dir: %v", err)
	}
	return cfg
}

func newItem() *queue.Item {
	return &queue.Item{
		ID:        3,
		Title:     "Desk Setup Tour",
		Status:    queue.StatusExporting,
		EditorURL: "https://www.capcut.com/editor/project-42",
	}
}

// deliverDownload drops a finished file into the download dir shortly after
// the exporter starts watching.
func deliverDownload(t *testing.T, dir, name string) {
	t.Helper()
	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, name), []byte("rendered video"), 0o644)
	}()
}

func TestExecuteExportsAndStagesDownload(t *testing.T) {
	cfg := testConfig(t)
	browser, open, confirm := dialogBrowser()
	exporter := exporting.NewExporter(cfg, nil, nil, browser, nil)

	deliverDownload(t, cfg.Paths.DownloadDir, "desk-setup.mp4")

	item := newItem()
	if err := exporter.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if open.clicks != 1 || confirm.clicks != 1 {
		t.Fatalf("expected one click each, got open=%d confirm=%d", open.clicks, confirm.clicks)
	}
	want := exporting.ExportFileName(item.Title, cfg.Export.FilenameMaxLength)
	if browser.typedText != want {
		t.Fatalf("expected filename %q typed, got %q", want, browser.typedText)
	}
	if item.DownloadedFile == "" {
		t.Fatal("expected downloaded file recorded")
	}
	if !strings.HasPrefix(item.DownloadedFile, cfg.Paths.StagingDir) {
		t.Fatalf("expected file staged under %s, got %s", cfg.Paths.StagingDir, item.DownloadedFile)
	}
	if _, err := os.Stat(item.DownloadedFile); err != nil {
		t.Fatalf("staged file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.DownloadDir, "desk-setup.mp4")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected download moved out of the download dir")
	}
}

func TestExecuteMissingFilenameFieldIsNonFatal(t *testing.T) {
	cfg := testConfig(t)
	browser, _, _ := dialogBrowser()
	browser.typeErr = uiflow.ErrNotFound
	exporter := exporting.NewExporter(cfg, nil, nil, browser, nil)

	deliverDownload(t, cfg.Paths.DownloadDir, "clip.mp4")

	if err := exporter.Execute(context.Background(), newItem()); err != nil {
		t.Fatalf("missing name field must not fail export, got %v", err)
	}
}

func TestExecuteFailsWhenExportControlMissing(t *testing.T) {
	cfg := testConfig(t)
	browser := &fakeBrowser{surface: newFakeSurface()}
	exporter := exporting.NewExporter(cfg, nil, nil, browser, nil)

	err := exporter.Execute(context.Background(), newItem())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestExecuteSurfaceLossIsTransient(t *testing.T) {
	cfg := testConfig(t)
	surface := newFakeSurface()
	surface.findErr = uiflow.ErrSurfaceUnavailable
	exporter := exporting.NewExporter(cfg, nil, nil, &fakeBrowser{surface: surface}, nil)

	err := exporter.Execute(context.Background(), newItem())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestExecuteDownloadTimeoutFailsTheStage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.DownloadTimeout = 1
	browser, _, _ := dialogBrowser()
	exporter := exporting.NewExporter(cfg, nil, nil, browser, nil)

	err := exporter.Execute(context.Background(), newItem())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestPrepareRequiresEditorURL(t *testing.T) {
	cfg := testConfig(t)
	browser, _, _ := dialogBrowser()
	exporter := exporting.NewExporter(cfg, nil, nil, browser, nil)

	item := newItem()
	item.EditorURL = ""
	if err := exporter.Prepare(context.Background(), item); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportFileName(t *testing.T) {
	if got := exporting.ExportFileName("My Video: Part 1/2", 45); got != "My Video- Part 1-2" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	long := strings.Repeat("a", 60)
	if got := exporting.ExportFileName(long, 45); len([]rune(got)) != 45 {
		t.Fatalf("expected 45 rune cap, got %d", len([]rune(got)))
	}
	if got := exporting.ExportFileName("   ", 45); got != "reelforge-export" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}
