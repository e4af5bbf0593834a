package generating_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/generating"
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
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{elements: make(map[string][]uiflow.Element)}
}

func (s *fakeSurface) add(c uiflow.Candidate, el uiflow.Element) {
	s.elements[c.String()] = append(s.elements[c.String()], el)
}

func (s *fakeSurface) Find(_ context.Context, c uiflow.Candidate) ([]uiflow.Element, error) {
	return s.elements[c.String()], nil
}

type fakeBrowser struct {
	surface *fakeSurface

	launchErr error
	navErr    error
	typeErr   error
	followErr error
	hasAnyErr error

	navigatedURL string
	typedText    string
	popupsClosed bool
	cookiesSaved bool
	followURL    string
	hasAny       bool
	hasAnyCalls  int
}

func (b *fakeBrowser) Launch(context.Context) error { return b.launchErr }

func (b *fakeBrowser) Navigate(_ context.Context, url string) error {
	b.navigatedURL = url
	return b.navErr
}

func (b *fakeBrowser) ClosePopups(context.Context, []uiflow.Candidate) { b.popupsClosed = true }

func (b *fakeBrowser) Type(_ context.Context, _ []uiflow.Candidate, text string) error {
	b.typedText = text
	return b.typeErr
}

func (b *fakeBrowser) HasAny(context.Context, []uiflow.Candidate) (bool, error) {
	b.hasAnyCalls++
	return b.hasAny, b.hasAnyErr
}

func (b *fakeBrowser) FollowTab(context.Context, string, time.Duration) (string, error) {
	if b.followErr != nil {
		return "", b.followErr
	}
	return b.followURL, nil
}

func (b *fakeBrowser) SaveCookies(context.Context) error {
	b.cookiesSaved = true
	return nil
}

func (b *fakeBrowser) Surface() uiflow.Surface { return b.surface }

func (b *fakeBrowser) HealthCheck(context.Context) error { return nil }

func readyBrowser() (*fakeBrowser, *fakeElement) {
	surface := newFakeSurface()
	generate := &fakeElement{}
	surface.add(uiflow.Text("Generate", "button"), generate)
	return &fakeBrowser{
		surface:   surface,
		followURL: "https://www.capcut.com/editor/project-42",
		hasAny:    true,
	}, generate
}

func testConfig(t *testing.T) *config.Config {
	cfg := testsupport.NewConfig(t)
	cfg.Generation.CompletionInterval = 1
	cfg.Generation.CompletionTimeout = 1
	// Only the generate control matters here; option misses are tolerated.
	cfg.Generation.VisualStyle = ""
	cfg.Generation.Voice = ""
	cfg.Generation.DurationOption = ""
	cfg.Generation.AspectRatio = ""
	return cfg
}

func newItem() *queue.Item {
	return &queue.Item{
		ID:     7,
		Title:  "Desk Setup Tour",
		Prompt: "A cinematic tour of a minimalist desk setup",
		Status: queue.StatusGenerating,
	}
}

func TestExecuteRunsFullFlow(t *testing.T) {
	cfg := testConfig(t)
	browser, generate := readyBrowser()
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	item := newItem()
	if err := gen.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if browser.navigatedURL != cfg.Browser.EditorURL {
		t.Fatalf("expected navigation to editor URL, got %q", browser.navigatedURL)
	}
	if !browser.popupsClosed {
		t.Fatal("expected popups dismissed before form fill")
	}
	if browser.typedText != item.Prompt {
		t.Fatalf("expected prompt typed, got %q", browser.typedText)
	}
	if generate.clicks != 1 {
		t.Fatalf("expected one generate click, got %d", generate.clicks)
	}
	if item.EditorURL != browser.followURL {
		t.Fatalf("expected editor URL recorded, got %q", item.EditorURL)
	}
	if !browser.cookiesSaved {
		t.Fatal("expected session cookies saved after generation")
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected completed progress, got %v", item.ProgressPercent)
	}
}

func TestPrepareRejectsEmptyPrompt(t *testing.T) {
	cfg := testConfig(t)
	browser, _ := readyBrowser()
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	item := newItem()
	item.Prompt = "   "
	err := gen.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteFailsWhenGenerateControlMissing(t *testing.T) {
	cfg := testConfig(t)
	browser, _ := readyBrowser()
	browser.surface = newFakeSurface()
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	err := gen.Execute(context.Background(), newItem())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestExecuteFailsWhenEditorTabNeverAppears(t *testing.T) {
	cfg := testConfig(t)
	browser, _ := readyBrowser()
	browser.followErr = errors.New("no tab matching \"/editor\" appeared within 30s")
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	item := newItem()
	if err := gen.Execute(context.Background(), item); err == nil {
		t.Fatal("expected failure when the editor tab never appears")
	}
	if item.EditorURL != "" {
		t.Fatalf("editor URL must stay empty on failure, got %q", item.EditorURL)
	}
}

func TestExecuteSurfaceLossIsTransient(t *testing.T) {
	cfg := testConfig(t)
	browser, _ := readyBrowser()
	browser.navErr = uiflow.ErrSurfaceUnavailable
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	err := gen.Execute(context.Background(), newItem())
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error for surface loss, got %v", err)
	}
}

func TestExecuteCompletionTimeoutIsNonFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generation.CompletionTimeout = 0
	browser, _ := readyBrowser()
	browser.hasAny = false
	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)

	item := newItem()
	if err := gen.Execute(context.Background(), item); err != nil {
		t.Fatalf("completion timeout must not fail the stage, got %v", err)
	}
	if browser.hasAnyCalls == 0 {
		t.Fatal("expected at least one completion probe")
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected stage to complete anyway, got %v", item.ProgressPercent)
	}
}

func TestExecuteSelectsConfiguredOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generation.VisualStyle = "Realistic Film"
	cfg.Generation.AspectRatio = "16:9"

	browser, _ := readyBrowser()
	style := &fakeElement{}
	ratio := &fakeElement{}
	browser.surface.add(uiflow.Text("Realistic Film", "button"), style)
	browser.surface.add(uiflow.Text("16:9", "button"), ratio)

	gen := generating.NewGenerator(cfg, nil, nil, browser, nil)
	if err := gen.Execute(context.Background(), newItem()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if style.clicks != 1 || ratio.clicks != 1 {
		t.Fatalf("expected configured options clicked, got style=%d ratio=%d", style.clicks, ratio.clicks)
	}
}
