package generating

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
	"reelforge/internal/uiflow"
)

// Browser exposes the editor session operations the generator needs.
type Browser interface {
	Launch(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	ClosePopups(ctx context.Context, candidates []uiflow.Candidate)
	Type(ctx context.Context, candidates []uiflow.Candidate, text string) error
	HasAny(ctx context.Context, candidates []uiflow.Candidate) (bool, error)
	FollowTab(ctx context.Context, urlFragment string, timeout time.Duration) (string, error)
	SaveCookies(ctx context.Context) error
	Surface() uiflow.Surface
	HealthCheck(ctx context.Context) error
}

// Generator runs the AI creation form and records the resulting editor tab.
type Generator struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	browser  Browser
	notifier notifications.Service
}

// NewGenerator constructs the generation stage handler.
func NewGenerator(cfg *config.Config, store *queue.Store, logger *slog.Logger, browser Browser, notifier notifications.Service) *Generator {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "generating"))
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Generator{cfg: cfg, store: store, logger: stageLogger, browser: browser, notifier: notifier}
}

func (g *Generator) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, g.logger)
	if strings.TrimSpace(item.Prompt) == "" {
		return services.Wrap(
			services.ErrValidation,
			"generating",
			"validate inputs",
			"Queue item has no prompt; add the job with a prompt or fix the sheet row",
			nil,
		)
	}
	item.InitProgress("Generating", "Preparing video generation")
	logger.Info("starting generation preparation", logging.String("title", item.Title))
	return nil
}

func (g *Generator) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, g.logger)
	logger.Info("starting generation",
		logging.String("title", item.Title),
		logging.Int("prompt_chars", len(item.Prompt)),
	)

	if err := g.browser.Launch(ctx); err != nil {
		return services.Wrap(services.ErrExternalTool, "generating", "launch browser", "Browser failed to start; check browser.binary", err)
	}

	item.SetProgress("Generating", "Opening editor", 5)
	if err := g.browser.Navigate(ctx, g.cfg.Browser.EditorURL); err != nil {
		return g.wrapSurfaceErr(err, "open editor", "Editor page failed to load; check network and editor_url")
	}
	g.browser.ClosePopups(ctx, popupCloseCandidates)

	item.SetProgress("Generating", "Filling prompt", 15)
	if err := g.browser.Type(ctx, promptCandidates, item.Prompt); err != nil {
		return g.wrapSurfaceErr(err, "fill prompt", "Prompt field not found; the editor layout may have changed")
	}

	g.selectOptions(ctx, logger)

	item.SetProgress("Generating", "Starting generation", 30)
	match, err := uiflow.Resolve(ctx, g.browser.Surface(), generateCandidates)
	if err != nil {
		return g.wrapSurfaceErr(err, "click generate", "Generate control not found; the editor layout may have changed")
	}
	if err := match.Element.Click(ctx); err != nil {
		return g.wrapSurfaceErr(err, "click generate", "Generate click failed")
	}
	logger.Info("generation started", logging.String(logging.FieldSelector, match.Candidate.String()))

	item.SetProgress("Generating", "Waiting for editor tab", 40)
	tabTimeout := time.Duration(g.cfg.Generation.TabTimeout) * time.Second
	editorURL, err := g.browser.FollowTab(ctx, editorTabFragment, tabTimeout)
	if err != nil {
		return g.wrapSurfaceErr(err, "follow editor tab", "Generated project tab never appeared")
	}
	item.EditorURL = editorURL

	g.waitForCompletion(ctx, logger, item)

	if err := g.browser.SaveCookies(ctx); err != nil {
		logger.Warn("session cookie save failed", logging.Error(err))
	}

	item.SetProgressComplete("Generating", "Generation complete")
	if err := g.notifier.NotifyGenerationCompleted(ctx, item.Title); err != nil {
		logger.Warn("generation notification failed", logging.Error(err))
	}
	logger.Info("generation completed", logging.String("editor_url", editorURL))
	return nil
}

// selectOptions applies the configured form options. A missing option is a
// cosmetic loss, not a failure; the editor falls back to its own default.
func (g *Generator) selectOptions(ctx context.Context, logger *slog.Logger) {
	options := []struct {
		name  string
		value string
	}{
		{"visual_style", g.cfg.Generation.VisualStyle},
		{"voice", g.cfg.Generation.Voice},
		{"duration_option", g.cfg.Generation.DurationOption},
		{"aspect_ratio", g.cfg.Generation.AspectRatio},
	}
	for _, opt := range options {
		if strings.TrimSpace(opt.value) == "" {
			continue
		}
		match, err := uiflow.Resolve(ctx, g.browser.Surface(), optionCandidates(opt.value))
		if err != nil {
			logger.Warn("form option not found, using editor default",
				logging.String("option", opt.name),
				logging.String("value", opt.value),
			)
			continue
		}
		if err := match.Element.Click(ctx); err != nil {
			logger.Warn("form option click failed",
				logging.String("option", opt.name),
				logging.Error(err),
			)
			continue
		}
		logger.Debug("form option selected",
			logging.String("option", opt.name),
			logging.String("value", opt.value),
		)
	}
}

// waitForCompletion polls the editor tab for export controls. Hitting the
// cap does not fail the stage: long renders usually finish while the next
// stage is retrying its own selectors.
func (g *Generator) waitForCompletion(ctx context.Context, logger *slog.Logger, item *queue.Item) {
	interval := time.Duration(g.cfg.Generation.CompletionInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	timeout := time.Duration(g.cfg.Generation.CompletionTimeout) * time.Second
	deadline := time.Now().Add(timeout)

	item.SetProgress("Generating", "Waiting for render to finish", 60)
	for {
		ready, err := g.browser.HasAny(ctx, completionCandidates)
		if err != nil {
			logger.Warn("completion probe failed", logging.Error(err))
			return
		}
		if ready {
			logger.Info("render complete")
			return
		}
		if time.Now().After(deadline) {
			logger.Warn("render did not finish within the completion timeout, continuing",
				logging.Duration("timeout", timeout),
			)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (g *Generator) HealthCheck(ctx context.Context) stage.Health {
	if g.browser == nil {
		return stage.Unhealthy("generating", "no browser session configured")
	}
	if err := g.browser.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("generating", err.Error())
	}
	return stage.Healthy("generating")
}

// wrapSurfaceErr keeps browser-loss errors transient so the workflow can
// retry after a relaunch; everything else is an external tool failure.
func (g *Generator) wrapSurfaceErr(err error, operation, message string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	marker := services.ErrExternalTool
	if errors.Is(err, uiflow.ErrSurfaceUnavailable) {
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "generating", operation, message, err)
}
