package stockmatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
	"reelforge/internal/uiflow"
)

// Browser exposes the pieces of the editor session the matcher needs.
type Browser interface {
	Surface() uiflow.Surface
	HealthCheck(ctx context.Context) error
}

// Matcher drives the stock media matching flow against the open editor tab.
type Matcher struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	browser Browser
}

// NewMatcher constructs the stock-match stage handler.
func NewMatcher(cfg *config.Config, store *queue.Store, logger *slog.Logger, browser Browser) *Matcher {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "stockmatch"))
	}
	return &Matcher{cfg: cfg, store: store, logger: stageLogger, browser: browser}
}

func (m *Matcher) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, m.logger)
	item.InitProgress("Matching stock media", "Preparing stock match")
	logger.Info("starting stock match preparation", logging.String("title", item.Title))
	return nil
}

// Execute runs the fixed step sequence. A step that cannot be completed is
// logged and skipped past; the item still proceeds to export. A lost browser
// session fails the job.
func (m *Matcher) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, m.logger)

	if !m.cfg.StockMatch.Enabled {
		logger.Info("stock matching disabled, skipping")
		item.StockMatched = false
		item.SetProgressComplete("Matching stock media", "Stock matching disabled")
		return nil
	}
	if item.EditorURL == "" {
		return services.Wrap(
			services.ErrValidation,
			"matching",
			"validate inputs",
			"No editor URL recorded for this item; generation must complete before stock matching",
			nil,
		)
	}

	steps := Steps(m.cfg.StockMatch)
	logger.Info("starting stock match",
		logging.String("title", item.Title),
		logging.Int("steps", len(steps)),
		logging.Duration("wait", time.Duration(m.cfg.StockMatch.WaitSeconds)*time.Second),
	)
	item.SetProgress("Matching stock media", "Running stock match flow", 10)

	interval := time.Duration(m.cfg.StockMatch.ProgressInterval) * time.Second
	runner := uiflow.NewRunner(logger, interval)
	outcome := runner.Run(ctx, m.browser.Surface(), steps)

	if outcome.OK {
		item.StockMatched = true
		item.SetProgressComplete("Matching stock media", "Stock media matched")
		logger.Info("stock match completed", logging.Int("steps", len(outcome.Steps)))
		return nil
	}

	if errors.Is(outcome.Err, uiflow.ErrSurfaceUnavailable) {
		return services.Wrap(
			services.ErrTransient,
			"matching",
			"run stock match flow",
			"Browser session lost during stock matching; restart the daemon or check the browser binary",
			outcome.Err,
		)
	}
	if errors.Is(outcome.Err, context.Canceled) || errors.Is(outcome.Err, context.DeadlineExceeded) {
		return outcome.Err
	}

	failed := failedStep(outcome)
	logger.Warn("stock match step failed, continuing without matched media",
		logging.String(logging.FieldStep, failed),
		logging.Error(outcome.Err),
	)
	item.StockMatched = false
	item.SetProgressComplete("Matching stock media", fmt.Sprintf("Stock match skipped (step %q failed)", failed))
	return nil
}

func (m *Matcher) HealthCheck(ctx context.Context) stage.Health {
	if !m.cfg.StockMatch.Enabled {
		return stage.Healthy("stockmatch")
	}
	if m.browser == nil {
		return stage.Unhealthy("stockmatch", "no browser session configured")
	}
	if err := m.browser.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("stockmatch", err.Error())
	}
	return stage.Healthy("stockmatch")
}

// failedStep names the step recorded as not OK, falling back to the last
// attempted step when the runner failed before recording one.
func failedStep(outcome uiflow.Outcome) string {
	for _, result := range outcome.Steps {
		if !result.OK {
			return result.Name
		}
	}
	if len(outcome.Steps) > 0 {
		return outcome.Steps[len(outcome.Steps)-1].Name
	}
	return "unknown"
}
