package exporting

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/config"
	"reelforge/internal/fileutil"
	"reelforge/internal/logging"
	"reelforge/internal/notifications"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
	"reelforge/internal/textutil"
	"reelforge/internal/uiflow"
)

// Browser exposes the editor session operations the exporter needs.
type Browser interface {
	Type(ctx context.Context, candidates []uiflow.Candidate, text string) error
	Surface() uiflow.Surface
	HealthCheck(ctx context.Context) error
}

// Exporter clicks through the export dialog and captures the download.
type Exporter struct {
	cfg      *config.Config
	store    *queue.Store
	logger   *slog.Logger
	browser  Browser
	notifier notifications.Service
}

// NewExporter constructs the export stage handler.
func NewExporter(cfg *config.Config, store *queue.Store, logger *slog.Logger, browser Browser, notifier notifications.Service) *Exporter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "exporting"))
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Exporter{cfg: cfg, store: store, logger: stageLogger, browser: browser, notifier: notifier}
}

func (e *Exporter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	if item.EditorURL == "" {
		return services.Wrap(
			services.ErrValidation,
			"exporting",
			"validate inputs",
			"No editor URL recorded for this item; generation must complete before export",
			nil,
		)
	}
	item.InitProgress("Exporting", "Preparing export")
	logger.Info("starting export preparation", logging.String("title", item.Title))
	return nil
}

func (e *Exporter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	filename := ExportFileName(item.Title, e.cfg.Export.FilenameMaxLength)
	logger.Info("starting export",
		logging.String("title", item.Title),
		logging.String("filename", filename),
	)

	item.SetProgress("Exporting", "Opening export dialog", 10)
	if err := e.click(ctx, exportOpenCandidates, "open export dialog"); err != nil {
		return err
	}

	// A missing name field only costs us the output name; the watcher finds
	// the file regardless of what the editor called it.
	if err := e.browser.Type(ctx, filenameCandidates, filename); err != nil {
		if errors.Is(err, uiflow.ErrSurfaceUnavailable) {
			return e.wrap(err, "type filename", "Browser session lost during export")
		}
		logger.Warn("filename field not found, keeping editor default name", logging.Error(err))
	}

	item.SetProgress("Exporting", "Confirming export", 25)
	if err := e.click(ctx, confirmCandidates, "confirm export"); err != nil {
		return err
	}

	item.SetProgress("Exporting", "Waiting for render", 40)
	runner := uiflow.NewRunner(logger, 15*time.Second)
	outcome := runner.Run(ctx, e.browser.Surface(), []uiflow.Step{{
		Name:   "wait for render",
		Action: uiflow.ActionWait,
		Wait:   time.Duration(e.cfg.Export.RenderWaitSeconds) * time.Second,
	}})
	if !outcome.OK {
		return outcome.Err
	}

	item.SetProgress("Exporting", "Waiting for download", 60)
	downloaded, err := WaitForDownload(ctx, WatchOptions{
		Dir:     e.cfg.Paths.DownloadDir,
		Timeout: time.Duration(e.cfg.Export.DownloadTimeout) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return services.Wrap(services.ErrTimeout, "exporting", "wait for download", "Export download never finished; check download_dir and the editor render", err)
	}

	dest := fileutil.UniquePath(filepath.Join(
		item.StagingRoot(e.cfg.Paths.StagingDir),
		filename+filepath.Ext(downloaded),
	))
	if err := fileutil.MoveFile(downloaded, dest); err != nil {
		return services.Wrap(services.ErrTransient, "exporting", "move download", "Could not move the download into staging; check staging_dir permissions", err)
	}
	item.DownloadedFile = dest

	item.SetProgressComplete("Exporting", "Export complete")
	if err := e.notifier.NotifyExportCompleted(ctx, item.Title, filepath.Base(dest)); err != nil {
		logger.Warn("export notification failed", logging.Error(err))
	}
	logger.Info("export completed", logging.String("file", dest))
	return nil
}

func (e *Exporter) click(ctx context.Context, candidates []uiflow.Candidate, operation string) error {
	match, err := uiflow.Resolve(ctx, e.browser.Surface(), candidates)
	if err != nil {
		return e.wrap(err, operation, "Export control not found; the editor layout may have changed")
	}
	if err := match.Element.Click(ctx); err != nil {
		return e.wrap(err, operation, "Export control click failed")
	}
	return nil
}

func (e *Exporter) wrap(err error, operation, message string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	marker := services.ErrExternalTool
	if errors.Is(err, uiflow.ErrSurfaceUnavailable) {
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "exporting", operation, message, err)
}

func (e *Exporter) HealthCheck(ctx context.Context) stage.Health {
	if e.browser == nil {
		return stage.Unhealthy("exporting", "no browser session configured")
	}
	if err := e.browser.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("exporting", err.Error())
	}
	return stage.Healthy("exporting")
}

// ExportFileName builds the sanitized, length-capped name typed into the
// export dialog.
func ExportFileName(title string, maxLength int) string {
	name := textutil.SanitizeFileName(strings.TrimSpace(title))
	if name == "" {
		name = "reelforge-export"
	}
	return textutil.TruncateName(name, maxLength)
}
