package editing

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/queue"
	"reelforge/internal/services"
	"reelforge/internal/stage"
)

// Editor applies the configured ffmpeg pass to downloaded videos.
type Editor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
}

// NewEditor constructs the editing stage handler.
func NewEditor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Editor {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "editing"))
	}
	return &Editor{cfg: cfg, store: store, logger: stageLogger}
}

func (e *Editor) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)
	if strings.TrimSpace(item.DownloadedFile) == "" {
		return services.Wrap(
			services.ErrValidation,
			"editing",
			"validate inputs",
			"No downloaded file present for editing; run export before editing",
			nil,
		)
	}
	if _, err := os.Stat(item.DownloadedFile); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"editing",
			"validate inputs",
			fmt.Sprintf("Downloaded file missing on disk: %s", item.DownloadedFile),
			err,
		)
	}
	item.InitProgress("Editing", "Preparing local edit")
	logger.Info("starting edit preparation", logging.String("file", item.DownloadedFile))
	return nil
}

func (e *Editor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, e.logger)

	if !e.cfg.Editing.Enabled {
		logger.Info("editing disabled, passing exported file through")
		item.EditedFile = item.DownloadedFile
		item.SetProgressComplete("Editing", "Editing skipped")
		return nil
	}

	videoFilter, audioFilter := BuildFilters(e.cfg.Editing)
	videoFilters := make([]string, 0, 3)
	if videoFilter != "" {
		videoFilters = append(videoFilters, videoFilter)
	}

	var duration float64
	if probed, err := e.probeDuration(ctx, item.DownloadedFile); err != nil {
		logger.Warn("ffprobe failed, continuing without duration", logging.Error(err))
	} else {
		duration = probed
		logger.Info("probed source video",
			logging.String("file", filepath.Base(item.DownloadedFile)),
			logging.Float64("duration_seconds", duration),
		)
	}

	if e.cfg.Editing.ZoomEffects {
		if width, height, err := e.probeDimensions(ctx, item.DownloadedFile); err != nil {
			logger.Warn("dimension probe failed, skipping zoom", logging.Error(err))
		} else {
			videoFilters = append(videoFilters, ZoomFilter(width, height))
		}
	}

	if e.cfg.Editing.BurnSubtitles {
		subtitlePath := strings.TrimSuffix(item.DownloadedFile, filepath.Ext(item.DownloadedFile)) + ".srt"
		if _, err := os.Stat(subtitlePath); err == nil {
			videoFilters = append(videoFilters, SubtitleFilter(subtitlePath))
		} else {
			logger.Info("no subtitle file beside source, skipping burn-in",
				logging.String("file", filepath.Base(subtitlePath)),
			)
		}
	}

	overlayPath := e.cfg.Editing.OverlayImage
	var overlayFilter string
	if overlayPath != "" {
		if _, err := os.Stat(overlayPath); err != nil {
			logger.Warn("overlay image missing, skipping overlay", logging.String("path", overlayPath))
		} else if duration <= 0 {
			logger.Warn("source duration unknown, skipping overlay")
		} else {
			overlayFilter = OverlayFilter(duration*0.3, duration*0.7)
		}
	}

	if len(videoFilters) == 0 && audioFilter == "" && overlayFilter == "" {
		logger.Info("no filters enabled, passing exported file through")
		item.EditedFile = item.DownloadedFile
		item.SetProgressComplete("Editing", "Editing skipped")
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(item.DownloadedFile), filepath.Ext(item.DownloadedFile))
	output := filepath.Join(filepath.Dir(item.DownloadedFile), base+"-edited.mp4")

	args := []string{"-y", "-i", item.DownloadedFile}
	switch {
	case overlayFilter != "":
		args = append(args, "-i", overlayPath)
		graph := fmt.Sprintf("[0:v][1:v]%s[vout]", overlayFilter)
		if len(videoFilters) > 0 {
			graph = fmt.Sprintf("[0:v]%s[vmain];[vmain][1:v]%s[vout]",
				strings.Join(videoFilters, ","), overlayFilter)
		}
		args = append(args, "-filter_complex", graph, "-map", "[vout]", "-map", "0:a?")
	case len(videoFilters) > 0:
		args = append(args, "-vf", strings.Join(videoFilters, ","))
	}
	if audioFilter != "" {
		args = append(args, "-af", audioFilter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "20",
		"-c:a", "aac",
		output,
	)

	item.SetProgress("Editing", "Running ffmpeg", 20)
	logger.Info("running ffmpeg",
		logging.String("video_filter", strings.Join(videoFilters, ",")),
		logging.String("audio_filter", audioFilter),
		logging.Bool("overlay", overlayFilter != ""),
	)

	cmd := exec.CommandContext(ctx, e.cfg.FFmpegBinary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(
			services.ErrExternalTool,
			"editing",
			"run ffmpeg",
			fmt.Sprintf("ffmpeg failed: %s", tail(stderr.String(), 400)),
			err,
		)
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() == 0 {
		return services.Wrap(
			services.ErrExternalTool,
			"editing",
			"verify output",
			"ffmpeg exited cleanly but produced no output",
			err,
		)
	}

	item.EditedFile = output
	item.SetProgressComplete("Editing", "Editing complete")
	logger.Info("editing completed", logging.String("file", output))
	return nil
}

// probeDuration asks ffprobe for the container duration in seconds.
func (e *Editor) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, e.cfg.FFprobeBinary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration: %w", err)
	}
	return duration, nil
}

// probeDimensions asks ffprobe for the width and height of the first
// video stream.
func (e *Editor) probeDimensions(ctx context.Context, path string) (int, int, error) {
	cmd := exec.CommandContext(ctx, e.cfg.FFprobeBinary(),
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe: %w", err)
	}
	parts := strings.Split(strings.TrimSpace(string(out)), ",")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("parse ffprobe dimensions: %q", strings.TrimSpace(string(out)))
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse width: %w", err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("parse height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	return width, height, nil
}

func (e *Editor) HealthCheck(ctx context.Context) stage.Health {
	_ = ctx
	if !e.cfg.Editing.Enabled {
		return stage.Healthy("editing")
	}
	for _, binary := range []string{e.cfg.FFmpegBinary(), e.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("editing", fmt.Sprintf("%s not found on PATH", binary))
		}
	}
	return stage.Healthy("editing")
}

func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
