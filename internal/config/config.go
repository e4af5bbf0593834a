package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir  string `toml:"staging_dir"`
	DownloadDir string `toml:"download_dir"`
	LibraryDir  string `toml:"library_dir"`
	LogDir      string `toml:"log_dir"`
}

// Browser contains configuration for the automated browser surface.
type Browser struct {
	Binary            string `toml:"binary"`
	Headless          bool   `toml:"headless"`
	ViewportWidth     int    `toml:"viewport_width"`
	ViewportHeight    int    `toml:"viewport_height"`
	NavigationTimeout int    `toml:"navigation_timeout"`
	SessionFile       string `toml:"session_file"`
	EditorURL         string `toml:"editor_url"`
}

// Generation contains configuration for the video generation stage.
type Generation struct {
	VisualStyle        string `toml:"visual_style"`
	Voice              string `toml:"voice"`
	DurationOption     string `toml:"duration_option"`
	AspectRatio        string `toml:"aspect_ratio"`
	TabTimeout         int    `toml:"tab_timeout"`
	CompletionTimeout  int    `toml:"completion_timeout"`
	CompletionInterval int    `toml:"completion_interval"`
}

// StockMatch contains configuration for the stock media matching stage.
type StockMatch struct {
	Enabled          bool `toml:"enabled"`
	WaitSeconds      int  `toml:"wait_seconds"`
	ProgressInterval int  `toml:"progress_interval"`
}

// Export contains configuration for the export and download stage.
type Export struct {
	FilenameMaxLength int `toml:"filename_max_length"`
	RenderWaitSeconds int `toml:"render_wait_seconds"`
	DownloadTimeout   int `toml:"download_timeout"`
}

// Editing contains configuration for local ffmpeg post-processing.
type Editing struct {
	Enabled           bool    `toml:"enabled"`
	Speed             float64 `toml:"speed"`
	RemoveSilence     bool    `toml:"remove_silence"`
	SilenceThreshold  int     `toml:"silence_threshold_db"`
	NormalizeLoudness bool    `toml:"normalize_loudness"`
	ZoomEffects       bool    `toml:"zoom_effects"`
	BurnSubtitles     bool    `toml:"burn_subtitles"`
	OverlayImage      string  `toml:"overlay_image"`
}

// Upload contains configuration for the video platform upload stage.
type Upload struct {
	Enabled       bool     `toml:"enabled"`
	PrivacyStatus string   `toml:"privacy_status"`
	CategoryID    string   `toml:"category_id"`
	TokenFile     string   `toml:"token_file"`
	Tags          []string `toml:"tags"`
}

// Sheets contains configuration for the spreadsheet job source.
type Sheets struct {
	Source         string `toml:"source"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Generation     bool   `toml:"generation"`
	Export         bool   `toml:"export"`
	Upload         bool   `toml:"upload"`
	Queue          bool   `toml:"queue"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for daemon timing and intervals.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	HeartbeatInterval  int `toml:"heartbeat_interval"`
	HeartbeatTimeout   int `toml:"heartbeat_timeout"`
	JobSyncInterval    int `toml:"job_sync_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Reelforge.
//
// Configuration sections by subsystem:
//   - Paths: staging, download, library, and log directories
//   - Browser: editor URL, browser binary, viewport, session cookies
//   - Generation: form options and completion polling for the generation stage
//   - StockMatch: stock media matching wait and progress cadence
//   - Export: export dialog and download-watch settings
//   - Editing: local ffmpeg post-processing toggles
//   - Upload: video platform upload settings
//   - Sheets: spreadsheet job source
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and timeouts
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Browser       Browser       `toml:"browser"`
	Generation    Generation    `toml:"generation"`
	StockMatch    StockMatch    `toml:"stock_match"`
	Export        Export        `toml:"export"`
	Editing       Editing       `toml:"editing"`
	Upload        Upload        `toml:"upload"`
	Sheets        Sheets        `toml:"sheets"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/reelforge/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// LibraryDir is created on a best-effort basis so the daemon can run when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.DownloadDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for editing.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
