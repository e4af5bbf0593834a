package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid or inconsistent values.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateStockMatch(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateEditing(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	required := map[string]string{
		"paths.staging_dir":  c.Paths.StagingDir,
		"paths.download_dir": c.Paths.DownloadDir,
		"paths.log_dir":      c.Paths.LogDir,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}

func (c *Config) validateBrowser() error {
	if strings.TrimSpace(c.Browser.EditorURL) == "" {
		return fmt.Errorf("browser.editor_url is required")
	}
	parsed, err := url.Parse(c.Browser.EditorURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("browser.editor_url must be an absolute URL")
	}
	return ensurePositiveMap(map[string]int{
		"browser.viewport_width":     c.Browser.ViewportWidth,
		"browser.viewport_height":    c.Browser.ViewportHeight,
		"browser.navigation_timeout": c.Browser.NavigationTimeout,
	})
}

func (c *Config) validateGeneration() error {
	return ensurePositiveMap(map[string]int{
		"generation.tab_timeout":         c.Generation.TabTimeout,
		"generation.completion_timeout":  c.Generation.CompletionTimeout,
		"generation.completion_interval": c.Generation.CompletionInterval,
	})
}

func (c *Config) validateStockMatch() error {
	if c.StockMatch.WaitSeconds < 0 {
		return fmt.Errorf("stock_match.wait_seconds must not be negative")
	}
	if c.StockMatch.ProgressInterval <= 0 {
		return fmt.Errorf("stock_match.progress_interval must be greater than zero")
	}
	return nil
}

func (c *Config) validateExport() error {
	return ensurePositiveMap(map[string]int{
		"export.filename_max_length": c.Export.FilenameMaxLength,
		"export.render_wait_seconds": c.Export.RenderWaitSeconds,
		"export.download_timeout":    c.Export.DownloadTimeout,
	})
}

func (c *Config) validateEditing() error {
	if !c.Editing.Enabled {
		return nil
	}
	if c.Editing.Speed < 0.5 || c.Editing.Speed > 2.0 {
		return fmt.Errorf("editing.speed must be between 0.5 and 2.0")
	}
	if c.Editing.SilenceThreshold >= 0 {
		return fmt.Errorf("editing.silence_threshold_db must be negative")
	}
	return nil
}

func (c *Config) validateUpload() error {
	if !c.Upload.Enabled {
		return nil
	}
	switch c.Upload.PrivacyStatus {
	case "private", "unlisted", "public":
	default:
		return fmt.Errorf("upload.privacy_status must be private, unlisted, or public")
	}
	if strings.TrimSpace(c.Upload.TokenFile) == "" {
		return fmt.Errorf("upload.token_file is required when upload is enabled")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.heartbeat_interval":   c.Workflow.HeartbeatInterval,
		"workflow.heartbeat_timeout":    c.Workflow.HeartbeatTimeout,
		"workflow.job_sync_interval":    c.Workflow.JobSyncInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return fmt.Errorf("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error")
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be greater than zero", key)
		}
	}
	return nil
}
