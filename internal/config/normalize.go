package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBrowser(); err != nil {
		return err
	}
	if err := c.normalizeEditing(); err != nil {
		return err
	}
	if err := c.normalizeUpload(); err != nil {
		return err
	}
	c.normalizeSheets()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBrowser() error {
	c.Browser.Binary = strings.TrimSpace(c.Browser.Binary)
	if c.Browser.Binary == "" {
		if env, ok := os.LookupEnv("REELFORGE_BROWSER"); ok {
			c.Browser.Binary = strings.TrimSpace(env)
		}
	}
	c.Browser.EditorURL = strings.TrimSpace(c.Browser.EditorURL)
	var err error
	if c.Browser.SessionFile, err = expandPath(c.Browser.SessionFile); err != nil {
		return fmt.Errorf("browser.session_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeEditing() error {
	c.Editing.OverlayImage = strings.TrimSpace(c.Editing.OverlayImage)
	if c.Editing.OverlayImage == "" {
		return nil
	}
	var err error
	if c.Editing.OverlayImage, err = expandPath(c.Editing.OverlayImage); err != nil {
		return fmt.Errorf("editing.overlay_image: %w", err)
	}
	return nil
}

func (c *Config) normalizeUpload() error {
	c.Upload.PrivacyStatus = strings.ToLower(strings.TrimSpace(c.Upload.PrivacyStatus))
	c.Upload.CategoryID = strings.TrimSpace(c.Upload.CategoryID)
	var err error
	if c.Upload.TokenFile, err = expandPath(c.Upload.TokenFile); err != nil {
		return fmt.Errorf("upload.token_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeSheets() {
	c.Sheets.Source = strings.TrimSpace(c.Sheets.Source)
	if c.Sheets.Source == "" {
		if env, ok := os.LookupEnv("REELFORGE_SHEETS_SOURCE"); ok {
			c.Sheets.Source = strings.TrimSpace(env)
		}
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if env, ok := os.LookupEnv("REELFORGE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(env)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
