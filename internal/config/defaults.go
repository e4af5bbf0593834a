package config

const (
	defaultStagingDir  = "~/.local/share/reelforge/staging"
	defaultDownloadDir = "~/.local/share/reelforge/downloads"
	defaultLibraryDir  = "~/videos/reelforge"
	defaultLogDir      = "~/.local/share/reelforge/logs"

	defaultBrowserHeadless      = true
	defaultViewportWidth        = 1920
	defaultViewportHeight       = 1080
	defaultNavigationTimeout    = 60
	defaultSessionFile          = "~/.config/reelforge/session.json"
	defaultEditorURL            = "https://www.capcut.com/ai-creator/start"
	defaultVisualStyle          = "Realistic Film"
	defaultVoice                = "Mature Male"
	defaultDurationOption       = "30s-60s"
	defaultAspectRatio          = "16:9"
	defaultTabTimeout           = 30
	defaultCompletionTimeout    = 300
	defaultCompletionInterval   = 5
	defaultStockMatchEnabled    = true
	defaultStockMatchWait       = 90
	defaultStockMatchProgress   = 15
	defaultFilenameMaxLength    = 45
	defaultRenderWaitSeconds    = 60
	defaultDownloadTimeout      = 600
	defaultEditingEnabled       = true
	defaultEditingSpeed         = 1.05
	defaultRemoveSilence        = true
	defaultSilenceThresholdDB   = -35
	defaultNormalizeLoudness    = true
	defaultZoomEffects          = true
	defaultBurnSubtitles        = true
	defaultUploadEnabled        = false
	defaultPrivacyStatus        = "private"
	defaultCategoryID           = "22"
	defaultTokenFile            = "~/.config/reelforge/youtube_token.json"
	defaultSheetsRequestTimeout = 30
	defaultNtfyRequestTimeout   = 10
	defaultQueuePollInterval    = 5
	defaultErrorRetryInterval   = 30
	defaultHeartbeatInterval    = 10
	defaultHeartbeatTimeout     = 120
	defaultJobSyncInterval      = 300
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 7
)

// Default returns a configuration populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:  defaultStagingDir,
			DownloadDir: defaultDownloadDir,
			LibraryDir:  defaultLibraryDir,
			LogDir:      defaultLogDir,
		},
		Browser: Browser{
			Headless:          defaultBrowserHeadless,
			ViewportWidth:     defaultViewportWidth,
			ViewportHeight:    defaultViewportHeight,
			NavigationTimeout: defaultNavigationTimeout,
			SessionFile:       defaultSessionFile,
			EditorURL:         defaultEditorURL,
		},
		Generation: Generation{
			VisualStyle:        defaultVisualStyle,
			Voice:              defaultVoice,
			DurationOption:     defaultDurationOption,
			AspectRatio:        defaultAspectRatio,
			TabTimeout:         defaultTabTimeout,
			CompletionTimeout:  defaultCompletionTimeout,
			CompletionInterval: defaultCompletionInterval,
		},
		StockMatch: StockMatch{
			Enabled:          defaultStockMatchEnabled,
			WaitSeconds:      defaultStockMatchWait,
			ProgressInterval: defaultStockMatchProgress,
		},
		Export: Export{
			FilenameMaxLength: defaultFilenameMaxLength,
			RenderWaitSeconds: defaultRenderWaitSeconds,
			DownloadTimeout:   defaultDownloadTimeout,
		},
		Editing: Editing{
			Enabled:           defaultEditingEnabled,
			Speed:             defaultEditingSpeed,
			RemoveSilence:     defaultRemoveSilence,
			SilenceThreshold:  defaultSilenceThresholdDB,
			NormalizeLoudness: defaultNormalizeLoudness,
			ZoomEffects:       defaultZoomEffects,
			BurnSubtitles:     defaultBurnSubtitles,
		},
		Upload: Upload{
			Enabled:       defaultUploadEnabled,
			PrivacyStatus: defaultPrivacyStatus,
			CategoryID:    defaultCategoryID,
			TokenFile:     defaultTokenFile,
		},
		Sheets: Sheets{
			RequestTimeout: defaultSheetsRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			Generation:     true,
			Export:         true,
			Upload:         true,
			Queue:          true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			JobSyncInterval:    defaultJobSyncInterval,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
