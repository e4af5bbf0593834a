package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusGenerated  Status = "generated"
	StatusMatching   Status = "matching"
	StatusMatched    Status = "matched"
	StatusExporting  Status = "exporting"
	StatusExported   Status = "exported"
	StatusEditing    Status = "editing"
	StatusEdited     Status = "edited"
	StatusUploading  Status = "uploading"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// DaemonStopReason is the error message set when items are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped"

var allStatuses = []Status{
	StatusPending,
	StatusGenerating,
	StatusGenerated,
	StatusMatching,
	StatusMatched,
	StatusExporting,
	StatusExported,
	StatusEditing,
	StatusEdited,
	StatusUploading,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusGenerating: {},
	StatusMatching:   {},
	StatusExporting:  {},
	StatusEditing:    {},
	StatusUploading:  {},
}

type statusTransition struct {
	from Status
	to   Status
}

var stageRollbackTransitions = []statusTransition{
	{from: StatusGenerating, to: StatusPending},
	{from: StatusMatching, to: StatusGenerated},
	{from: StatusExporting, to: StatusMatched},
	{from: StatusEditing, to: StatusExported},
	{from: StatusUploading, to: StatusEdited},
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}

// HealthSummary describes aggregated queue counts per key lifecycle states.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Failed     int
	Completed  int
}

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID              int64
	Title           string
	Prompt          string
	Status          Status
	EditorURL       string
	DownloadedFile  string
	EditedFile      string
	FinalFile       string
	SourceRef       string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	MetadataJSON    string
	LastHeartbeat   *time.Time
	StockMatched    bool
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing returns true when the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsProcessingStatus reports whether a status reflects an in-flight operation.
func IsProcessingStatus(status Status) bool {
	_, ok := processingStatuses[status]
	return ok
}

// InitProgress resets progress fields for a new stage.
// If ProgressStage is currently empty, it is set to the provided stage value;
// otherwise the existing stage is preserved (to support resume scenarios).
// ProgressMessage is set to message, ProgressPercent is reset to 0,
// and ErrorMessage is cleared.
func (i *Item) InitProgress(stage, message string) {
	if i.ProgressStage == "" {
		i.ProgressStage = stage
	}
	i.ProgressMessage = message
	i.ProgressPercent = 0
	i.ErrorMessage = ""
}

// SetProgress updates all three progress fields atomically.
// Use this instead of setting ProgressStage, ProgressPercent, and ProgressMessage individually.
func (i *Item) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetProgressComplete sets progress to 100% with the given stage and message.
// Convenience method for stage completion.
func (i *Item) SetProgressComplete(stage, message string) {
	i.SetProgress(stage, message, 100)
}

// SetFailed marks the item as failed with the given error message.
// Clears heartbeat and sets progress fields appropriately.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = message
	i.ProgressPercent = 0
	i.ProgressMessage = message
	i.LastHeartbeat = nil
	i.ProgressStage = "Failed"
}

// StageKey returns the normalized stage identifier used in API/CLI presentation.
func (s Status) StageKey() string {
	switch s {
	case "":
		return ""
	case StatusPending:
		return "planned"
	case StatusCompleted:
		return "final"
	case StatusGenerating,
		StatusGenerated,
		StatusMatching,
		StatusMatched,
		StatusExporting,
		StatusExported,
		StatusEditing,
		StatusEdited,
		StatusUploading,
		StatusFailed:
		return string(s)
	default:
		return ""
	}
}

// ProcessingLane partitions workflow into browser-bound stages and local work.
// Browser stages share one editor session and must run one at a time; editing
// and uploading only touch local files and the upload API.
type ProcessingLane string

const (
	LaneBrowser ProcessingLane = "browser"
	LaneLocal   ProcessingLane = "local"
)

// LaneForItem maps a queue item to its processing lane.
func LaneForItem(item *Item) ProcessingLane {
	if item == nil {
		return LaneBrowser
	}
	switch item.Status {
	case StatusPending, StatusGenerating, StatusGenerated, StatusMatching, StatusMatched, StatusExporting:
		return LaneBrowser
	case StatusExported, StatusEditing, StatusEdited, StatusUploading, StatusCompleted:
		return LaneLocal
	case StatusFailed:
		if item.DownloadedFile != "" {
			return LaneLocal
		}
		return LaneBrowser
	default:
		return LaneBrowser
	}
}
