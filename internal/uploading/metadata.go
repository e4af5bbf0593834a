package uploading

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelforge/internal/config"
	"reelforge/internal/queue"
)

var titleCaser = cases.Title(language.English)

// VideoMetadata is the snippet/status body sent when opening a resumable
// upload session.
type VideoMetadata struct {
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
		CategoryID  string   `json:"categoryId,omitempty"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

// BuildMetadata derives the upload metadata from the queue item and upload
// config. Titles are title-cased; descriptions reuse the generation prompt.
func BuildMetadata(item *queue.Item, cfg config.Upload) VideoMetadata {
	var meta VideoMetadata
	meta.Snippet.Title = VideoTitle(item.Title)
	meta.Snippet.Description = strings.TrimSpace(item.Prompt)
	meta.Snippet.Tags = cfg.Tags
	meta.Snippet.CategoryID = cfg.CategoryID
	meta.Status.PrivacyStatus = cfg.PrivacyStatus
	return meta
}

// VideoTitle normalizes a queue item title for publication.
func VideoTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return titleCaser.String(title)
}
