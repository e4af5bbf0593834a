package queue

import (
	"fmt"
	"path/filepath"
	"strings"

	"reelforge/internal/textutil"
)

// StagingRoot returns the per-item staging directory rooted at base.
func (i Item) StagingRoot(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	segment := strings.TrimSpace(i.Title)
	if segment == "" {
		segment = fmt.Sprintf("job-%d", i.ID)
	} else {
		segment = fmt.Sprintf("job-%d-%s", i.ID, segment)
	}
	segment = textutil.SanitizeFileName(segment)
	return filepath.Join(base, segment)
}

func inferTitleFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	ext := filepath.Ext(base)
	title := strings.TrimSuffix(base, ext)
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled"
	}
	return title
}
