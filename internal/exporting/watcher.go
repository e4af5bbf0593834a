package exporting

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"reelforge/internal/logging"
)

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
	".mkv":  {},
}

// partialSuffixes mark in-flight browser downloads.
var partialSuffixes = []string{".crdownload", ".part", ".tmp", ".download"}

// WatchOptions configures a download watch.
type WatchOptions struct {
	Dir     string
	Timeout time.Duration
	// PollInterval controls how often candidate sizes are re-checked.
	// Non-positive values fall back to 500ms.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// WaitForDownload blocks until a finished video file appears in the watched
// directory. A file counts as finished once it has a video extension, no
// partial-download suffix, and a size that held steady across one poll.
// Only files created after the watch started are considered.
func WaitForDownload(ctx context.Context, opts WatchOptions) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(opts.Dir); err != nil {
		return "", fmt.Errorf("watch %s: %w", opts.Dir, err)
	}

	start := time.Now()
	deadline := start.Add(opts.Timeout)
	// Last observed size per candidate path. A candidate whose size repeats
	// across polls is considered complete.
	sizes := make(map[string]int64)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return "", fmt.Errorf("watcher closed while waiting for download")
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if isCandidate(event.Name) {
				if _, tracked := sizes[event.Name]; !tracked {
					logger.Debug("download candidate appeared", logging.String("file", filepath.Base(event.Name)))
					sizes[event.Name] = -1
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return "", fmt.Errorf("watcher closed while waiting for download")
			}
			logger.Warn("download watcher error", logging.Error(err))
		case <-ticker.C:
			// Scan as well as listen: events can be missed when the browser
			// renames a partial file into place.
			for _, path := range scanDir(opts.Dir, start) {
				if _, tracked := sizes[path]; !tracked {
					sizes[path] = -1
				}
			}
			for path, last := range sizes {
				info, err := os.Stat(path)
				if err != nil {
					delete(sizes, path)
					continue
				}
				if info.Size() > 0 && info.Size() == last {
					logger.Info("download complete",
						logging.String("file", filepath.Base(path)),
						logging.Int64("bytes", info.Size()),
					)
					return path, nil
				}
				sizes[path] = info.Size()
			}
			if time.Now().After(deadline) {
				return "", fmt.Errorf("no finished download in %s within %s", opts.Dir, opts.Timeout)
			}
		}
	}
}

func isCandidate(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	_, ok := videoExtensions[filepath.Ext(name)]
	return ok
}

func scanDir(dir string, since time.Time) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isCandidate(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		out = append(out, path)
	}
	return out
}
