package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"reelforge/internal/config"
	"reelforge/internal/deps"
	"reelforge/internal/sheets"
	"reelforge/internal/uploading"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSheetSource verifies the configured sheet is reachable and parseable.
// It uses a 15-second timeout and reports the number of pending rows.
func CheckSheetSource(ctx context.Context, cfg *config.Config) Result {
	const name = "Sheet source"

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	source := sheets.NewSource(cfg, nil)
	jobs, err := source.Fetch(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeFetchError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d pending rows", len(jobs))}
}

// CheckUploadToken verifies that the OAuth token file exists and has not expired.
func CheckUploadToken(path string) Result {
	const name = "Upload token"

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("invalid token path: %v", err)}
	}
	token, err := uploading.LoadToken(expanded)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", expanded, err)}
	}
	if !token.Valid() {
		return Result{Name: name, Detail: "token expired; re-run authorization"}
	}
	return Result{Name: name, Passed: true, Detail: "token valid"}
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
// Both the daemon and the CLI status command use this to avoid duplicating
// the requirements list.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	_ = ctx
	statuses := []deps.Status{deps.CheckBrowser(cfg.Browser)}

	var requirements []deps.Requirement
	if cfg.Editing.Enabled {
		requirements = append(requirements,
			deps.Requirement{
				Name:        "FFmpeg",
				Command:     cfg.FFmpegBinary(),
				Description: "Required for local post-processing",
			},
			deps.Requirement{
				Name:        "FFprobe",
				Command:     cfg.FFprobeBinary(),
				Description: "Required for media inspection",
			},
		)
	}
	return append(statuses, deps.CheckBinaries(requirements)...)
}

// summarizeFetchError produces a human-readable summary for sheet fetch failures.
func summarizeFetchError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "fetch timed out (sheet unreachable)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "fetch timed out (sheet unreachable)"
	}
	return err.Error()
}
