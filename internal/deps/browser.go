package deps

import (
	"reelforge/internal/browser"
	"reelforge/internal/config"
)

// CheckBrowser resolves the Chromium binary the editor session will launch.
// An explicit browser.binary must resolve as configured; otherwise the PATH
// fallback names are searched, matching what the session does at launch.
func CheckBrowser(cfg config.Browser) Status {
	status := Status{
		Name:        "Browser",
		Description: "Required for driving the web editor",
	}
	path, err := browser.ResolveBinary(cfg)
	if err != nil {
		status.Command = cfg.Binary
		status.Detail = err.Error()
		return status
	}
	status.Command = path
	status.Available = true
	return status
}
