// Package browser owns the Chromium session the pipeline drives. It wraps
// go-rod behind a Session type that launches or reuses a browser, restores
// saved login cookies, and exposes the live page as a uiflow.Surface so the
// stage handlers never touch rod directly.
//
// Loss of the browser or page is reported as uiflow.ErrSurfaceUnavailable so
// callers can tell a dead surface apart from an element that is merely absent.
package browser
