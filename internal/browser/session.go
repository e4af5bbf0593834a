package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"reelforge/internal/config"
	"reelforge/internal/logging"
	"reelforge/internal/uiflow"
)

// fallbackBinaries are tried in order when browser.binary is unset.
var fallbackBinaries = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// ResolveBinary returns the Chromium binary the session will launch. An
// explicit configured binary must resolve; otherwise the PATH is searched
// for the usual names.
func ResolveBinary(cfg config.Browser) (string, error) {
	if cfg.Binary != "" {
		path, err := exec.LookPath(cfg.Binary)
		if err != nil {
			return "", fmt.Errorf("browser binary %q: %w", cfg.Binary, err)
		}
		return path, nil
	}
	for _, name := range fallbackBinaries {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no chromium binary found on PATH (set browser.binary)")
}

// Session is one launched browser plus the page the pipeline currently
// drives. Stages share a single session; the workflow manager serializes
// access, so Session only guards its own pointer swaps.
type Session struct {
	cfg    config.Browser
	logger *slog.Logger
	id     string

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// NewSession prepares a session without launching anything. Launch starts
// the browser on first use.
func NewSession(cfg config.Browser, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		cfg:    cfg,
		logger: logger.With(logging.String(logging.FieldComponent, "browser")),
		id:     uuid.NewString(),
	}
}

// ID identifies this session in logs.
func (s *Session) ID() string { return s.id }

// Launch starts the browser, opens the working page, applies the configured
// viewport, and restores saved session cookies. Calling Launch on a live
// session is a no-op.
func (s *Session) Launch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		if _, err := (proto.BrowserGetVersion{}).Call(s.browser); err == nil {
			return nil
		}
		s.logger.Warn("stale browser connection, relaunching")
		s.closeLocked()
	}

	bin, err := ResolveBinary(s.cfg)
	if err != nil {
		return err
	}

	launch := launcher.New().Bin(bin).Headless(s.cfg.Headless)
	controlURL, err := launch.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		launch.Kill()
		return fmt.Errorf("connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		launch.Kill()
		return fmt.Errorf("open page: %w", err)
	}

	s.launcher = launch
	s.browser = browser
	s.page = page

	if err := s.applyViewportLocked(page); err != nil {
		s.logger.Warn("viewport override failed", logging.Error(err))
	}
	if err := s.restoreCookiesLocked(); err != nil {
		s.logger.Warn("session cookie restore failed", logging.Error(err))
	}

	s.logger.Info("browser launched",
		logging.String("binary", bin),
		logging.Bool("headless", s.cfg.Headless),
	)
	return nil
}

func (s *Session) applyViewportLocked(page *rod.Page) error {
	if s.cfg.ViewportWidth <= 0 || s.cfg.ViewportHeight <= 0 {
		return nil
	}
	return proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}.Call(page)
}

// Navigate loads url in the working page and waits for the load event,
// bounded by the configured navigation timeout.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.currentPage()
	if page == nil {
		return uiflow.ErrSurfaceUnavailable
	}
	timeout := time.Duration(s.cfg.NavigationTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	page = page.Context(ctx).Timeout(timeout)
	if err := page.Navigate(url); err != nil {
		return s.classify(err, fmt.Sprintf("navigate to %s", url))
	}
	if err := page.WaitLoad(); err != nil {
		return s.classify(err, fmt.Sprintf("load %s", url))
	}
	return nil
}

// CurrentURL reports the working page's URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	page := s.currentPage()
	if page == nil {
		return "", uiflow.ErrSurfaceUnavailable
	}
	info, err := page.Context(ctx).Info()
	if err != nil {
		return "", s.classify(err, "page info")
	}
	return info.URL, nil
}

// Surface exposes the working page to the selector resolver.
func (s *Session) Surface() uiflow.Surface {
	return &pageSurface{session: s}
}

// ClosePopups dismisses overlays that block the editor: any visible close
// control from candidates is clicked, then Escape is pressed once for
// dialogs without a close button. Failures here are not fatal, the caller
// decides whether the page is usable.
func (s *Session) ClosePopups(ctx context.Context, candidates []uiflow.Candidate) {
	surface := s.Surface()
	for _, candidate := range candidates {
		match, err := uiflow.Resolve(ctx, surface, []uiflow.Candidate{candidate})
		if err != nil {
			continue
		}
		if err := match.Element.Click(ctx); err != nil {
			s.logger.Debug("popup close failed",
				logging.String(logging.FieldSelector, candidate.String()),
				logging.Error(err),
			)
			continue
		}
		s.logger.Debug("popup dismissed", logging.String(logging.FieldSelector, candidate.String()))
	}
	if page := s.currentPage(); page != nil {
		_ = page.Context(ctx).Keyboard.Press(input.Escape)
	}
}

// Type resolves candidates, focuses the match, clears existing text, and
// types text into it.
func (s *Session) Type(ctx context.Context, candidates []uiflow.Candidate, text string) error {
	match, err := uiflow.Resolve(ctx, s.Surface(), candidates)
	if err != nil {
		return err
	}
	el, ok := match.Element.(*pageElement)
	if !ok {
		return fmt.Errorf("type via %s: element is not interactive", match.Candidate)
	}
	target := el.el.Context(ctx)
	if err := target.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return s.classify(err, fmt.Sprintf("focus %s", match.Candidate))
	}
	if err := target.SelectAllText(); err != nil {
		return s.classify(err, fmt.Sprintf("clear %s", match.Candidate))
	}
	if err := target.Input(text); err != nil {
		return s.classify(err, fmt.Sprintf("type into %s", match.Candidate))
	}
	return nil
}

// HasAny reports whether any candidate currently resolves to a visible,
// enabled element.
func (s *Session) HasAny(ctx context.Context, candidates []uiflow.Candidate) (bool, error) {
	_, err := uiflow.Resolve(ctx, s.Surface(), candidates)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, uiflow.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// FollowTab polls the browser for a tab whose URL contains urlFragment and
// adopts it as the working page. The editor opens generated projects in a
// new tab, so the session has to chase it.
func (s *Session) FollowTab(ctx context.Context, urlFragment string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		browser := s.currentBrowser()
		if browser == nil {
			return "", uiflow.ErrSurfaceUnavailable
		}
		pages, err := browser.Pages()
		if err != nil {
			return "", s.classify(err, "list tabs")
		}
		for _, page := range pages {
			info, err := page.Context(ctx).Info()
			if err != nil {
				continue
			}
			if strings.Contains(info.URL, urlFragment) {
				s.adoptPage(page)
				s.logger.Info("switched to tab", logging.String("url", info.URL))
				return info.URL, nil
			}
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("no tab matching %q appeared within %s", urlFragment, timeout)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Session) adoptPage(page *rod.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = page
	if err := s.applyViewportLocked(page); err != nil {
		s.logger.Debug("viewport override failed", logging.Error(err))
	}
}

// Screenshot captures the working page and writes a PNG to path.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	page := s.currentPage()
	if page == nil {
		return uiflow.ErrSurfaceUnavailable
	}
	data, err := page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return s.classify(err, "screenshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("screenshot dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SaveCookies persists the current cookies to the configured session file so
// the editor login survives restarts.
func (s *Session) SaveCookies(ctx context.Context) error {
	if s.cfg.SessionFile == "" {
		return nil
	}
	page := s.currentPage()
	if page == nil {
		return uiflow.ErrSurfaceUnavailable
	}
	res, err := proto.NetworkGetCookies{}.Call(page.Context(ctx))
	if err != nil {
		return s.classify(err, "read cookies")
	}
	params := make([]*proto.NetworkCookieParam, 0, len(res.Cookies))
	for _, c := range res.Cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: c.SameSite,
			Priority: c.Priority,
		})
	}
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.SessionFile), 0o755); err != nil {
		return fmt.Errorf("session file dir: %w", err)
	}
	if err := os.WriteFile(s.cfg.SessionFile, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.logger.Debug("session cookies saved", logging.Int("count", len(params)))
	return nil
}

func (s *Session) restoreCookiesLocked() error {
	if s.cfg.SessionFile == "" {
		return nil
	}
	data, err := os.ReadFile(s.cfg.SessionFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}
	var params []*proto.NetworkCookieParam
	if err := json.Unmarshal(data, &params); err != nil {
		return fmt.Errorf("decode session file: %w", err)
	}
	if len(params) == 0 {
		return nil
	}
	if err := s.page.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	s.logger.Debug("session cookies restored", logging.Int("count", len(params)))
	return nil
}

// HealthCheck verifies the session can work: a live browser answers a
// version probe, an unlaunched one only needs a resolvable binary.
func (s *Session) HealthCheck(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()

	if browser != nil {
		if _, err := (proto.BrowserGetVersion{}).Call(browser); err != nil {
			return fmt.Errorf("browser unresponsive: %w", err)
		}
		return nil
	}
	_, err := ResolveBinary(s.cfg)
	return err
}

// Alive reports whether a launched browser still answers.
func (s *Session) Alive() bool {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()
	if browser == nil {
		return false
	}
	_, err := (proto.BrowserGetVersion{}).Call(browser)
	return err == nil
}

// Close shuts the browser down. Safe to call on an unlaunched session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Kill()
	}
	s.browser = nil
	s.page = nil
	s.launcher = nil
}

func (s *Session) currentPage() *rod.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

func (s *Session) currentBrowser() *rod.Browser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser
}

// classify wraps a devtools error, converting it to ErrSurfaceUnavailable
// when the browser itself no longer answers. Context errors pass through
// untouched.
func (s *Session) classify(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	browser := s.currentBrowser()
	if browser == nil {
		return fmt.Errorf("%s: %w", operation, uiflow.ErrSurfaceUnavailable)
	}
	if _, probeErr := (proto.BrowserGetVersion{}).Call(browser); probeErr != nil {
		return fmt.Errorf("%s: %v: %w", operation, err, uiflow.ErrSurfaceUnavailable)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
