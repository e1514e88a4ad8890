// Package browser drives a real Chromium instance so pages guarded by a bot
// challenge can be rendered and queried.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/adamancini/fetchy/internal/update"
)

// ErrNotNavigated is returned by Eval before the first successful Navigate.
var ErrNotNavigated = errors.New("browser page has not been opened")

// Session is a lazily launched browser with a single page.
// It satisfies update.Page.
type Session struct {
	userDataDir string
	headless    bool
	bin         string
	userAgent   string
	logger      *log.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// Option configures a Session
type Option func(*Session)

// WithHeadless runs the browser without a window
func WithHeadless(headless bool) Option {
	return func(s *Session) {
		s.headless = headless
	}
}

// WithBin sets the browser executable; empty means system lookup
func WithBin(path string) Option {
	return func(s *Session) {
		s.bin = path
	}
}

// WithUserAgent overrides the page User-Agent
func WithUserAgent(ua string) Option {
	return func(s *Session) {
		s.userAgent = ua
	}
}

// WithLogger sets the logger for browser lifecycle messages
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// NewSession creates a session storing its profile in userDataDir.
// The browser is not started until the first Navigate.
func NewSession(userDataDir string, opts ...Option) *Session {
	s := &Session{
		userDataDir: userDataDir,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Navigate opens url in the session page, launching the browser on first use.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page, err := s.ensurePage(ctx)
	if err != nil {
		return err
	}

	p := page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigating: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for page load: %w", err)
	}
	return nil
}

// Eval runs script in the page and returns its result as JSON.
func (s *Session) Eval(ctx context.Context, script string) (string, error) {
	s.mu.Lock()
	page := s.page
	s.mu.Unlock()

	if page == nil {
		return "", ErrNotNavigated
	}

	res, err := page.Context(ctx).Eval(script)
	if err != nil {
		return "", err
	}
	return res.Value.JSON("", ""), nil
}

// Close shuts the browser down. It is safe to call on a session that never launched.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
		s.page = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

// ensurePage launches the browser and opens a blank page if needed
func (s *Session) ensurePage(ctx context.Context) (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != nil {
		return s.page, nil
	}

	l := s.newLauncher()
	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		l.Kill()
		return nil, &update.BrowserError{Op: "launch", Err: err}
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, &update.BrowserError{Op: "connect", Err: err}
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, &update.BrowserError{Op: "open page", Err: err}
	}

	if s.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.userAgent}); err != nil {
			s.logger.Warn("failed to set user agent", "err", err)
		}
	}

	s.launcher, s.browser, s.page = l, b, page
	s.logger.Debug("browser started", "headless", s.headless, "profile", s.userDataDir)
	return page, nil
}

// newLauncher configures Chromium with automation markers disabled
func (s *Session) newLauncher() *launcher.Launcher {
	l := launcher.New().
		UserDataDir(s.userDataDir).
		Headless(s.headless).
		Devtools(false).
		Set("disable-blink-features", "AutomationControlled")

	bin := s.bin
	if bin == "" {
		if path, ok := launcher.LookPath(); ok {
			bin = path
		}
	}
	if bin != "" {
		s.logger.Debug("using browser binary", "path", bin)
		l = l.Bin(bin)
	}

	if !s.headless {
		l = l.Set("start-maximized")
	}
	return l
}
