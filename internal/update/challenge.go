package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adamancini/fetchy/internal/clock"
)

// DefaultChallengeSelector matches the Cloudflare Turnstile widget.
const DefaultChallengeSelector = ".cf-turnstile"

// ChallengeGate waits for the bot-challenge widget to disappear from a page
type ChallengeGate struct {
	page     Page
	clock    clock.Clock
	selector string
	logger   *log.Logger
}

// GateOption configures a ChallengeGate
type GateOption func(*ChallengeGate)

// WithGateClock sets the clock used between polls
func WithGateClock(c clock.Clock) GateOption {
	return func(g *ChallengeGate) {
		g.clock = c
	}
}

// WithChallengeSelector sets the CSS selector of the challenge widget
func WithChallengeSelector(selector string) GateOption {
	return func(g *ChallengeGate) {
		if selector != "" {
			g.selector = selector
		}
	}
}

// WithGateLogger sets the logger for poll diagnostics
func WithGateLogger(l *log.Logger) GateOption {
	return func(g *ChallengeGate) {
		g.logger = l
	}
}

// NewChallengeGate creates a gate polling the given page
func NewChallengeGate(page Page, opts ...GateOption) *ChallengeGate {
	g := &ChallengeGate{
		page:     page,
		clock:    clock.Real{},
		selector: DefaultChallengeSelector,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Open navigates the page to url.
// A *BrowserError from the page is returned as is; anything else is a *NetworkError.
func (g *ChallengeGate) Open(ctx context.Context, url string) error {
	if err := g.page.Navigate(ctx, url); err != nil {
		var browserErr *BrowserError
		if errors.As(err, &browserErr) {
			return err
		}
		return &NetworkError{Op: "navigate", URL: url, Err: err}
	}
	return nil
}

// AwaitBypass polls the page until the challenge marker is absent.
//
// Each of maxAttempts rounds performs window/pollInterval checks, waiting
// pollInterval before each one. It returns true as soon as a check finds no
// marker and false once every round is exhausted. A page that never showed
// a challenge passes on the first check.
func (g *ChallengeGate) AwaitBypass(ctx context.Context, maxAttempts int, window, pollInterval time.Duration) (bool, error) {
	if maxAttempts <= 0 {
		return false, fmt.Errorf("max attempts must be positive, got %d", maxAttempts)
	}
	if pollInterval <= 0 {
		return false, fmt.Errorf("poll interval must be positive, got %s", pollInterval)
	}

	checks := int(window / pollInterval)
	if checks < 1 {
		checks = 1
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		for i := 0; i < checks; i++ {
			if err := clock.Sleep(ctx, g.clock, pollInterval); err != nil {
				return false, err
			}

			present, err := g.hasChallenge(ctx)
			if err != nil {
				g.logger.Debug("challenge check failed", "attempt", attempt+1, "check", i+1, "err", err)
				continue
			}
			if !present {
				g.logger.Debug("challenge cleared", "attempt", attempt+1, "check", i+1)
				return true, nil
			}
		}
		g.logger.Debug("challenge still present", "attempt", attempt+1, "of", maxAttempts)
	}

	return false, nil
}

// hasChallenge evaluates the marker script and reports whether the widget is present
func (g *ChallengeGate) hasChallenge(ctx context.Context) (bool, error) {
	raw, err := g.page.Eval(ctx, challengeScript(g.selector))
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected challenge check result %q", raw)
	}
}

// challengeScript builds the marker query for selector
func challengeScript(selector string) string {
	return fmt.Sprintf(`() => !!document.querySelector(%q) || !!window.turnstile`, selector)
}
