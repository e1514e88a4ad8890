// Package console renders pipeline progress on a terminal, falling back to
// log lines when output is not interactive.
package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/adamancini/fetchy/internal/pipeline"
	"github.com/adamancini/fetchy/internal/types"
)

// logStep is the percentage granularity of non-interactive progress lines.
const logStep = 10

// Sink implements pipeline.Sink for a console
type Sink struct {
	out         io.Writer
	logger      *log.Logger
	interactive bool
	quiet       bool

	bar      *progressbar.ProgressBar
	barState types.PipelineState
	logged   int
}

// Option configures a Sink
type Option func(*Sink)

// WithInteractive forces bar rendering on or off
func WithInteractive(interactive bool) Option {
	return func(s *Sink) {
		s.interactive = interactive
	}
}

// WithQuiet suppresses everything except the failure report
func WithQuiet(quiet bool) Option {
	return func(s *Sink) {
		s.quiet = quiet
	}
}

// New creates a console sink writing to out.
// Bars are drawn only when out is a terminal.
func New(out io.Writer, logger *log.Logger, opts ...Option) *Sink {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Sink{
		out:         out,
		logger:      logger,
		interactive: IsTerminal(out),
		logged:      -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Status reports a new stage
func (s *Sink) Status(state types.PipelineState, message string) {
	s.finishBar(false)
	s.logged = -1

	if s.quiet {
		return
	}
	if !s.interactive {
		s.logger.Info(message, "state", state.String())
		return
	}

	style := stageStyle
	if state == types.StateLaunching {
		style = doneStyle
	}
	_, _ = fmt.Fprintf(s.out, "%s %s\n", style.Render("›"), messageStyle.Render(message))
}

// Progress updates the bar for the current stage, creating it on the first sample
func (s *Sink) Progress(p pipeline.Progress) {
	if s.quiet {
		return
	}
	if !s.interactive {
		s.logProgress(p)
		return
	}

	if s.bar == nil || s.barState != p.State {
		s.finishBar(false)
		s.bar = s.newBar(p)
		s.barState = p.State
	}
	_ = s.bar.Set64(p.Done)
}

// Fail shows the error card
func (s *Sink) Fail(err error) {
	s.finishBar(true)

	if !s.interactive {
		_, _ = fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	card := errorCardStyle.Render(errorTitleStyle.Render("Update failed") + "\n" + err.Error())
	_, _ = fmt.Fprintln(s.out, card)
}

// logProgress writes one line per logStep percent; unknown totals are not logged
func (s *Sink) logProgress(p pipeline.Progress) {
	pct := p.Percent()
	if pct < 0 {
		return
	}
	bucket := pct / logStep * logStep
	if bucket <= s.logged {
		return
	}
	s.logged = bucket
	s.logger.Info(fmt.Sprintf("%s (%d%%)", p.State.Label(), bucket))
}

func (s *Sink) newBar(p pipeline.Progress) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSetDescription(p.State.Label()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65 * time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(s.out) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	}

	if p.State == types.StateDownloading {
		opts = append(opts, progressbar.OptionShowBytes(true))
		if !p.Known() {
			opts = append(opts, progressbar.OptionSpinnerType(14))
			return progressbar.NewOptions64(-1, opts...)
		}
		return progressbar.NewOptions64(p.Total, opts...)
	}
	return progressbar.NewOptions64(100, opts...)
}

// finishBar completes the current bar; an aborted bar keeps its last value
func (s *Sink) finishBar(aborted bool) {
	if s.bar == nil {
		return
	}
	switch {
	case s.bar.IsFinished():
	case aborted:
		_ = s.bar.Exit()
		_, _ = fmt.Fprintln(s.out)
	default:
		_ = s.bar.Finish()
	}
	s.bar = nil
}

