// Package pipeline sequences the update stages as a finite-state workflow and
// reports progress to a presentation sink.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"

	"github.com/adamancini/fetchy/internal/clock"
	"github.com/adamancini/fetchy/internal/types"
	"github.com/adamancini/fetchy/internal/update"
)

const (
	// DefaultFailureDelay is how long the failure message stays up before exit.
	DefaultFailureDelay = 3 * time.Second

	// progressBuffer bounds how far a worker may run ahead of the sink.
	progressBuffer = 64
)

// Status messages shown for each stage
const (
	MsgChecking   = "Checking for updates..."
	MsgScraping   = "Reading release information..."
	MsgResolving  = "Resolving download link..."
	MsgDownload   = "Downloading update..."
	MsgExtractOld = "Extracting existing update..."
	MsgExtract    = "Extracting update..."
	MsgLaunching  = "Launching new version..."
	MsgReady      = "Update ready"
)

type (
	// Gate navigates to the source page and waits out the bot challenge.
	Gate interface {
		Open(ctx context.Context, url string) error
		AwaitBypass(ctx context.Context, maxAttempts int, window, pollInterval time.Duration) (bool, error)
	}

	// Scraper reads the published version and indirect page link.
	Scraper interface {
		Scrape(ctx context.Context) (update.UpdateDescriptor, error)
	}

	// Resolver turns the indirect page into a direct archive URL.
	Resolver interface {
		ResolveDirectLink(ctx context.Context, pageURL string) (string, error)
	}

	// Downloader transfers the archive to disk.
	Downloader interface {
		Download(ctx context.Context, task update.TransferTask, onProgress update.TransferProgressFunc) error
	}

	// Extractor unpacks the archive.
	Extractor interface {
		Extract(ctx context.Context, job *update.ExtractionJob, onProgress update.ExtractProgressFunc) error
	}

	// Launcher starts the extracted executable.
	Launcher interface {
		Launch(path string) error
	}

	// Workspace is the on-disk layout the pipeline reads and writes.
	Workspace interface {
		Prepare() error
		FindArchive(version string) (string, bool)
		ArchivePath(version string) string
		ExecutablePath(version string) string
		ExtractDir() string
	}
)

// Stages bundles the collaborators of one run.
// Browser, when set, is closed as soon as the page is no longer needed.
type Stages struct {
	Gate       Gate
	Scraper    Scraper
	Resolver   Resolver
	Downloader Downloader
	Extractor  Extractor
	Launcher   Launcher
	Workspace  Workspace
	Browser    io.Closer
}

// Settings holds the tunables of a run
type Settings struct {
	PageURL      string
	MaxAttempts  int
	Window       time.Duration
	PollInterval time.Duration
	FailureDelay time.Duration
	NoLaunch     bool
}

// Result summarizes a finished run
type Result struct {
	RunID      string
	Version    string
	Cached     bool
	Executable string
	Launched   bool
}

// Orchestrator drives a single pipeline run.
// State is only read and written from the goroutine calling Run.
type Orchestrator struct {
	stages    Stages
	settings  Settings
	sink      Sink
	clock     clock.Clock
	logger    *log.Logger
	terminate func(code int)

	state  types.PipelineState
	result Result
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock sets the clock used for the failure delay
func WithClock(c clock.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithLogger sets the run logger
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithTerminate sets the function called with the process exit code once the run ends
func WithTerminate(fn func(code int)) Option {
	return func(o *Orchestrator) {
		o.terminate = fn
	}
}

// New creates an orchestrator. A nil sink discards events.
func New(stages Stages, settings Settings, sink Sink, opts ...Option) *Orchestrator {
	if sink == nil {
		sink = Discard{}
	}
	if settings.FailureDelay <= 0 {
		settings.FailureDelay = DefaultFailureDelay
	}

	o := &Orchestrator{
		stages:    stages,
		settings:  settings,
		sink:      sink,
		clock:     clock.Real{},
		logger:    log.New(io.Discard),
		terminate: func(int) {},
		state:     types.StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current pipeline state
func (o *Orchestrator) State() types.PipelineState {
	return o.state
}

// Result returns what the run produced so far
func (o *Orchestrator) Result() Result {
	return o.result
}

// Run executes the pipeline once.
//
// On success terminate(0) is called and Run returns nil. On any stage error
// the error is shown through the sink, the failure delay elapses on the
// clock, terminate(1) is called and the originating error is returned.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.result = Result{RunID: ksuid.New().String()}
	o.logger = o.logger.With("run", o.result.RunID)

	if err := o.execute(ctx); err != nil {
		return o.fail(ctx, err)
	}

	o.logger.Info("run complete", "version", o.result.Version, "cached", o.result.Cached, "launched", o.result.Launched)
	o.terminate(0)
	return nil
}

func (o *Orchestrator) execute(ctx context.Context) error {
	defer o.closeBrowser()

	if err := o.stages.Workspace.Prepare(); err != nil {
		return err
	}
	o.logger.Debug("workspace ready", "dir", o.stages.Workspace.ExtractDir())

	// Challenge
	if err := o.advance(types.StateCheckingChallenge, MsgChecking); err != nil {
		return err
	}
	if err := o.stages.Gate.Open(ctx, o.settings.PageURL); err != nil {
		return err
	}
	bypassed, err := o.stages.Gate.AwaitBypass(ctx, o.settings.MaxAttempts, o.settings.Window, o.settings.PollInterval)
	if err != nil {
		return err
	}
	if !bypassed {
		return update.ErrChallengeTimeout
	}

	// Metadata
	if err := o.advance(types.StateScrapingMetadata, MsgScraping); err != nil {
		return err
	}
	desc, err := o.stages.Scraper.Scrape(ctx)
	if err != nil {
		return err
	}
	o.result.Version = desc.Version
	o.logger.Debug("found release", "version", desc.Version)
	if desc.PageURL == "" {
		return update.ErrDownloadLinkMissing
	}
	o.closeBrowser()

	// Link
	if err := o.advance(types.StateResolvingLink, MsgResolving); err != nil {
		return err
	}
	directURL, err := o.stages.Resolver.ResolveDirectLink(ctx, desc.PageURL)
	if err != nil {
		return err
	}
	if directURL == "" {
		return update.ErrDownloadLinkMissing
	}

	// Transfer, unless the archive is already cached
	archive, cached := o.stages.Workspace.FindArchive(desc.Version)
	o.result.Cached = cached
	if cached {
		o.logger.Debug("using cached archive", "path", archive)
		if err := o.advance(types.StateExtracting, MsgExtractOld); err != nil {
			return err
		}
	} else {
		archive = o.stages.Workspace.ArchivePath(desc.Version)
		if err := o.advance(types.StateDownloading, MsgDownload); err != nil {
			return err
		}
		if err := o.download(ctx, directURL, archive); err != nil {
			return err
		}
		if err := o.advance(types.StateExtracting, MsgExtract); err != nil {
			return err
		}
	}

	// Extraction
	if err := o.extract(ctx, archive); err != nil {
		return err
	}

	exe := o.stages.Workspace.ExecutablePath(desc.Version)
	o.result.Executable = exe
	if o.settings.NoLaunch {
		o.sink.Status(o.state, MsgReady)
		o.logger.Info("launch skipped", "executable", exe)
		return nil
	}

	// Launch
	if err := o.advance(types.StateLaunching, MsgLaunching); err != nil {
		return err
	}
	if err := o.stages.Launcher.Launch(exe); err != nil {
		return err
	}
	o.result.Launched = true
	return nil
}

// advance moves to next and announces it, rejecting transitions the state table forbids
func (o *Orchestrator) advance(next types.PipelineState, message string) error {
	if !o.state.CanTransitionTo(next) {
		return fmt.Errorf("illegal state transition %s -> %s", o.state, next)
	}
	o.logger.Debug("state", "from", o.state, "to", next)
	o.state = next
	o.sink.Status(next, message)
	return nil
}

func (o *Orchestrator) download(ctx context.Context, url, dest string) error {
	task := update.TransferTask{SourceURL: url, DestinationPath: dest, ExpectedSize: -1}
	return o.offload(ctx, func(report func(Progress)) error {
		return o.stages.Downloader.Download(ctx, task, func(done, total int64) {
			report(Progress{State: types.StateDownloading, Done: done, Total: total})
		})
	})
}

func (o *Orchestrator) extract(ctx context.Context, archive string) error {
	job := &update.ExtractionJob{ArchivePath: archive, TargetDirectory: o.stages.Workspace.ExtractDir()}
	err := o.offload(ctx, func(report func(Progress)) error {
		return o.stages.Extractor.Extract(ctx, job, func(percent int) {
			report(Progress{State: types.StateExtracting, Done: int64(percent), Total: 100})
		})
	})
	o.logger.Debug("extraction finished", "entries", job.EntryCount)
	return err
}

// offload runs work on a worker goroutine and forwards its progress samples
// to the sink from the calling goroutine.
func (o *Orchestrator) offload(ctx context.Context, work func(report func(Progress)) error) error {
	updates := make(chan Progress, progressBuffer)
	done := make(chan error, 1)

	go func() {
		defer close(updates)
		done <- work(func(p Progress) {
			select {
			case updates <- p:
			case <-ctx.Done():
			}
		})
	}()

	for p := range updates {
		o.sink.Progress(p)
	}
	return <-done
}

// fail runs the failure sequence: report, wait, terminate(1)
func (o *Orchestrator) fail(ctx context.Context, err error) error {
	from := o.state
	if o.state.CanTransitionTo(types.StateFailed) {
		o.state = types.StateFailed
	}
	o.logger.Error("update failed", "state", from, "err", err)
	o.sink.Fail(err)

	if sleepErr := clock.Sleep(ctx, o.clock, o.settings.FailureDelay); sleepErr != nil {
		o.logger.Debug("failure delay cut short", "err", sleepErr)
	}

	o.terminate(1)
	return err
}

func (o *Orchestrator) closeBrowser() {
	if o.stages.Browser == nil {
		return
	}
	if err := o.stages.Browser.Close(); err != nil {
		o.logger.Warn("failed to close browser", "err", err)
	}
	o.stages.Browser = nil
}
