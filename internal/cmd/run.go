package cmd

import (
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/adamancini/fetchy/internal/browser"
	"github.com/adamancini/fetchy/internal/config"
	"github.com/adamancini/fetchy/internal/console"
	"github.com/adamancini/fetchy/internal/logging"
	"github.com/adamancini/fetchy/internal/output"
	"github.com/adamancini/fetchy/internal/pipeline"
	"github.com/adamancini/fetchy/internal/update"
)

type runOptions struct {
	noLaunch bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check for an update, install it and launch it",
		Long: `Run the full update pipeline: pass the bot challenge on the release page,
read the published version, download the archive unless it is cached,
unpack it and launch the executable.

This is what fetchy does when called without a subcommand.

Examples:
  fetchy run                 # Update and launch
  fetchy run --no-launch     # Update only
  fetchy run --headless      # Hide the browser window`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	addRunFlags(cmd, opts)
	return cmd
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().Bool("headless", false, "Run the browser without a window")
	cmd.Flags().BoolVar(&opts.noLaunch, "no-launch", false, "Stop after unpacking instead of launching")
}

// runReport is the structured form of a finished run
type runReport struct {
	RunID      string `json:"run_id" yaml:"run_id" toml:"run_id"`
	Version    string `json:"version" yaml:"version" toml:"version"`
	Cached     bool   `json:"cached" yaml:"cached" toml:"cached"`
	Executable string `json:"executable" yaml:"executable" toml:"executable"`
	Launched   bool   `json:"launched" yaml:"launched" toml:"launched"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

func runPipeline(cmd *cobra.Command, opts *runOptions) error {
	format, err := parseOutputFormat()
	if err != nil {
		return err
	}

	cfg, path, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	logger.Debug("configuration loaded", "source", displayPath(path))

	dir, err := cfg.ResolveAppDir()
	if err != nil {
		return err
	}
	layout := update.NewLayout(dir, cfg.Launch.Extension)

	session := browser.NewSession(layout.BrowserDir,
		browser.WithHeadless(cfg.Browser.Headless),
		browser.WithBin(cfg.Browser.Bin),
		browser.WithUserAgent(cfg.HTTP.UserAgent),
		browser.WithLogger(logger),
	)
	defer func() { _ = session.Close() }()

	// Structured output replaces the console display
	var sinkOut io.Writer = cmd.OutOrStdout()
	if format != output.FormatText {
		sinkOut = cmd.ErrOrStderr()
	}
	sink := console.New(sinkOut, logger, console.WithQuiet(quiet))

	exitCode := 0
	orch := pipeline.New(
		newStages(cfg, layout, session, logger),
		pipeline.Settings{
			PageURL:      cfg.Source.PageURL,
			MaxAttempts:  cfg.Challenge.MaxAttempts,
			Window:       cfg.Challenge.Window(),
			PollInterval: cfg.Challenge.PollInterval(),
			FailureDelay: cfg.Launch.FailureDelay.Std(),
			NoLaunch:     opts.noLaunch,
		},
		sink,
		pipeline.WithLogger(logger),
		pipeline.WithTerminate(func(code int) { exitCode = code }),
	)

	runErr := orch.Run(cmd.Context())

	if format != output.FormatText {
		res := orch.Result()
		report := runReport{
			RunID:      res.RunID,
			Version:    res.Version,
			Cached:     res.Cached,
			Executable: res.Executable,
			Launched:   res.Launched,
		}
		if runErr != nil {
			report.Error = runErr.Error()
		}
		if err := output.NewWriter(cmd.OutOrStdout(), format).Write(report); err != nil {
			return err
		}
	}

	if runErr != nil {
		if exitCode == 0 {
			exitCode = 1
		}
		// The sink has already shown it
		return &ExitError{Code: exitCode, Err: runErr, Reported: true}
	}
	return nil
}

// newStages wires the production pipeline stages
func newStages(cfg *config.Config, layout *update.Layout, session *browser.Session, logger *log.Logger) pipeline.Stages {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.HTTP.Timeout.Std()

	return pipeline.Stages{
		Gate: update.NewChallengeGate(session,
			update.WithChallengeSelector(cfg.Source.ChallengeSelector),
			update.WithGateLogger(logger),
		),
		Scraper: update.NewMetadataScraper(session, cfg.Source.TitleSelector, cfg.Source.HostMatch),
		Resolver: update.NewLinkResolver(
			update.WithResolverClient(&http.Client{Timeout: cfg.HTTP.Timeout.Std()}),
			update.WithResolverUserAgent(cfg.HTTP.UserAgent),
			update.WithAnchorID(cfg.Source.AnchorID),
			update.WithResolverLogger(logger),
		),
		Downloader: update.NewHTTPDownloader(
			update.WithDownloaderClient(&http.Client{Transport: transport}),
			update.WithDownloaderUserAgent(cfg.HTTP.UserAgent),
			update.WithDownloaderLogger(logger),
		),
		Extractor: update.NewZipExtractor(),
		Launcher:  update.NewShellLauncher(),
		Workspace: layout,
		Browser:   session,
	}
}
