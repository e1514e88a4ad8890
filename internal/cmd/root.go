package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/adamancini/fetchy/internal/config"
	"github.com/adamancini/fetchy/internal/output"
)

var (
	// Global flags
	outputFormat string
	configPath   string
	appDir       string
	logLevel     string
	verbose      bool
	quiet        bool
)

var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// Execute builds the command tree and runs it until completion or interrupt.
func Execute(version, commit, date string) error {
	buildVersion, buildCommit, buildDate = version, commit, date

	return execute(context.Background(), newRootCmd())
}

func execute(ctx context.Context, root *cobra.Command) error {
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(versionString()),
		fang.WithErrorHandler(handleError),
		fang.WithNotifySignal(os.Interrupt),
	)
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:   "fetchy",
		Short: "Fetch, unpack and launch the latest published release",
		Long: `fetchy checks the release page for a new version, downloads and unpacks it
next to itself and launches the extracted executable.

Versions that were downloaded before are unpacked from the local cache.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml, toml")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&appDir, "app-dir", "", "Application directory (default: executable directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	addRunFlags(rootCmd, opts)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml", "toml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

// flagKeys maps command-line flags onto configuration keys
var flagKeys = map[string]string{
	"app-dir":   "paths.app_dir",
	"log-level": "log.level",
	"headless":  "browser.headless",
}

// loadConfig finds, parses and overrides the configuration.
// It returns the effective configuration and the file it came from ("" for defaults).
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	searchDir := appDir
	if searchDir == "" {
		dir, err := config.Default().ResolveAppDir()
		if err != nil {
			return nil, "", err
		}
		searchDir = dir
	}

	path, err := config.FindConfig(configPath, searchDir)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load %s: %w", displayPath(path), err)
	}

	v := config.NewOverrides()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, "", err
	}
	if verbose && !v.IsSet("log.level") {
		v.Set("log.level", "debug")
	}

	if err := config.ApplyOverrides(v, cfg); err != nil {
		return nil, "", err
	}

	return cfg, path, nil
}

// bindFlags binds every flag present on fs that has a configuration key
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// parseOutputFormat validates the --output flag
func parseOutputFormat() (output.Format, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return "", &ExitError{Code: 2, Err: err}
	}
	return format, nil
}

func displayPath(path string) string {
	if path == "" {
		return "built-in defaults"
	}
	return path
}
