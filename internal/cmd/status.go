package cmd

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamancini/fetchy/internal/interactive"
	"github.com/adamancini/fetchy/internal/output"
	"github.com/adamancini/fetchy/internal/update"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cached versions",
		Long: `Status lists the versions present in the download directory, newest first.

Examples:
  fetchy status            # Table of cached versions
  fetchy status -o json    # Machine-readable listing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat()
			if err != nil {
				return err
			}
			layout, err := openLayout(cmd)
			if err != nil {
				return err
			}
			return runStatus(cmd.OutOrStdout(), layout, format)
		},
	}
}

// statusReport is what status prints
type statusReport struct {
	DownloadDir string                 `json:"download_dir" yaml:"download_dir" toml:"download_dir"`
	Versions    []update.CachedVersion `json:"versions" yaml:"versions" toml:"versions"`
}

// String renders the report as a table
func (r statusReport) String() string {
	t := output.Table{
		Header: []string{"VERSION", "SIZE", "EXECUTABLE", "MODIFIED"},
		Empty:  "No cached versions in " + r.DownloadDir,
	}
	for _, v := range r.Versions {
		exe := "no"
		if v.Executable {
			exe = "yes"
		}
		t.Rows = append(t.Rows, []string{
			v.Version,
			interactive.FormatSize(v.ArchiveSize),
			exe,
			v.ModTime.Local().Format(time.DateTime),
		})
	}
	return t.String()
}

func runStatus(w io.Writer, layout *update.Layout, format output.Format) error {
	versions, err := layout.List()
	if err != nil {
		return err
	}

	report := statusReport{
		DownloadDir: layout.DownloadDir,
		Versions:    versions,
	}
	if report.Versions == nil {
		report.Versions = []update.CachedVersion{}
	}

	return output.NewWriter(w, format).Write(report)
}

// openLayout loads the configuration and returns the on-disk layout it points at
func openLayout(cmd *cobra.Command) (*update.Layout, error) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ResolveAppDir()
	if err != nil {
		return nil, err
	}
	return update.NewLayout(dir, cfg.Launch.Extension), nil
}
