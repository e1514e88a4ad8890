package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/fetchy/internal/output"
	"github.com/adamancini/fetchy/internal/update"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the fetchy version, the commit it was built from and the build date.

Examples:
  fetchy version            # Human readable
  fetchy version -o json    # Machine readable`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat()
			if err != nil {
				return err
			}
			return runVersion(cmd.OutOrStdout(), format)
		},
	}
}

// versionInfo is what the version command prints
type versionInfo struct {
	Version  string `json:"version" yaml:"version" toml:"version"`
	Commit   string `json:"commit" yaml:"commit" toml:"commit"`
	Date     string `json:"date" yaml:"date" toml:"date"`
	Platform string `json:"platform" yaml:"platform" toml:"platform"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("fetchy version %s (commit: %s, built: %s, %s)", v.Version, v.Commit, v.Date, v.Platform)
}

func runVersion(w io.Writer, format output.Format) error {
	p := update.Detect()
	return output.NewWriter(w, format).Write(versionInfo{
		Version:  buildVersion,
		Commit:   buildCommit,
		Date:     buildDate,
		Platform: p.OS + "/" + p.Arch,
	})
}

func versionString() string {
	if buildVersion == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", buildVersion, buildCommit, buildDate)
}
