package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/fetchy/internal/config"
	"github.com/adamancini/fetchy/internal/interactive"
	"github.com/adamancini/fetchy/internal/output"
	"github.com/adamancini/fetchy/internal/templates"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration after file, environment and flag overrides",
		Long: `Print the configuration fetchy would run with.

Values come from the config file (or built-in defaults), then FETCHY_*
environment variables, then command-line flags.

Examples:
  fetchy config show
  FETCHY_LOG_LEVEL=debug fetchy config show -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat()
			if err != nil {
				return err
			}
			cfg, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runConfigShow(cmd.OutOrStdout(), cfg, path, format)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file that would be loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runConfigPath(cmd.OutOrStdout(), path)
		},
	})

	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var templateName string
	var outputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file from a template",
		Long: `Create a new config file from a built-in template.

Available templates:
  minimal     - Release page only, defaults for the rest
  default     - Every key with its default value
  unattended  - Headless browser and a logfmt log file

The file is written to <app-dir>/fetchy.yaml unless --path is given.

Examples:
  fetchy config init
  fetchy config init --template=unattended
  fetchy config init --path ~/.config/fetchy/fetchy.yaml --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				dir := appDir
				if dir == "" {
					var err error
					if dir, err = config.Default().ResolveAppDir(); err != nil {
						return err
					}
				}
				outputPath = filepath.Join(dir, "fetchy.yaml")
			}
			prompter := interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
			return runConfigInit(cmd.OutOrStdout(), prompter, templateName, outputPath, force)
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", templates.DefaultName, "Template name")
	cmd.Flags().StringVar(&outputPath, "path", "", "Output path for the config file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	_ = cmd.RegisterFlagCompletionFunc("template", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var completions []string
		for _, name := range templates.List() {
			completions = append(completions, fmt.Sprintf("%s\t%s", name, templates.GetDescription(name)))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// runConfigInit writes the named template to outputPath after validating it.
// An existing file is only replaced with force or the user's confirmation.
func runConfigInit(stdout io.Writer, prompter *interactive.Prompter, templateName, outputPath string, force bool) error {
	tmpl, err := templates.Get(templateName)
	if err != nil {
		return err
	}

	if _, err := config.Parse(tmpl.Content, tmpl.Name+".yaml"); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		if !prompter.Confirm(fmt.Sprintf("%s already exists. Overwrite?", outputPath)) {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(outputPath), err)
	}
	if err := os.WriteFile(outputPath, tmpl.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "Created %s from the '%s' template\n", outputPath, tmpl.Name)
	_, _ = fmt.Fprintln(stdout, "\nNext steps:")
	_, _ = fmt.Fprintln(stdout, "  1. Edit the file to point at your release page")
	_, _ = fmt.Fprintln(stdout, "  2. Run 'fetchy config show' to check the result")
	_, _ = fmt.Fprintln(stdout, "  3. Run 'fetchy run --no-launch' for a dry update")
	return nil
}

// configText renders a configuration as annotated YAML for the text format
type configText struct {
	cfg  *config.Config
	path string
}

func (c configText) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Source: %s\n", displayPath(c.path))

	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(c.cfg); err != nil {
		fmt.Fprintf(&b, "# error: %v\n", err)
	}
	_ = enc.Close()
	return strings.TrimRight(b.String(), "\n")
}

func runConfigShow(w io.Writer, cfg *config.Config, path string, format output.Format) error {
	if format == output.FormatText {
		return output.NewWriter(w, format).Write(configText{cfg: cfg, path: path})
	}
	return output.NewWriter(w, format).Write(cfg)
}

func runConfigPath(w io.Writer, path string) error {
	if path == "" {
		_, _ = fmt.Fprintln(w, "No config file found; using built-in defaults")
		return nil
	}
	_, _ = fmt.Fprintln(w, path)
	return nil
}
