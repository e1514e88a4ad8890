package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adamancini/fetchy/internal/interactive"
	"github.com/adamancini/fetchy/internal/output"
	"github.com/adamancini/fetchy/internal/update"
)

type cleanOptions struct {
	keep int
	yes  bool
}

func newCleanCmd() *cobra.Command {
	opts := &cleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove old cached versions",
		Long: `Clean deletes the archives and executables of cached versions beyond the
newest --keep. On a terminal each version is confirmed individually unless
--yes is given.

Examples:
  fetchy clean               # Keep the newest version, ask for the rest
  fetchy clean --keep 3      # Keep three versions
  fetchy clean --keep 0 -y   # Remove everything without asking`,
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

			var prompter *interactive.Prompter
			if !opts.yes && format == output.FormatText && interactive.IsTerminal() {
				prompter = interactive.NewPrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runClean(cmd.OutOrStdout(), layout, opts, prompter, format)
		},
	}

	cmd.Flags().IntVar(&opts.keep, "keep", 1, "Number of newest versions to keep")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking")

	return cmd
}

// runClean removes versions beyond opts.keep. With a prompter the user
// picks which candidates go; without one all candidates are pruned.
func runClean(w io.Writer, layout *update.Layout, opts *cleanOptions, prompter *interactive.Prompter, format output.Format) error {
	if opts.keep < 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("--keep must be non-negative, got %d", opts.keep)}
	}

	var result *update.PruneResult
	if prompter == nil {
		var err error
		result, err = layout.Prune(opts.keep)
		if err != nil {
			return err
		}
	} else {
		versions, err := layout.List()
		if err != nil {
			return err
		}
		if len(versions) <= opts.keep {
			result = &update.PruneResult{Kept: len(versions)}
		} else {
			selected, ok := prompter.SelectVersions(versions[opts.keep:])
			if !ok {
				return nil
			}
			result = &update.PruneResult{Kept: len(versions) - len(selected)}
			for _, v := range selected {
				if err := layout.Remove(v); err != nil {
					return err
				}
				result.Deleted = append(result.Deleted, v)
			}
		}
	}

	if format != output.FormatText {
		if result.Deleted == nil {
			result.Deleted = []update.CachedVersion{}
		}
		return output.NewWriter(w, format).Write(result)
	}

	if len(result.Deleted) == 0 {
		_, _ = fmt.Fprintf(w, "Nothing to clean (%d version(s) kept)\n", result.Kept)
		return nil
	}
	for _, v := range result.Deleted {
		_, _ = fmt.Fprintf(w, "✓ Removed %s\n", v.Version)
	}
	_, _ = fmt.Fprintf(w, "Removed %d version(s), kept %d\n", len(result.Deleted), result.Kept)
	return nil
}
