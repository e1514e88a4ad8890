// Package interactive provides interactive prompts for user confirmation.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/adamancini/fetchy/internal/update"
)

// Response represents the user's response to a prompt.
type Response int

const (
	ResponseYes  Response = iota // Proceed with this item
	ResponseNo                   // Skip this item
	ResponseAll                  // Approve all remaining items
	ResponseQuit                 // Abort interactive mode
)

// Prompter handles interactive prompts for cache cleanup.
type Prompter struct {
	in         io.Reader
	out        io.Writer
	scanner    *bufio.Scanner
	approveAll bool
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// prompt displays a question and reads the response.
func (p *Prompter) prompt(format string, args ...interface{}) Response {
	if p.approveAll {
		return ResponseYes
	}

	_, _ = fmt.Fprintf(p.out, format, args...)
	_, _ = fmt.Fprint(p.out, " [y/n/a/q] ")

	if !p.scanner.Scan() {
		return ResponseQuit
	}

	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	switch input {
	case "y", "yes":
		return ResponseYes
	case "n", "no":
		return ResponseNo
	case "a", "all":
		p.approveAll = true
		return ResponseYes
	case "q", "quit":
		return ResponseQuit
	default:
		// Default to no for invalid input
		_, _ = fmt.Fprintln(p.out, "Invalid response, skipping.")
		return ResponseNo
	}
}

// Confirm asks a yes/no question. Anything but yes is a no.
func (p *Prompter) Confirm(question string) bool {
	_, _ = fmt.Fprintf(p.out, "%s [y/n] ", question)
	if !p.scanner.Scan() {
		return false
	}
	input := strings.ToLower(strings.TrimSpace(p.scanner.Text()))
	return input == "y" || input == "yes"
}

// SelectVersions walks candidates asking which to delete.
// It returns the approved versions and false if the user quit.
func (p *Prompter) SelectVersions(candidates []update.CachedVersion) ([]update.CachedVersion, bool) {
	if len(candidates) == 0 {
		return nil, true
	}

	_, _ = fmt.Fprintf(p.out, "\n%d cached version(s) can be removed:\n\n", len(candidates))

	var selected []update.CachedVersion
	for _, v := range candidates {
		switch p.prompt("  Delete %s (%s)?", v.Version, FormatSize(v.ArchiveSize)) {
		case ResponseYes:
			selected = append(selected, v)
		case ResponseQuit:
			_, _ = fmt.Fprintln(p.out, "\nAborted.")
			return nil, false
		}
	}

	if len(selected) == 0 {
		_, _ = fmt.Fprintln(p.out, "\nNothing selected.")
		return nil, true
	}

	if !p.Confirm(fmt.Sprintf("\nDelete %d version(s)?", len(selected))) {
		return nil, false
	}
	return selected, true
}

// FormatSize renders a byte count with a binary unit.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
