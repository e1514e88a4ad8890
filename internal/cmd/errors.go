package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// Reported marks errors the user has already seen, so they are not printed again.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// handleError prints err through fang unless it was already reported.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Reported {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
