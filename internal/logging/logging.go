// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adamancini/fetchy/internal/config"
	"github.com/adamancini/fetchy/internal/types"
)

// Prefix tags every log line.
const Prefix = "fetchy"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger for cfg. Records go to fallback unless cfg.Path names
// a file, which is opened in append mode. The returned closer releases that file.
func New(cfg config.LogConfig, fallback io.Writer) (*log.Logger, io.Closer, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	format, err := types.ParseLogFormat(cfg.Format)
	if err != nil {
		return nil, nil, err
	}

	out := fallback
	var closer io.Closer = nopCloser{}
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	logger := log.NewWithOptions(out, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Formatter:       formatter(format),
	})
	return logger, closer, nil
}

func formatter(f types.LogFormat) log.Formatter {
	switch f {
	case types.LogFormatJSON:
		return log.JSONFormatter
	case types.LogFormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
