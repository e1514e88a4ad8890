// Package types provides type-safe constants for the fetchy launcher.
//
// This package centralizes the enumerated types shared by the pipeline,
// the presentation layer and the configuration loader, replacing magic
// strings with typed constants that carry their own validation.
package types

import (
	"fmt"
	"strings"
)

// PipelineState is the single active stage of an update run.
type PipelineState string

const (
	// StateIdle is the state before any stage has started.
	StateIdle PipelineState = "idle"
	// StateCheckingChallenge waits for the bot-challenge widget to clear.
	StateCheckingChallenge PipelineState = "checking_challenge"
	// StateScrapingMetadata reads the version label and page link.
	StateScrapingMetadata PipelineState = "scraping_metadata"
	// StateResolvingLink turns the indirect page into a direct URL.
	StateResolvingLink PipelineState = "resolving_link"
	// StateDownloading streams the archive to disk.
	StateDownloading PipelineState = "downloading"
	// StateExtracting unpacks the archive into the download directory.
	StateExtracting PipelineState = "extracting"
	// StateLaunching hands off to the extracted executable.
	StateLaunching PipelineState = "launching"
	// StateFailed is terminal and reachable from every other state.
	StateFailed PipelineState = "failed"
)

// stateOrder is the forward order of the non-failure states.
var stateOrder = map[PipelineState]int{
	StateIdle:              0,
	StateCheckingChallenge: 1,
	StateScrapingMetadata:  2,
	StateResolvingLink:     3,
	StateDownloading:       4,
	StateExtracting:        5,
	StateLaunching:         6,
}

// AllPipelineStates returns every pipeline state in transition order.
func AllPipelineStates() []PipelineState {
	return []PipelineState{
		StateIdle,
		StateCheckingChallenge,
		StateScrapingMetadata,
		StateResolvingLink,
		StateDownloading,
		StateExtracting,
		StateLaunching,
		StateFailed,
	}
}

// Validate checks if the PipelineState is a known value.
func (s PipelineState) Validate() error {
	if s == StateFailed {
		return nil
	}
	if _, ok := stateOrder[s]; ok {
		return nil
	}
	if s == "" {
		return fmt.Errorf("pipeline state is required")
	}
	return fmt.Errorf("invalid pipeline state '%s'", s)
}

// String returns the string representation of the PipelineState.
func (s PipelineState) String() string {
	return string(s)
}

// IsTerminal returns true if no transition may leave this state.
func (s PipelineState) IsTerminal() bool {
	return s == StateFailed
}

// CanTransitionTo reports whether next is a legal successor of s.
//
// Transitions move forward one step at a time, except that ResolvingLink may
// jump straight to Extracting when the archive is already cached. Failed is
// reachable from any non-terminal state and never left.
func (s PipelineState) CanTransitionTo(next PipelineState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateFailed {
		return true
	}

	from, ok := stateOrder[s]
	if !ok {
		return false
	}
	to, ok := stateOrder[next]
	if !ok {
		return false
	}

	if to == from+1 {
		return true
	}
	return s == StateResolvingLink && next == StateExtracting
}

// Label returns a short human-readable description of the state.
func (s PipelineState) Label() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCheckingChallenge:
		return "Checking for updates"
	case StateScrapingMetadata:
		return "Reading release information"
	case StateResolvingLink:
		return "Resolving download link"
	case StateDownloading:
		return "Downloading"
	case StateExtracting:
		return "Extracting"
	case StateLaunching:
		return "Launching"
	case StateFailed:
		return "Failed"
	default:
		return string(s)
	}
}

// LogFormat selects how log records are rendered.
type LogFormat string

const (
	// LogFormatText renders human-readable colored lines.
	LogFormatText LogFormat = "text"
	// LogFormatJSON renders one JSON object per record.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt renders key=value records.
	LogFormatLogfmt LogFormat = "logfmt"
)

// AllLogFormats returns all valid log formats.
func AllLogFormats() []LogFormat {
	return []LogFormat{LogFormatText, LogFormatJSON, LogFormatLogfmt}
}

// Validate checks if the LogFormat is a valid value.
// Empty is valid and defaults to text.
func (f LogFormat) Validate() error {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt, "":
		return nil
	default:
		return fmt.Errorf("invalid log format '%s' (must be text, json, or logfmt)", f)
	}
}

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string {
	return string(f)
}

// ParseLogFormat parses a string into a LogFormat.
func ParseLogFormat(s string) (LogFormat, error) {
	f := LogFormat(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	if f == "" {
		return LogFormatText, nil
	}
	return f, nil
}
