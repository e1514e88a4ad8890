package types

import (
	"testing"
)

func TestPipelineStateValidate(t *testing.T) {
	tests := []struct {
		name    string
		state   PipelineState
		wantErr bool
	}{
		{"idle valid", StateIdle, false},
		{"downloading valid", StateDownloading, false},
		{"failed valid", StateFailed, false},
		{"empty invalid", "", true},
		{"invalid value", "paused", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("PipelineState.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPipelineStateCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from PipelineState
		to   PipelineState
		want bool
	}{
		{"idle to challenge", StateIdle, StateCheckingChallenge, true},
		{"challenge to scrape", StateCheckingChallenge, StateScrapingMetadata, true},
		{"scrape to resolve", StateScrapingMetadata, StateResolvingLink, true},
		{"resolve to download", StateResolvingLink, StateDownloading, true},
		{"resolve to extract on cache hit", StateResolvingLink, StateExtracting, true},
		{"download to extract", StateDownloading, StateExtracting, true},
		{"extract to launch", StateExtracting, StateLaunching, true},
		{"idle skips ahead", StateIdle, StateDownloading, false},
		{"backwards", StateExtracting, StateDownloading, false},
		{"self loop", StateDownloading, StateDownloading, false},
		{"scrape skips resolve", StateScrapingMetadata, StateExtracting, false},
		{"any to failed", StateDownloading, StateFailed, true},
		{"idle to failed", StateIdle, StateFailed, true},
		{"failed is terminal", StateFailed, StateIdle, false},
		{"failed to failed", StateFailed, StateFailed, false},
		{"unknown source", PipelineState("bogus"), StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s.CanTransitionTo(%s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPipelineStateIsTerminal(t *testing.T) {
	for _, s := range AllPipelineStates() {
		want := s == StateFailed
		if got := s.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, got, want)
		}
	}
}

func TestPipelineStateLabel(t *testing.T) {
	if got := StateCheckingChallenge.Label(); got != "Checking for updates" {
		t.Errorf("Label() = %q, want %q", got, "Checking for updates")
	}
	if got := PipelineState("custom").Label(); got != "custom" {
		t.Errorf("Label() = %q, want %q", got, "custom")
	}
}

func TestParseLogFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LogFormat
		wantErr bool
	}{
		{"text", "text", LogFormatText, false},
		{"json uppercase", "JSON", LogFormatJSON, false},
		{"logfmt padded", " logfmt ", LogFormatLogfmt, false},
		{"empty defaults to text", "", LogFormatText, false},
		{"invalid", "xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLogFormat() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseLogFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}
