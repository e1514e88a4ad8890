package config

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("Validate(Default()) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{
			name:        "unsupported version",
			mutate:      func(c *Config) { c.Version = 2 },
			errContains: "version",
		},
		{
			name:        "relative page url",
			mutate:      func(c *Config) { c.Source.PageURL = "/releases" },
			errContains: "source.page_url",
		},
		{
			name:        "ftp page url",
			mutate:      func(c *Config) { c.Source.PageURL = "ftp://example.com/" },
			errContains: "source.page_url",
		},
		{
			name:        "empty anchor id",
			mutate:      func(c *Config) { c.Source.AnchorID = " " },
			errContains: "source.anchor_id",
		},
		{
			name:        "quoted host match",
			mutate:      func(c *Config) { c.Source.HostMatch = `x"]` },
			errContains: "must not contain quotes",
		},
		{
			name:        "zero attempts",
			mutate:      func(c *Config) { c.Challenge.MaxAttempts = 0 },
			errContains: "challenge.max_attempts",
		},
		{
			name:        "zero poll interval",
			mutate:      func(c *Config) { c.Challenge.PollIntervalMS = 0 },
			errContains: "challenge.poll_interval_ms",
		},
		{
			name:        "zero timeout",
			mutate:      func(c *Config) { c.HTTP.Timeout = 0 },
			errContains: "http.timeout",
		},
		{
			name:        "extension without dot",
			mutate:      func(c *Config) { c.Launch.Extension = "exe" },
			errContains: "launch.extension",
		},
		{
			name:        "negative failure delay",
			mutate:      func(c *Config) { c.Launch.FailureDelay = -1 },
			errContains: "launch.failure_delay",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Log.Level = "verbose" },
			errContains: "log.level",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Log.Format = "xml" },
			errContains: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestValidateAggregatesErrors(t *testing.T) {
	cfg := Default()
	cfg.Challenge.MaxAttempts = 0
	cfg.Log.Format = "xml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"challenge.max_attempts", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should contain %q", err.Error(), want)
		}
	}
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "log.level", Message: "bad"}
	if err.Error() != "log.level: bad" {
		t.Errorf("Error() = %q", err.Error())
	}
}
