package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/adamancini/fetchy/internal/types"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for required fields and valid values.
func Validate(c *Config) error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if c.Version != 1 {
		add(ValidationError{Field: "version", Message: fmt.Sprintf("unsupported version %d", c.Version)})
	}

	for _, err := range validateSource(c.Source) {
		add(err)
	}
	for _, err := range validateChallenge(c.Challenge) {
		add(err)
	}

	if c.HTTP.Timeout <= 0 {
		add(ValidationError{Field: "http.timeout", Message: "must be positive"})
	}

	if !strings.HasPrefix(c.Launch.Extension, ".") || len(c.Launch.Extension) < 2 {
		add(ValidationError{Field: "launch.extension", Message: fmt.Sprintf("invalid extension '%s' (must start with a dot)", c.Launch.Extension)})
	}
	if c.Launch.FailureDelay < 0 {
		add(ValidationError{Field: "launch.failure_delay", Message: "must not be negative"})
	}

	add(validateLog(c.Log))

	if len(errs) > 0 {
		return fmt.Errorf("validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func validateSource(s SourceConfig) []error {
	var errs []error

	u, err := url.Parse(s.PageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "source.page_url",
			Message: fmt.Sprintf("invalid URL '%s' (must be absolute http or https)", s.PageURL),
		})
	}

	required := []struct {
		field string
		value string
	}{
		{"source.host_match", s.HostMatch},
		{"source.title_selector", s.TitleSelector},
		{"source.anchor_id", s.AnchorID},
		{"source.challenge_selector", s.ChallengeSelector},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "is required"})
		}
	}

	if strings.ContainsAny(s.HostMatch, `"'`) {
		errs = append(errs, ValidationError{Field: "source.host_match", Message: "must not contain quotes"})
	}

	return errs
}

func validateChallenge(c ChallengeConfig) []error {
	var errs []error

	if c.MaxAttempts < 1 {
		errs = append(errs, ValidationError{Field: "challenge.max_attempts", Message: "must be at least 1"})
	}
	if c.WindowSeconds < 1 {
		errs = append(errs, ValidationError{Field: "challenge.window_seconds", Message: "must be at least 1"})
	}
	if c.PollIntervalMS < 1 {
		errs = append(errs, ValidationError{Field: "challenge.poll_interval_ms", Message: "must be at least 1"})
	}

	return errs
}

func validateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s' (must be debug, info, warn, error, or fatal)", l.Level),
		}
	}

	if err := types.LogFormat(l.Format).Validate(); err != nil {
		return ValidationError{
			Field:   "log.format",
			Message: err.Error(),
		}
	}

	return nil
}
