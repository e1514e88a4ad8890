package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. FETCHY_LOG_LEVEL.
const EnvPrefix = "FETCHY"

// override applies one viper key onto the configuration
type override struct {
	key   string
	apply func(v *viper.Viper, c *Config) error
}

var overrides = []override{
	{"source.page_url", func(v *viper.Viper, c *Config) error { c.Source.PageURL = v.GetString("source.page_url"); return nil }},
	{"source.host_match", func(v *viper.Viper, c *Config) error { c.Source.HostMatch = v.GetString("source.host_match"); return nil }},
	{"source.title_selector", func(v *viper.Viper, c *Config) error {
		c.Source.TitleSelector = v.GetString("source.title_selector")
		return nil
	}},
	{"source.anchor_id", func(v *viper.Viper, c *Config) error { c.Source.AnchorID = v.GetString("source.anchor_id"); return nil }},
	{"source.challenge_selector", func(v *viper.Viper, c *Config) error {
		c.Source.ChallengeSelector = v.GetString("source.challenge_selector")
		return nil
	}},
	{"challenge.max_attempts", func(v *viper.Viper, c *Config) error {
		c.Challenge.MaxAttempts = v.GetInt("challenge.max_attempts")
		return nil
	}},
	{"challenge.window_seconds", func(v *viper.Viper, c *Config) error {
		c.Challenge.WindowSeconds = v.GetInt("challenge.window_seconds")
		return nil
	}},
	{"challenge.poll_interval_ms", func(v *viper.Viper, c *Config) error {
		c.Challenge.PollIntervalMS = v.GetInt("challenge.poll_interval_ms")
		return nil
	}},
	{"http.timeout", func(v *viper.Viper, c *Config) error { return c.HTTP.Timeout.UnmarshalText([]byte(v.GetString("http.timeout"))) }},
	{"http.user_agent", func(v *viper.Viper, c *Config) error { c.HTTP.UserAgent = v.GetString("http.user_agent"); return nil }},
	{"browser.headless", func(v *viper.Viper, c *Config) error { c.Browser.Headless = v.GetBool("browser.headless"); return nil }},
	{"browser.bin", func(v *viper.Viper, c *Config) error { c.Browser.Bin = v.GetString("browser.bin"); return nil }},
	{"paths.app_dir", func(v *viper.Viper, c *Config) error { c.Paths.AppDir = v.GetString("paths.app_dir"); return nil }},
	{"launch.extension", func(v *viper.Viper, c *Config) error { c.Launch.Extension = v.GetString("launch.extension"); return nil }},
	{"launch.failure_delay", func(v *viper.Viper, c *Config) error {
		return c.Launch.FailureDelay.UnmarshalText([]byte(v.GetString("launch.failure_delay")))
	}},
	{"log.level", func(v *viper.Viper, c *Config) error { c.Log.Level = v.GetString("log.level"); return nil }},
	{"log.format", func(v *viper.Viper, c *Config) error { c.Log.Format = v.GetString("log.format"); return nil }},
	{"log.path", func(v *viper.Viper, c *Config) error { c.Log.Path = v.GetString("log.path"); return nil }},
}

// OverrideKeys returns every key that can be overridden
func OverrideKeys() []string {
	keys := make([]string, len(overrides))
	for i, o := range overrides {
		keys[i] = o.key
	}
	return keys
}

// NewOverrides returns a viper instance reading FETCHY_* environment variables.
// Callers bind command-line flags onto it before ApplyOverrides.
func NewOverrides() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, o := range overrides {
		_ = v.BindEnv(o.key)
	}
	return v
}

// ApplyOverrides copies every key set in v (by flag or environment) onto c
// and revalidates the result.
func ApplyOverrides(v *viper.Viper, c *Config) error {
	for _, o := range overrides {
		if !v.IsSet(o.key) {
			continue
		}
		if err := o.apply(v, c); err != nil {
			return fmt.Errorf("override %s: %w", o.key, err)
		}
	}
	return Validate(c)
}
