package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestApplyOverrides_Env(t *testing.T) {
	t.Setenv("FETCHY_LOG_LEVEL", "debug")
	t.Setenv("FETCHY_SOURCE_PAGE_URL", "https://mirror.example.com/")
	t.Setenv("FETCHY_CHALLENGE_MAX_ATTEMPTS", "7")
	t.Setenv("FETCHY_HTTP_TIMEOUT", "45s")
	t.Setenv("FETCHY_BROWSER_HEADLESS", "true")

	cfg := Default()
	if err := ApplyOverrides(NewOverrides(), cfg); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %s, want debug", cfg.Log.Level)
	}
	if cfg.Source.PageURL != "https://mirror.example.com/" {
		t.Errorf("PageURL = %s", cfg.Source.PageURL)
	}
	if cfg.Challenge.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, want 7", cfg.Challenge.MaxAttempts)
	}
	if cfg.HTTP.Timeout.Std() != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.HTTP.Timeout)
	}
	if !cfg.Browser.Headless {
		t.Error("Headless should be true")
	}
	// Untouched keys keep file values
	if cfg.Source.AnchorID != DefaultAnchorID {
		t.Errorf("AnchorID = %s, want default", cfg.Source.AnchorID)
	}
}

func TestApplyOverrides_Flags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "", "")
	fs.String("app-dir", "", "")
	if err := fs.Parse([]string{"--app-dir", "/opt/app"}); err != nil {
		t.Fatal(err)
	}

	v := NewOverrides()
	if err := v.BindPFlag("log.level", fs.Lookup("log-level")); err != nil {
		t.Fatal(err)
	}
	if err := v.BindPFlag("paths.app_dir", fs.Lookup("app-dir")); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Log.Level = "warn"
	if err := ApplyOverrides(v, cfg); err != nil {
		t.Fatalf("ApplyOverrides() error = %v", err)
	}

	if cfg.Paths.AppDir != "/opt/app" {
		t.Errorf("AppDir = %s, want /opt/app", cfg.Paths.AppDir)
	}
	// Unchanged flags do not clobber configured values
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %s, want warn", cfg.Log.Level)
	}
}

func TestApplyOverrides_Invalid(t *testing.T) {
	t.Setenv("FETCHY_LOG_FORMAT", "xml")

	if err := ApplyOverrides(NewOverrides(), Default()); err == nil {
		t.Error("ApplyOverrides() error = nil, want validation error")
	}
}

func TestApplyOverrides_BadDuration(t *testing.T) {
	t.Setenv("FETCHY_LAUNCH_FAILURE_DELAY", "later")

	if err := ApplyOverrides(NewOverrides(), Default()); err == nil {
		t.Error("ApplyOverrides() error = nil, want duration error")
	}
}

func TestOverrideKeys(t *testing.T) {
	keys := OverrideKeys()
	seen := make(map[string]bool)
	for _, k := range keys {
		if seen[k] {
			t.Errorf("duplicate key %s", k)
		}
		seen[k] = true
	}
	if !seen["log.level"] || !seen["paths.app_dir"] {
		t.Errorf("OverrideKeys() = %v", keys)
	}
}
