// Package config handles fetchy configuration parsing and location resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ConfigEnvVar names an explicit configuration file.
const ConfigEnvVar = "FETCHY_CONFIG"

// Default values
const (
	DefaultPageURL           = "https://file.unlocktool.net/"
	DefaultHostMatch         = "www.mediafire.com"
	DefaultTitleSelector     = "button.nav-link.active"
	DefaultAnchorID          = "downloadButton"
	DefaultChallengeSelector = ".cf-turnstile"
	DefaultMaxAttempts       = 3
	DefaultWindowSeconds     = 15
	DefaultPollIntervalMS    = 1000
	DefaultHTTPTimeout       = 15 * time.Second
	DefaultUserAgent         = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
	DefaultExtension         = ".exe"
	DefaultFailureDelay      = 3 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

// Config is the parsed configuration file.
type Config struct {
	Version   int             `yaml:"version" toml:"version" json:"version"`
	Source    SourceConfig    `yaml:"source" toml:"source" json:"source"`
	Challenge ChallengeConfig `yaml:"challenge" toml:"challenge" json:"challenge"`
	HTTP      HTTPConfig      `yaml:"http" toml:"http" json:"http"`
	Browser   BrowserConfig   `yaml:"browser" toml:"browser" json:"browser"`
	Paths     PathsConfig     `yaml:"paths" toml:"paths" json:"paths"`
	Launch    LaunchConfig    `yaml:"launch" toml:"launch" json:"launch"`
	Log       LogConfig       `yaml:"log" toml:"log" json:"log"`
}

// SourceConfig describes where releases are published and how to read them.
type SourceConfig struct {
	PageURL           string `yaml:"page_url" toml:"page_url" json:"page_url"`
	HostMatch         string `yaml:"host_match" toml:"host_match" json:"host_match"`                         // File host the release link points to
	TitleSelector     string `yaml:"title_selector" toml:"title_selector" json:"title_selector"`             // CSS selector of the release title
	AnchorID          string `yaml:"anchor_id" toml:"anchor_id" json:"anchor_id"`                            // id of the direct download anchor
	ChallengeSelector string `yaml:"challenge_selector" toml:"challenge_selector" json:"challenge_selector"` // CSS selector of the bot-challenge widget
}

// ChallengeConfig bounds the wait for the bot challenge.
type ChallengeConfig struct {
	MaxAttempts    int `yaml:"max_attempts" toml:"max_attempts" json:"max_attempts"`
	WindowSeconds  int `yaml:"window_seconds" toml:"window_seconds" json:"window_seconds"`
	PollIntervalMS int `yaml:"poll_interval_ms" toml:"poll_interval_ms" json:"poll_interval_ms"`
}

// Window returns the per-attempt window
func (c ChallengeConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// PollInterval returns the delay before each check
func (c ChallengeConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// HTTPConfig configures direct HTTP requests.
type HTTPConfig struct {
	Timeout   Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	UserAgent string   `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
}

// BrowserConfig configures the controlled browser.
type BrowserConfig struct {
	Headless bool   `yaml:"headless" toml:"headless" json:"headless"`
	Bin      string `yaml:"bin,omitempty" toml:"bin,omitempty" json:"bin,omitempty"` // Empty means system lookup
}

// PathsConfig locates the application directory.
type PathsConfig struct {
	AppDir string `yaml:"app_dir,omitempty" toml:"app_dir,omitempty" json:"app_dir,omitempty"` // Empty means the executable's directory
}

// LaunchConfig configures how the update is started.
type LaunchConfig struct {
	Extension    string   `yaml:"extension" toml:"extension" json:"extension"`
	FailureDelay Duration `yaml:"failure_delay" toml:"failure_delay" json:"failure_delay"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
	Path   string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"` // Empty means stderr
}

// Duration is a time.Duration written as a Go duration string ("15s").
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Source: SourceConfig{
			PageURL:           DefaultPageURL,
			HostMatch:         DefaultHostMatch,
			TitleSelector:     DefaultTitleSelector,
			AnchorID:          DefaultAnchorID,
			ChallengeSelector: DefaultChallengeSelector,
		},
		Challenge: ChallengeConfig{
			MaxAttempts:    DefaultMaxAttempts,
			WindowSeconds:  DefaultWindowSeconds,
			PollIntervalMS: DefaultPollIntervalMS,
		},
		HTTP: HTTPConfig{
			Timeout:   Duration(DefaultHTTPTimeout),
			UserAgent: DefaultUserAgent,
		},
		Launch: LaunchConfig{
			Extension:    DefaultExtension,
			FailureDelay: Duration(DefaultFailureDelay),
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// fileNames lists accepted configuration file names in order of precedence.
var fileNames = []string{
	"fetchy.yaml",
	"fetchy.yml",
	"fetchy.toml",
	"fetchy.json",
	"Fetchyfile",
}

// SearchPaths returns the directories searched for a configuration file.
func SearchPaths(appDir string) []string {
	var dirs []string
	if appDir != "" {
		dirs = append(dirs, appDir)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	home, err := os.UserHomeDir()
	if xdgConfig == "" && err == nil {
		xdgConfig = filepath.Join(home, ".config")
	}
	if xdgConfig != "" {
		dirs = append(dirs, filepath.Join(xdgConfig, "fetchy"))
	}
	if err == nil {
		dirs = append(dirs, filepath.Join(home, ".fetchy"))
	}
	return dirs
}

// FindConfig searches for a configuration file in the standard locations.
// It returns "" without error when no file exists; the defaults then apply.
func FindConfig(explicitPath, appDir string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv(ConfigEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, dir := range SearchPaths(appDir) {
		for _, name := range fileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}

	return "", nil
}

// Load reads and parses the configuration at path over the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(content, path)
}

// Parse decodes and validates content. name is only used to pick the format
// by extension; extensionless names are sniffed.
func Parse(content []byte, name string) (*Config, error) {
	format := detectFormat(name, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", name)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveAppDir returns the configured application directory, falling back
// to the directory holding the running executable.
func (c *Config) ResolveAppDir() (string, error) {
	if c.Paths.AppDir != "" {
		return filepath.Abs(c.Paths.AppDir)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
