package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration.
const DefaultPath = ".chifir/config.yaml"

// Config holds all chifir CLI configuration.
type Config struct {
	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Script runner settings
	Runner RunnerConfig `yaml:"runner"`

	// File watcher settings
	Watch WatchConfig `yaml:"watch"`
}

// RunnerConfig configures `chifir run`.
type RunnerConfig struct {
	// Stop the whole run at the first failing case
	FailFast bool `yaml:"fail_fast"`

	// How long the runner waits for an async case to settle
	AwaitTimeout string `yaml:"await_timeout"`

	// Plain report output
	NoColor bool `yaml:"no_color"`
}

// WatchConfig configures `chifir watch`.
type WatchConfig struct {
	// Quiet period after the last change before a rerun
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Runner: RunnerConfig{
			AwaitTimeout: "10s",
		},
		Watch: WatchConfig{
			Debounce: "200ms",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("CHIFIR_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
		c.Logging.DebugMode = true
	}
	if format := os.Getenv("CHIFIR_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	if v := os.Getenv("CHIFIR_FAIL_FAST"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Runner.FailFast = b
		}
	}
}

// ValidLogFormats lists the supported log encodings.
var ValidLogFormats = []string{"console", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validFormat := false
	for _, f := range ValidLogFormats {
		if c.Logging.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	if _, err := time.ParseDuration(c.Runner.AwaitTimeout); c.Runner.AwaitTimeout != "" && err != nil {
		return fmt.Errorf("invalid runner.await_timeout %q: %w", c.Runner.AwaitTimeout, err)
	}
	if _, err := time.ParseDuration(c.Watch.Debounce); c.Watch.Debounce != "" && err != nil {
		return fmt.Errorf("invalid watch.debounce %q: %w", c.Watch.Debounce, err)
	}
	return nil
}

// GetAwaitTimeout returns the runner await timeout as a duration.
func (c *Config) GetAwaitTimeout() time.Duration {
	d, err := time.ParseDuration(c.Runner.AwaitTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}
