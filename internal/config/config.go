// Package config holds the diffreview configuration: file-backed defaults
// overlaid by environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".diffreview.yaml"

// Diff source modes resolved from positional arguments.
const (
	ModeMergeBase = "merge-base"
	ModeCommit    = "commit"
	ModeCompare   = "compare"
	ModeWorking   = "working"
	ModeStdin     = "stdin"
)

// View layouts.
const (
	ViewSplit   = "split"
	ViewUnified = "unified"
)

// Config holds all diffreview configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	View    ViewConfig    `yaml:"view"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`

	// Resolved at startup from positional arguments, never persisted.
	Mode   string `yaml:"-"`
	Base   string `yaml:"-"`
	Target string `yaml:"-"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"` // 0 picks a free port
	OpenBrowser bool   `yaml:"open_browser"`
}

// ViewConfig configures how diffs are presented.
type ViewConfig struct {
	Mode         string `yaml:"mode"` // split, unified
	ExpandAll    bool   `yaml:"expand_all"`
	ContextLines int    `yaml:"context_lines"`
}

// WatchConfig configures working-tree change detection.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        0,
			OpenBrowser: true,
		},
		View: ViewConfig{
			Mode:         ViewSplit,
			ContextLines: 3,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "300ms",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Mode: ModeMergeBase,
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if host := os.Getenv("DIFFREVIEW_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("DIFFREVIEW_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			c.Server.Port = n
		}
	}
	if level := os.Getenv("DIFFREVIEW_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// DebounceInterval returns the watch debounce window, falling back to
// 300ms when unset or unparseable.
func (c *Config) DebounceInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.View.Mode != ViewSplit && c.View.Mode != ViewUnified {
		return fmt.Errorf("invalid mode %q: must be split or unified", c.View.Mode)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 0-65535)", c.Server.Port)
	}
	if c.View.ContextLines < 0 {
		return fmt.Errorf("invalid context lines: %d (must be >= 0)", c.View.ContextLines)
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
		}
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format %q: must be console or json", c.Logging.Format)
	}
	return nil
}

// IsLocal reports whether the server only listens on the loopback host.
func (c *Config) IsLocal() bool {
	return c.Server.Host == "localhost" || c.Server.Host == "127.0.0.1"
}
