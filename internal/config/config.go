package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Config represents the application configuration.
// It is loaded from a YAML file and may be overridden by environment
// variables (TAGWATCH_PORT, TAGWATCH_POLL_INTERVAL, TAGWATCH_DB_PATH,
// TAGWATCH_LOG_LEVEL).
type Config struct {
	// PrivateRegistry is the hostname of the authenticated registry
	// whose repositories are ranked with per-repository patterns.
	PrivateRegistry string `yaml:"private_registry"`

	// Watch lists the private repositories to rank and the tag
	// pattern each one uses.
	Watch []WatchEntry `yaml:"watch"`

	// Mirrors lists public mirror repository URLs. Each is queried
	// without authentication and ranked by embedded version.
	Mirrors []string `yaml:"mirrors"`

	// PollInterval is the background poll period (e.g. "15m").
	// Empty or "0" disables background polling.
	PollInterval string `yaml:"poll_interval"`

	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// DBPath is the SQLite file used for poll history.
	// Empty disables history storage.
	DBPath string `yaml:"db_path"`

	// LogLevel controls logger verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// WatchEntry pairs a private repository with the regex used to rank
// its tags. Capture groups in Pattern become the numeric version tuple.
type WatchEntry struct {
	// Image is the repository path within the private registry.
	Image string `yaml:"image"`

	// Pattern is the tag regex. It must contain at least one
	// capture group.
	Pattern string `yaml:"pattern"`

	// Regexp is the compiled form of Pattern, populated by Load.
	Regexp *regexp.Regexp `yaml:"-"`
}

// Default returns the built-in configuration used when no YAML file
// is present.
func Default() Config {
	return Config{
		PrivateRegistry: "registry.chis.dev",
		Watch: []WatchEntry{
			{Image: "base/mariner", Pattern: `mariner_(\d{8})\.(\d{1,2})`},
			{Image: "platform/agent", Pattern: `(\d+)\.(\d+)\.(\d+)\.(\d+)-[0-9a-f]+`},
			{Image: "platform/build-tools", Pattern: `(\d+)\.(\d+)\.(\d+)\.(\d+)_\d{8}`},
			{Image: "runtime/node", Pattern: `master_(\d{8})\.(\d{1,2})`},
			{Image: "infra/sidecar", Pattern: `v(\d+)\.(\d+)\.(\d+)`},
		},
		Mirrors: []string{
			"https://mcr.microsoft.com/v2/oss/kubernetes/kubectl/tags/list",
			"mcr.microsoft.com/oss/go/microsoft/golang",
		},
		PollInterval: "15m",
		Port:         3000,
		LogLevel:     "info",
	}
}

// Interval parses PollInterval. Zero disables background polling.
func (c *Config) Interval() (time.Duration, error) {
	if c.PollInterval == "" || c.PollInterval == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("poll_interval must not be negative: %s", c.PollInterval)
	}
	return d, nil
}

// applyEnv overlays environment variables onto the config.
func (c *Config) applyEnv() error {
	if v := os.Getenv("TAGWATCH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TAGWATCH_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("TAGWATCH_POLL_INTERVAL"); v != "" {
		c.PollInterval = v
	}
	if v := os.Getenv("TAGWATCH_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TAGWATCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// compilePatterns compiles every watch entry pattern. Compilation
// happens once at load so a bad pattern fails fast instead of at
// poll time.
func (c *Config) compilePatterns() error {
	for i := range c.Watch {
		entry := &c.Watch[i]
		if entry.Image == "" {
			return fmt.Errorf("watch entry %d: image must not be empty", i)
		}
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return fmt.Errorf("watch entry %q: invalid pattern: %w", entry.Image, err)
		}
		if re.NumSubexp() == 0 {
			return fmt.Errorf("watch entry %q: pattern needs at least one capture group", entry.Image)
		}
		entry.Regexp = re
	}
	return nil
}
