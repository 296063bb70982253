package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies environment
// overrides, and compiles watch patterns.
// Returns the built-in defaults if the file doesn't exist (not an error).
// Returns an error only if the file exists but cannot be parsed, or a
// watch pattern is invalid.
func Load(path string) (Config, error) {
	cfg, err := loadYAML(path)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.compilePatterns(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadYAML(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist - fall back to defaults (not an error)
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read YAML config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return cfg, nil
}
