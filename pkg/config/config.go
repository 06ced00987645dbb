// Package config loads optional CLI defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Flubio/giftshop/pkg/ranges"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = ".giftshop.yml"

// Config holds the settings a config file may provide.
type Config struct {
	Input        string `yaml:"input"`
	Workers      int    `yaml:"workers"`
	Store        string `yaml:"store"`
	Format       string `yaml:"format"`
	Color        string `yaml:"color"`
	RulesPath    string `yaml:"rules"`
	RulesInclude string `yaml:"rules_include"`
	RulesExclude string `yaml:"rules_exclude"`
}

// Default returns the built-in defaults, matching the CLI flag defaults.
func Default() Config {
	return Config{
		Input:   ranges.DefaultInputPath,
		Workers: 1,
		Format:  "plain",
		Color:   "auto",
	}
}

// Load reads path over the defaults. A missing file at DefaultPath yields the
// defaults; a missing file anywhere else is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Format {
	case "plain", "human", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s", c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode: %s", c.Color)
	}
	return nil
}
