// Package config loads and saves the TOML application configuration: the
// set of tracked repositories and the rules filter applied to each run.
// Modeled on the teacher's internal/project atomic-write pattern, scaled
// down to this program's single config file and swapped from YAML to TOML.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

const filePermissions = 0o644

// RepositoryConfig names one tracked repository: where to clone it from and
// which reference check-all walks by default.
type RepositoryConfig struct {
	URL       string `toml:"url" validate:"required"`
	Reference string `toml:"reference" validate:"required"`
}

// RulesConfig is the parsed rules section: the exclude/include filter plus
// free-form per-rule option blocks, keyed by the rule's registered name.
type RulesConfig struct {
	Exclude []string                   `toml:"exclude"`
	Include []string                   `toml:"include"`
	Options map[string]map[string]any `toml:"options"`
}

// Config is the full on-disk application configuration.
type Config struct {
	Repositories map[string]RepositoryConfig `toml:"repositories"`
	Rules        RulesConfig                 `toml:"rules"`
}

// Default returns an empty, valid configuration for a fresh data directory.
func Default() *Config {
	return &Config{Repositories: map[string]RepositoryConfig{}}
}

var validate = validator.New()

// Validate checks struct tags on cfg and every repository entry.
func Validate(cfg *Config) error {
	for name, repo := range cfg.Repositories {
		if err := validate.Struct(repo); err != nil {
			return fmt.Errorf("config: repository %q: %w", name, err)
		}
	}
	return nil
}

// Load reads and validates the configuration at path. A missing file
// returns Default() rather than an error, so a fresh data directory needs
// no setup step before first use.
func Load(fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", path, err)
	}
	if !exists {
		return Default(), nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save atomically writes cfg to path, validating first.
func Save(fs afero.Fs, path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, out, filePermissions); err != nil {
		return fmt.Errorf("config: write %s: %w", tmp, err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("config: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}
