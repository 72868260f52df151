package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/clone"
	"github.com/notgnoshi/herostratus/internal/config"
	"github.com/notgnoshi/herostratus/internal/herrors"
)

// defaultDataDir resolves to "$XDG_DATA_HOME/herostratus" or
// "~/.local/share/herostratus", matching the teacher's per-OS user data
// directory convention via os.UserHomeDir.
func defaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "herostratus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "herostratus"), nil
}

// Dependencies holds the minimal production/test-swappable dependencies
// commands need, the same narrow injection shape as the teacher's
// internal/dependencies.Dependencies.
type Dependencies struct {
	FS      afero.Fs
	Context context.Context
	DataDir string
}

// NewDependencies builds production defaults: the OS filesystem and the
// given data directory.
func NewDependencies(ctx context.Context, dataDir string) *Dependencies {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dependencies{FS: afero.NewOsFs(), Context: ctx, DataDir: dataDir}
}

// NewTestDependencies builds an in-memory-filesystem Dependencies for tests.
func NewTestDependencies(ctx context.Context, dataDir string) *Dependencies {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Dependencies{FS: afero.NewMemMapFs(), Context: ctx, DataDir: dataDir}
}

func (d *Dependencies) configPath() string { return filepath.Join(d.DataDir, "config.toml") }
func (d *Dependencies) cachePath() string  { return filepath.Join(d.DataDir, "cache.json") }

// LoadConfig reads config.toml, or returns config.Default() if absent.
func (d *Dependencies) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(d.FS, d.configPath())
	if err != nil {
		return nil, herrors.Config("cmd.LoadConfig", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg back to config.toml.
func (d *Dependencies) SaveConfig(cfg *config.Config) error {
	if err := config.Save(d.FS, d.configPath(), cfg); err != nil {
		return herrors.Config("cmd.SaveConfig", err)
	}
	return nil
}

// LoadCache reads cache.json, or returns an empty GlobalCache if absent.
func (d *Dependencies) LoadCache() (*cache.GlobalCache, error) {
	gcache, err := cache.Load(d.FS, d.cachePath())
	if err != nil {
		return nil, herrors.Cache("cmd.LoadCache", err)
	}
	return gcache, nil
}

// Opener builds a clone.Opener rooted at this Dependencies' data directory.
func (d *Dependencies) Opener() *clone.Opener {
	cfg := clone.DefaultConfig(d.DataDir)
	return clone.New(cfg)
}
