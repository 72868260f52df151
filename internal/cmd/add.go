package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/config"
	"github.com/notgnoshi/herostratus/internal/herrors"
)

func (a *App) buildAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "track a repository for check-all",
		ArgsUsage: "<name> <url> [reference]",
		Action:    a.addAction,
	}
}

func (a *App) addAction(ctx context.Context, cmd *cli.Command) error {
	name := argAt(cmd, 0)
	url := argAt(cmd, 1)
	if name == "" || url == "" {
		return herrors.Usage("add: expected <name> <url> [reference]")
	}
	reference := argAt(cmd, 2)
	if reference == "" {
		reference = "HEAD"
	}

	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Repositories == nil {
		cfg.Repositories = map[string]config.RepositoryConfig{}
	}
	cfg.Repositories[name] = config.RepositoryConfig{URL: url, Reference: reference}

	if err := a.deps.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "added %s -> %s (%s)\n", name, url, reference)
	return nil
}
