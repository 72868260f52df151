package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/herrors"
)

func (a *App) buildRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "stop tracking a repository",
		ArgsUsage: "<name>",
		Action:    a.removeAction,
	}
}

func (a *App) removeAction(ctx context.Context, cmd *cli.Command) error {
	name := argAt(cmd, 0)
	if name == "" {
		return herrors.Usage("remove: expected <name>")
	}

	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}
	if _, ok := cfg.Repositories[name]; !ok {
		return herrors.Usage(fmt.Sprintf("remove: no tracked repository named %q", name))
	}
	delete(cfg.Repositories, name)

	if err := a.deps.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "removed %s\n", name)
	return nil
}
