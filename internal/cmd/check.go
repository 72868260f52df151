package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/herrors"
	"github.com/notgnoshi/herostratus/internal/rules"
)

func (a *App) buildCheckCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "walk one repository and print its achievements",
		ArgsUsage: "<path-or-url> [reference]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "depth", Usage: "cap the number of commits walked (0 means unlimited)"},
		},
		Action: a.checkAction,
	}
}

// checkAction is stateless per spec §6.1: it never reads or writes
// cache.json, so every run walks the full history from reference.
func (a *App) checkAction(ctx context.Context, cmd *cli.Command) error {
	source := argAt(cmd, 0)
	if source == "" {
		return herrors.Usage("check: missing <path-or-url> argument")
	}
	reference := argAt(cmd, 1)
	if reference == "" {
		reference = "HEAD"
	}

	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}
	active := rules.Build(rules.Config{
		Exclude: cfg.Rules.Exclude,
		Include: cfg.Rules.Include,
		Options: cfg.Rules.Options,
	})

	repo, err := a.deps.Opener().Open(ctx, source)
	if err != nil {
		return herrors.Reference("clone.Open", err)
	}

	_, err = runEngine(ctx, runRequest{
		repo:      repo,
		reference: reference,
		depth:     int(cmd.Int("depth")),
		active:    active,
		prevEntry: cache.EntryCache{},
		w:         cmd.Root().Writer,
		format:    sinkFormatOf(cmd),
		colorize:  colorOf(cmd),
	})
	return err
}
