package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/herrors"
	"github.com/notgnoshi/herostratus/internal/metrics"
	"github.com/notgnoshi/herostratus/internal/rules"
)

func (a *App) buildCheckAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-all",
		Usage: "walk every configured repository, persisting incremental progress",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "depth", Usage: "cap the number of commits walked per repository (0 means unlimited)"},
		},
		Action: a.checkAllAction,
	}
}

// checkAllAction is the incremental, cache-persisting mode: every
// configured repository is walked from its EntryCache frontier and the
// updated frontier is flushed back to cache.json once all repositories
// have been processed. A per-repository reference error is logged and
// that repository is skipped, per spec §7's "continue with the next
// repository" policy; the command itself still reports a non-zero exit if
// any repository failed.
func (a *App) checkAllAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}
	gcache, err := a.deps.LoadCache()
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if addr := rootFlag(cmd, "metrics-addr", (*cli.Command).String); addr != "" {
		rec = metrics.NewRecorder()
		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go metrics.Serve(metricsCtx, addr)
	}

	names := make([]string, 0, len(cfg.Repositories))
	for name := range cfg.Repositories {
		names = append(names, name)
	}
	sort.Strings(names)

	opener := a.deps.Opener()
	var failures []string

	for _, name := range names {
		repoCfg := cfg.Repositories[name]
		active := rules.Build(rules.Config{
			Exclude: cfg.Rules.Exclude,
			Include: cfg.Rules.Include,
			Options: cfg.Rules.Options,
		})

		repo, err := opener.Open(ctx, repoCfg.URL)
		if err != nil {
			log.Error("check-all: could not open repository", "name", name, "err", err)
			failures = append(failures, name)
			continue
		}

		key := cache.Key(name, repoCfg.Reference)
		prevEntry, _ := gcache.Get(key)

		fmt.Fprintf(cmd.Root().Writer, "# %s (%s)\n", name, repoCfg.Reference)
		finalEntry, err := runEngine(ctx, runRequest{
			repo:      repo,
			reference: repoCfg.Reference,
			depth:     int(cmd.Int("depth")),
			active:    active,
			prevEntry: prevEntry,
			w:         cmd.Root().Writer,
			format:    sinkFormatOf(cmd),
			colorize:  colorOf(cmd),
			recorder:  rec,
		})
		if err != nil {
			log.Error("check-all: repository walk failed", "name", name, "err", err)
			failures = append(failures, name)
			continue
		}

		if err := gcache.Put(key, finalEntry); err != nil {
			log.Error("check-all: could not stage cache entry", "name", name, "err", err)
		}
	}

	if err := gcache.Save(); err != nil {
		log.Error("check-all: could not flush cache", "err", err)
	}

	if len(failures) > 0 {
		return herrors.Reference("cmd.checkAllAction", fmt.Errorf("repositories failed: %v", failures))
	}
	return nil
}
