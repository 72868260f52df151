package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/herrors"
)

func (a *App) buildFetchAllCommand() *cli.Command {
	return &cli.Command{
		Name:   "fetch-all",
		Usage:  "verify every configured repository is reachable",
		Action: a.fetchAllAction,
	}
}

// fetchAllAction opens every configured repository just to confirm it can
// be reached, without running the engine over it. The network/clone legwork
// itself stays behind the internal/clone black-box per Non-goals.
func (a *App) fetchAllAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Repositories))
	for name := range cfg.Repositories {
		names = append(names, name)
	}
	sort.Strings(names)

	opener := a.deps.Opener()
	var unreachable []string
	for _, name := range names {
		if _, err := opener.Open(ctx, cfg.Repositories[name].URL); err != nil {
			fmt.Fprintf(cmd.Root().Writer, "%s: unreachable: %v\n", name, err)
			unreachable = append(unreachable, name)
			continue
		}
		fmt.Fprintf(cmd.Root().Writer, "%s: ok\n", name)
	}

	if len(unreachable) > 0 {
		return herrors.Reference("cmd.fetchAllAction", fmt.Errorf("unreachable repositories: %v", unreachable))
	}
	return nil
}
