// Package cmd assembles the CLI surface (spec's check/check-all/add/
// remove/fetch-all subcommands) on top of the engine, sink, cache, config,
// and clone packages. Modeled directly on the teacher's internal/app: an
// App struct wrapping Dependencies, a buildCLIApp tree of small
// build<Name>Command functions, and a Before hook that sets up global
// state ahead of any Action.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/notgnoshi/herostratus/internal/herrors"
	"github.com/notgnoshi/herostratus/internal/rules"
	"github.com/notgnoshi/herostratus/internal/version"
)

// App is the CLI application. deps starts nil and is populated by
// setupGlobalFlags once --data-dir is known.
type App struct {
	deps *Dependencies
}

// Run is the process entry point: build an App, execute it against args,
// and translate any returned error into a process exit code exactly like
// the teacher's app.Run.
func Run(args []string) int {
	a := &App{}
	if err := a.Execute(context.Background(), args); err != nil {
		log.Error(err.Error())
		return herrors.ExitCodeOf(err)
	}
	return int(herrors.ExitSuccess)
}

// Execute runs the CLI application with the given context and arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	return a.buildCLIApp().Run(ctx, args)
}

func (a *App) buildCLIApp() *cli.Command {
	return &cli.Command{
		Name:        "herostratus",
		Usage:       "grant commit message achievements",
		Description: "herostratus walks a repository's commit history and grants achievements for notable commit message patterns.",
		Version:     version.GetShort(),
		Flags:       a.buildGlobalFlags(),
		Before:      a.setupGlobalFlags,
		Action:      a.rootAction,
		Commands: []*cli.Command{
			a.buildCheckCommand(),
			a.buildCheckAllCommand(),
			a.buildAddCommand(),
			a.buildRemoveCommand(),
			a.buildFetchAllCommand(),
		},
	}
}

func (a *App) buildGlobalFlags() []cli.Flag {
	dataDir, err := defaultDataDir()
	if err != nil {
		dataDir = "."
	}

	return []cli.Flag{
		&cli.StringFlag{Name: "data-dir", Value: dataDir, Usage: "directory holding config.toml, cache.json, and repository clones"},
		&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn, or error"},
		&cli.BoolFlag{Name: "color", Usage: "colorize achievement output"},
		&cli.StringFlag{Name: "format", Value: "text", Usage: "output format: text, json, or yaml"},
		&cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address for the duration of the run"},
		&cli.BoolFlag{Name: "get-data-dir", Usage: "print the resolved data directory and exit"},
		&cli.BoolFlag{Name: "get-config", Usage: "print the loaded configuration and exit"},
		&cli.BoolFlag{Name: "list-rules", Usage: "print the rule catalog and exit"},
	}
}

// setupGlobalFlags is the Before hook: it resolves the log level (env
// override wins per spec §6.2), constructs Dependencies, and ensures the
// data directory exists.
func (a *App) setupGlobalFlags(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level := cmd.String("log-level")
	if env := os.Getenv("HEROSTRATUS_LOG"); env != "" {
		level = env
	}
	if parsed, err := log.ParseLevel(level); err == nil {
		log.SetLevel(parsed)
	}

	deps := NewDependencies(ctx, cmd.String("data-dir"))
	if err := deps.FS.MkdirAll(deps.DataDir, 0o755); err != nil {
		return ctx, herrors.Config("cmd.setupGlobalFlags", fmt.Errorf("create data directory %s: %w", deps.DataDir, err))
	}
	a.deps = deps

	return ctx, nil
}

// rootAction handles the informational global flags and otherwise reports
// a missing-subcommand usage error.
func (a *App) rootAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("get-data-dir") {
		fmt.Fprintln(cmd.Root().Writer, a.deps.DataDir)
		return nil
	}
	if cmd.Bool("get-config") {
		return a.printConfig(cmd)
	}
	if cmd.Bool("list-rules") {
		return a.printRuleCatalog(cmd)
	}
	if len(cmd.Args().Slice()) == 0 {
		return herrors.Usage("missing subcommand: expected one of check, check-all, add, remove, fetch-all")
	}
	return nil
}

func (a *App) printConfig(cmd *cli.Command) error {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return err
	}
	out, err := formatDocument(cfg, sinkFormatOf(cmd))
	if err != nil {
		return herrors.Config("cmd.printConfig", err)
	}
	fmt.Fprintln(cmd.Root().Writer, out)
	return nil
}

func (a *App) printRuleCatalog(cmd *cli.Command) error {
	descs := rules.AllDescriptors()
	out, err := formatDocument(descs, sinkFormatOf(cmd))
	if err != nil {
		return herrors.Config("cmd.printRuleCatalog", err)
	}
	fmt.Fprintln(cmd.Root().Writer, out)
	return nil
}

// rootFlag looks up a flag value from the root command, since subcommands
// don't re-declare global flags but still need them (data-dir, color, ...).
func rootFlag[T any](cmd *cli.Command, name string, get func(*cli.Command, string) T) T {
	if cmd.Root() != nil {
		return get(cmd.Root(), name)
	}
	return get(cmd, name)
}
