package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/diffdriver"
	"github.com/notgnoshi/herostratus/internal/engine"
	"github.com/notgnoshi/herostratus/internal/herrors"
	"github.com/notgnoshi/herostratus/internal/metrics"
	"github.com/notgnoshi/herostratus/internal/rules"
	"github.com/notgnoshi/herostratus/internal/sink"
	"github.com/notgnoshi/herostratus/internal/walker"
)

// argAt returns the nth positional argument, or "" if there are fewer.
func argAt(cmd *cli.Command, n int) string {
	args := cmd.Args().Slice()
	if n < 0 || n >= len(args) {
		return ""
	}
	return args[n]
}

// sinkFormatOf reads the --format global flag (text/json/yaml).
func sinkFormatOf(cmd *cli.Command) sink.Format {
	switch rootFlag(cmd, "format", (*cli.Command).String) {
	case "json":
		return sink.FormatJSON
	case "yaml":
		return sink.FormatYAML
	default:
		return sink.FormatText
	}
}

// colorOf reads the --color global flag.
func colorOf(cmd *cli.Command) bool {
	return rootFlag(cmd, "color", (*cli.Command).Bool)
}

// formatDocument renders v per format, for the --get-config/--list-rules
// informational flags, which don't go through the achievement sink.
func formatDocument(v any, format sink.Format) (string, error) {
	switch format {
	case sink.FormatYAML:
		out, err := yaml.Marshal(v)
		return string(out), err
	case sink.FormatJSON:
		out, err := json.MarshalIndent(v, "", "  ")
		return string(out), err
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		return string(out), err
	}
}

// runRequest bundles what runEngine needs to drive one repository's walk,
// shared by check and check-all.
type runRequest struct {
	repo      *git.Repository
	reference string
	depth     int
	active    []rules.Rule
	prevEntry cache.EntryCache
	w         io.Writer
	format    sink.Format
	colorize  bool
	recorder  *metrics.Recorder
}

// runEngine resolves req.reference, walks the commit history, streams
// achievements to a sink, and returns the EntryCache to persist (if the
// caller wants one; check discards it, check-all persists it).
func runEngine(ctx context.Context, req runRequest) (cache.EntryCache, error) {
	cw := walker.New(req.repo)
	root, err := cw.Parse(req.reference)
	if err != nil {
		return cache.EntryCache{}, herrors.Reference("walker.Parse", err)
	}

	driver := diffdriver.New(req.repo)
	eng, err := engine.New(req.repo, cw, root, req.active, driver, req.prevEntry, req.depth)
	if err != nil {
		return cache.EntryCache{}, herrors.Reference("engine.New", err)
	}

	s := sink.New(req.w, req.format, req.active, req.colorize)
	for {
		select {
		case <-ctx.Done():
			eng.Stop()
			return eng.FinalEntryCache(), ctx.Err()
		default:
		}

		a, ok := eng.Next()
		if !ok {
			break
		}
		if err := s.Emit(a); err != nil {
			return cache.EntryCache{}, herrors.Wrap("sink.Emit", herrors.KindOther, err)
		}
	}

	stats := eng.Stats()
	if err := s.Finish(stats); err != nil {
		return cache.EntryCache{}, herrors.Wrap("sink.Finish", herrors.KindOther, err)
	}
	if req.recorder != nil {
		req.recorder.Observe(stats.CommitsWalked, stats.AchievementsGranted, stats.CacheHits)
	}

	return eng.FinalEntryCache(), nil
}
