// Package sink renders the achievement stream produced by the engine: one
// line per achievement in text mode, then a "## Summary" table of per-rule
// counts, or a single structured json/yaml document for scripted
// consumption.
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/notgnoshi/herostratus/internal/engine"
	"github.com/notgnoshi/herostratus/internal/rules"
)

// Format selects how the stream and summary are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Record is one achievement in structured output form.
type Record struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Commit string `json:"commit" yaml:"commit"`
}

// Report is the full document written for --format json/yaml.
type Report struct {
	Achievements   []Record       `json:"achievements" yaml:"achievements"`
	Summary        map[string]int `json:"summary" yaml:"summary"`
	CommitsWalked  int            `json:"commits_walked" yaml:"commits_walked"`
	ElapsedSeconds float64        `json:"elapsed_seconds" yaml:"elapsed_seconds"`
}

// Sink accumulates achievements as they're emitted and renders the final
// output once the run completes.
type Sink struct {
	w        io.Writer
	format   Format
	colorize bool

	byName map[string]*rules.AchievementDescriptor
	order  []*rules.AchievementDescriptor
	counts map[int]int

	records []Record
}

// New builds a Sink that writes to w in the given format. active supplies
// the descriptor catalog used to resolve each Achievement's pretty id
// ("H<id>-<human_id>") and to order and label the summary table; an
// Achievement whose Name doesn't match any descriptor (should not happen —
// see the catalog-name-uniqueness invariant) is rendered with a "?" id
// rather than dropped. colorize bolds the summary header and colors its
// count column; callers should pass false when w isn't a terminal.
func New(w io.Writer, format Format, active []rules.Rule, colorize bool) *Sink {
	s := &Sink{
		w:        w,
		format:   format,
		colorize: colorize,
		byName:   make(map[string]*rules.AchievementDescriptor),
		counts:   make(map[int]int),
	}
	for _, r := range active {
		for _, d := range r.Descriptors() {
			s.byName[d.DisplayName] = d
			s.order = append(s.order, d)
		}
	}
	return s
}

// Emit records one achievement. In text mode it's written immediately, so a
// long check-all run streams progress rather than buffering silently; json
// and yaml modes buffer until Finish.
func (s *Sink) Emit(a rules.Achievement) error {
	id := "?"
	if d := s.byName[a.Name]; d != nil {
		id = d.PrettyID()
		s.counts[d.ID]++
	}
	rec := Record{ID: id, Name: a.Name, Commit: a.Commit.String()}
	s.records = append(s.records, rec)

	if s.format != FormatText {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "%s %s %s\n", rec.ID, rec.Name, rec.Commit)
	return err
}

// Finish writes the summary table (text) or the full Report document
// (json/yaml), using stats for the commit-walked and elapsed-time counters.
func (s *Sink) Finish(stats engine.Stats) error {
	switch s.format {
	case FormatJSON:
		return json.NewEncoder(s.w).Encode(s.buildReport(stats))
	case FormatYAML:
		return yaml.NewEncoder(s.w).Encode(s.buildReport(stats))
	default:
		return s.writeTextSummary(stats)
	}
}

func (s *Sink) buildReport(stats engine.Stats) Report {
	summary := make(map[string]int, len(s.order))
	for _, d := range s.order {
		if n := s.counts[d.ID]; n > 0 {
			summary[d.PrettyID()] = n
		}
	}
	return Report{
		Achievements:   s.records,
		Summary:        summary,
		CommitsWalked:  stats.CommitsWalked,
		ElapsedSeconds: stats.Elapsed.Seconds(),
	}
}

func (s *Sink) writeTextSummary(stats engine.Stats) error {
	header := "## Summary"
	if s.colorize {
		header = lipgloss.NewStyle().Bold(true).Render(header)
	}
	if _, err := fmt.Fprintln(s.w, header); err != nil {
		return err
	}

	countCell := func(n int) any {
		if !s.colorize {
			return n
		}
		return color.New(color.FgGreen).Sprint(n)
	}

	t := table.NewWriter()
	t.SetOutputMirror(s.w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.AppendHeader(table.Row{"Achievement", "Count"})
	for _, d := range s.order {
		if n := s.counts[d.ID]; n > 0 {
			t.AppendRow(table.Row{d.PrettyID() + " " + d.DisplayName, countCell(n)})
		}
	}
	t.AppendFooter(table.Row{"Total", len(s.records)})
	t.Render()

	_, err := fmt.Fprintf(s.w, "Walked %s commits in %s\n",
		humanize.Comma(int64(stats.CommitsWalked)), stats.Elapsed.Round(time.Millisecond))
	return err
}
