// Package engine drives the commit walk, fans out to rules and the diff
// driver, enforces the incremental-cache early-exit protocol, and exposes
// the resulting achievements as a pull-based lazy stream.
package engine

import (
	"iter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/diffdriver"
	"github.com/notgnoshi/herostratus/internal/gitobj"
	"github.com/notgnoshi/herostratus/internal/rules"
	"github.com/notgnoshi/herostratus/internal/walker"
)

// cacheClearInterval mirrors the diff driver's own fixed-interval note: the
// engine is responsible for asking the driver to clear its cache every 50
// commits processed.
const cacheClearInterval = 50

// Stats summarizes a completed (or in-progress) run for the sink and for
// the optional Prometheus exporter.
type Stats struct {
	CommitsWalked       int
	AchievementsGranted int
	CacheHits           int
	Elapsed             time.Duration
}

// Engine is the pull-based iterator described by the rule engine contract.
// Construct with New, drain with Next, and read FinalEntryCache once Next
// reports exhaustion (or after calling Stop for an early cancellation).
type Engine struct {
	repo   *git.Repository
	active []rules.Rule
	driver *diffdriver.Driver

	next func() (gitobj.CommitID, bool)
	stop func()

	depth                  int
	commitsWalked          int
	commitsSinceCacheClear int

	prevEntry         cache.EntryCache
	suppressedRuleIDs []int

	buffer          []rules.Achievement
	hasFinalized    bool
	firstCommitSeen *gitobj.CommitID
	stampedRuleIDs  []int
	stamped         bool

	start               time.Time
	achievementsGranted int
	cacheHits           int
}

// New builds an Engine that walks root in repo, running active over each
// commit. prevEntry is the EntryCache loaded for this (repository,
// reference) pair; depth caps the number of commits pulled from the walker
// (0 means unlimited).
func New(
	repo *git.Repository,
	w *walker.CommitWalker,
	root gitobj.CommitID,
	active []rules.Rule,
	driver *diffdriver.Driver,
	prevEntry cache.EntryCache,
	depth int,
) (*Engine, error) {
	seq, err := w.Walk(root)
	if err != nil {
		return nil, err
	}

	next, stop := iter.Pull(seq)
	return &Engine{
		repo:      repo,
		active:    active,
		driver:    driver,
		next:      next,
		stop:      stop,
		depth:     depth,
		prevEntry: prevEntry,
	}, nil
}

// Next pulls the next achievement from the stream, or reports exhaustion.
// Once exhausted, subsequent calls keep returning false without
// re-finalizing or re-stamping the cache.
func (e *Engine) Next() (rules.Achievement, bool) {
	if e.start.IsZero() {
		e.start = time.Now()
	}

	for {
		if len(e.buffer) > 0 {
			a := e.buffer[0]
			e.buffer = e.buffer[1:]
			e.achievementsGranted++
			return a, true
		}

		if !e.hasFinalized {
			id, ok := e.pullNextCommit()
			if ok {
				e.buffer = append(e.buffer, e.processCommit(id)...)
				continue
			}
			e.finalize()
			continue
		}

		return rules.Achievement{}, false
	}
}

// Run drains the stream as an iter.Seq, for callers that prefer range-over-func.
func (e *Engine) Run() iter.Seq[rules.Achievement] {
	return func(yield func(rules.Achievement) bool) {
		for {
			a, ok := e.Next()
			if !ok {
				return
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Stats reports counters for the achievement sink's summary.
func (e *Engine) Stats() Stats {
	return Stats{
		CommitsWalked:       e.commitsWalked,
		AchievementsGranted: e.achievementsGranted,
		CacheHits:           e.cacheHits,
		Elapsed:             time.Since(e.start),
	}
}

// FinalEntryCache returns the EntryCache to persist for this run: valid
// once Next has reported exhaustion, or immediately after Stop for a
// mid-stream cancellation (both cases stamp best-effort values).
func (e *Engine) FinalEntryCache() cache.EntryCache {
	if !e.stamped {
		e.stampCache()
	}
	var last string
	if e.firstCommitSeen != nil {
		last = e.firstCommitSeen.String()
	}
	return cache.EntryCache{LastProcessedCommit: last, LastProcessedRules: e.stampedRuleIDs}
}

// Stop cancels the walk early (external cancellation, not an early-exit
// optimization): the EntryCache still reflects best-effort progress, as if
// no further commits had been consumed.
func (e *Engine) Stop() {
	e.stop()
	if !e.stamped {
		e.stampCache()
	}
}

func (e *Engine) pullNextCommit() (gitobj.CommitID, bool) {
	if e.depth > 0 && e.commitsWalked >= e.depth {
		return gitobj.CommitID{}, false
	}
	id, ok := e.next()
	if !ok {
		return gitobj.CommitID{}, false
	}
	e.commitsWalked++
	return id, true
}

func (e *Engine) processCommit(id gitobj.CommitID) []rules.Achievement {
	raw, err := e.repo.CommitObject(plumbing.Hash(id))
	if err != nil {
		log.Warn("engine: skipping unreadable commit", "commit", id, "err", err)
		return nil
	}
	c := gitobj.FromObject(raw)

	if e.firstCommitSeen == nil {
		seen := c.ID
		e.firstCommitSeen = &seen
	}

	if prevID, ok := e.prevEntry.LastProcessedCommitID(); ok && prevID == c.ID {
		return e.handleEarlyExit(c)
	}
	return e.normalProcessing(c)
}

// handleEarlyExit implements the frontier-of-previous-run protocol at
// descriptor granularity: ids already covered by the previous run are
// suppressed on their owning rule, rules left with no enabled descriptor
// are pre-finalized and dropped, and if no descriptor is new there is no
// further work at all.
func (e *Engine) handleEarlyExit(c *gitobj.Commit) []rules.Achievement {
	e.cacheHits++
	enabled := e.enabledIDs(e.active)
	prevSet := make(map[int]bool, len(e.prevEntry.LastProcessedRules))
	for _, id := range e.prevEntry.LastProcessedRules {
		prevSet[id] = true
	}

	var newOnly []int
	for id := range enabled {
		if !prevSet[id] {
			newOnly = append(newOnly, id)
		}
	}

	for id := range enabled {
		if !prevSet[id] {
			continue
		}
		if r := e.ruleOwning(e.active, id); r != nil {
			r.DisableByID(id)
			e.suppressedRuleIDs = append(e.suppressedRuleIDs, id)
		}
	}

	if len(newOnly) == 0 {
		e.hasFinalized = true
		out := e.finalizeRules(e.active)
		e.stampCache()
		return out
	}

	var remaining []rules.Rule
	var preFinalized []rules.Achievement
	for _, r := range e.active {
		if !e.allDisabled(r) {
			remaining = append(remaining, r)
			continue
		}
		e.reenableSuppressed(r)
		preFinalized = append(preFinalized, r.Finalize()...)
	}
	e.active = remaining

	return append(preFinalized, e.normalProcessing(c)...)
}

func (e *Engine) normalProcessing(c *gitobj.Commit) []rules.Achievement {
	var achievements []rules.Achievement
	for _, r := range e.active {
		achievements = append(achievements, r.Process(c)...)
	}
	achievements = append(achievements, e.driver.Run(c, e.active)...)

	e.commitsSinceCacheClear++
	if e.commitsSinceCacheClear >= cacheClearInterval {
		e.driver.ClearCache()
		e.commitsSinceCacheClear = 0
	}
	return achievements
}

func (e *Engine) finalize() {
	out := e.finalizeRules(e.active)
	e.stampCache()
	e.buffer = append(e.buffer, out...)
	e.hasFinalized = true
}

// finalizeRules re-enables every suppressed descriptor id on rs before
// calling each rule's Finalize, so accumulator rules emit their answer even
// though the descriptor was disabled for (part of) the walk.
func (e *Engine) finalizeRules(rs []rules.Rule) []rules.Achievement {
	for _, id := range e.suppressedRuleIDs {
		if r := e.ruleOwning(rs, id); r != nil {
			r.EnableByID(id)
		}
	}

	var out []rules.Achievement
	for _, r := range rs {
		out = append(out, r.Finalize()...)
	}
	return out
}

func (e *Engine) stampCache() {
	if e.stamped {
		return
	}
	ids := e.enabledIDs(e.active)
	e.stampedRuleIDs = make([]int, 0, len(ids))
	for id := range ids {
		e.stampedRuleIDs = append(e.stampedRuleIDs, id)
	}
	e.stamped = true
}

func (e *Engine) enabledIDs(rs []rules.Rule) map[int]bool {
	ids := make(map[int]bool)
	for _, r := range rs {
		for _, d := range r.Descriptors() {
			if d.Enabled {
				ids[d.ID] = true
			}
		}
	}
	return ids
}

func (e *Engine) ruleOwning(rs []rules.Rule, id int) rules.Rule {
	for _, r := range rs {
		for _, d := range r.Descriptors() {
			if d.ID == id {
				return r
			}
		}
	}
	return nil
}

func (e *Engine) allDisabled(r rules.Rule) bool {
	for _, d := range r.Descriptors() {
		if d.Enabled {
			return false
		}
	}
	return true
}

func (e *Engine) reenableSuppressed(r rules.Rule) {
	for _, id := range e.suppressedRuleIDs {
		r.EnableByID(id)
	}
}
