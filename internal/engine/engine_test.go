package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notgnoshi/herostratus/internal/cache"
	"github.com/notgnoshi/herostratus/internal/diffdriver"
	"github.com/notgnoshi/herostratus/internal/engine"
	"github.com/notgnoshi/herostratus/internal/gittest"
	"github.com/notgnoshi/herostratus/internal/rules"
	"github.com/notgnoshi/herostratus/internal/walker"
)

func newTestEngine(
	t *testing.T,
	r *gittest.Repo,
	cfg rules.Config,
	prev cache.EntryCache,
) *engine.Engine {
	t.Helper()

	w := walker.New(r.Repository)
	root, err := w.Parse("HEAD")
	require.NoError(t, err)

	active := rules.Build(cfg)
	driver := diffdriver.New(r.Repository)

	eng, err := engine.New(r.Repository, w, root, active, driver, prev, 0)
	require.NoError(t, err)
	return eng
}

func drain(e *engine.Engine) []rules.Achievement {
	var out []rules.Achievement
	for {
		a, ok := e.Next()
		if !ok {
			return out
		}
		out = append(out, a)
	}
}

func TestEngineGrantsFixupAchievement(t *testing.T) {
	t.Parallel()

	r, _ := gittest.WithEmptyCommits("feat: normal", "fixup! feat: normal")
	eng := newTestEngine(t, r, rules.Config{Exclude: []string{"all"}, Include: []string{"fixup"}}, cache.EntryCache{})

	got := drain(eng)
	require.Len(t, got, 1)
	assert.Equal(t, "I meant to fix that up later, I swear!", got[0].Name)
}

func TestEngineFinalizesSubjectLineAccumulator(t *testing.T) {
	t.Parallel()

	r, _ := gittest.WithEmptyCommits("0123456789", "1234", "1234567", "12345")
	cfg := rules.Config{
		Exclude: []string{"all"},
		Include: []string{"shortest-subject-line", "longest-subject-line"},
	}
	eng := newTestEngine(t, r, cfg, cache.EntryCache{})

	got := drain(eng)
	require.Len(t, got, 1)
	assert.Equal(t, "Brevity is the soul of wit", got[0].Name)
}

func TestEngineIncrementalNoOpWhenCacheUpToDate(t *testing.T) {
	t.Parallel()

	r, _ := gittest.WithEmptyCommits("feat: one", "fixup! nested")
	cfg := rules.Config{Exclude: []string{"all"}, Include: []string{"fixup"}}

	first := newTestEngine(t, r, cfg, cache.EntryCache{})
	firstAchievements := drain(first)
	require.Len(t, firstAchievements, 1)
	entry := first.FinalEntryCache()
	assert.NotEmpty(t, entry.LastProcessedCommit)
	assert.ElementsMatch(t, []int{1}, entry.LastProcessedRules)

	second := newTestEngine(t, r, cfg, entry)
	secondAchievements := drain(second)
	assert.Empty(t, secondAchievements)
}

func TestEngineIncrementalPathologicalSuspendsOnlyMatchingDescriptor(t *testing.T) {
	t.Parallel()

	r, _ := gittest.WithEmptyCommits("0123456789", "1234", "1234567", "12345")

	onlyShortest := rules.Config{Exclude: []string{"all"}, Include: []string{"shortest-subject-line"}}
	first := newTestEngine(t, r, onlyShortest, cache.EntryCache{})
	firstAchievements := drain(first)
	require.Len(t, firstAchievements, 1)
	assert.Equal(t, "Brevity is the soul of wit", firstAchievements[0].Name)

	entry := first.FinalEntryCache()
	assert.ElementsMatch(t, []int{2}, entry.LastProcessedRules)

	both := rules.Config{
		Exclude: []string{"all"},
		Include: []string{"shortest-subject-line", "longest-subject-line"},
		Options: map[string]map[string]any{"subject-line-length": {"longest_threshold": 8}},
	}
	second := newTestEngine(t, r, both, entry)
	secondAchievements := drain(second)

	var names []string
	for _, a := range secondAchievements {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "50 characters was more of a suggestion anyways")
}
