package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notgnoshi/herostratus/internal/gitobj"
	"github.com/notgnoshi/herostratus/internal/rules"
)

func newEmptyCommitRule(t *testing.T) rules.DiffRule {
	t.Helper()
	active := rules.Build(rules.Config{Exclude: []string{"all"}, Include: []string{"empty-commit"}})
	require.Len(t, active, 1)
	dr, ok := active[0].(rules.DiffRule)
	require.True(t, ok)
	return dr
}

func TestEmptyCommitGrantsOnNoChanges(t *testing.T) {
	t.Parallel()

	r := newEmptyCommitRule(t)
	c := &gitobj.Commit{}

	r.OnDiffStart(c)
	got := r.OnDiffEnd(c)
	require.Len(t, got, 1)
	assert.Equal(t, "You can always add more later", got[0].Name)
}

func TestEmptyCommitSkipsWhenChangesSeen(t *testing.T) {
	t.Parallel()

	r := newEmptyCommitRule(t)
	c := &gitobj.Commit{}

	r.OnDiffStart(c)
	decision := r.OnDiffChange(c, gitobj.Addition{PathValue: "a.txt"}, nil)
	assert.Equal(t, rules.Cancel, decision)
	assert.Empty(t, r.OnDiffEnd(c))
}

func TestEmptyCommitSkipsMergeCommits(t *testing.T) {
	t.Parallel()

	r := newEmptyCommitRule(t)
	c := &gitobj.Commit{Parents: []gitobj.CommitID{{}, {}}}

	r.OnDiffStart(c)
	assert.Empty(t, r.OnDiffEnd(c))
}
