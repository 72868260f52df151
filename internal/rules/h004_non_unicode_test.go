package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notgnoshi/herostratus/internal/gitobj"
	"github.com/notgnoshi/herostratus/internal/rules"
)

func TestNonUnicode(t *testing.T) {
	t.Parallel()

	active := rules.Build(rules.Config{Exclude: []string{"all"}, Include: []string{"non-unicode"}})
	require.Len(t, active, 1)
	r := active[0]

	assert.Empty(t, r.Process(commitWithTitle("a normal message")))

	bad := &gitobj.Commit{MessageTitle: []byte("bad "), MessageBody: []byte{0xff, 0xfe}}
	got := r.Process(bad)
	require.Len(t, got, 1)
	assert.Equal(t, "But ... How?!", got[0].Name)
}
