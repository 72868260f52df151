package cache_test

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notgnoshi/herostratus/internal/cache"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	g, err := cache.Load(fs, "/data/cache.json")
	require.NoError(t, err)

	_, ok := g.Get(cache.Key("herostratus", "HEAD"))
	assert.False(t, ok)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	g, err := cache.Load(fs, "/data/cache.json")
	require.NoError(t, err)

	key := cache.Key("herostratus", "refs/heads/main")
	entry := cache.EntryCache{
		LastProcessedCommit: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		LastProcessedRules:  []int{1, 2, 3},
	}
	require.NoError(t, g.Put(key, entry))
	require.NoError(t, g.Save())

	g2, err := cache.Load(fs, "/data/cache.json")
	require.NoError(t, err)
	got, ok := g2.Get(key)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestPutPreservesUnknownFields(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	key := cache.Key("herostratus", "HEAD")
	seed := map[string]json.RawMessage{
		key: json.RawMessage(`{"last_processed_commit":"bbbb","last_processed_rules":[1],"future_field":"keep-me"}`),
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/data/cache.json", raw, 0o644))

	g, err := cache.Load(fs, "/data/cache.json")
	require.NoError(t, err)

	require.NoError(t, g.Put(key, cache.EntryCache{LastProcessedCommit: "cccc", LastProcessedRules: []int{1, 2}}))
	require.NoError(t, g.Save())

	persisted, err := afero.ReadFile(fs, "/data/cache.json")
	require.NoError(t, err)
	assert.Contains(t, string(persisted), "future_field")
	assert.Contains(t, string(persisted), "keep-me")
}
