// Package cache persists the GlobalCache: a forward-compatible JSON record
// of per-(repository, reference) walk progress, read once at engine
// construction and written once at clean shutdown.
package cache

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/afero"

	"github.com/notgnoshi/herostratus/internal/gitobj"
)

// EntryCache is the per-(repository, reference) persisted progress record:
// the newest commit examined on the most recently completed run, and the
// descriptor ids that were enabled for that run.
type EntryCache struct {
	LastProcessedCommit string `json:"last_processed_commit,omitempty"`
	LastProcessedRules  []int  `json:"last_processed_rules"`
}

// LastProcessedCommitID decodes LastProcessedCommit as a CommitID. The
// second return is false if no commit was ever recorded.
func (e EntryCache) LastProcessedCommitID() (gitobj.CommitID, bool) {
	if e.LastProcessedCommit == "" {
		return gitobj.CommitID{}, false
	}
	return gitobj.CommitID(plumbing.NewHash(e.LastProcessedCommit)), true
}

// Key builds the GlobalCache lookup key for a repository name and reference,
// matching the "<name>#<reference>" format spec.
func Key(name, reference string) string {
	return fmt.Sprintf("%s#%s", name, reference)
}

// GlobalCache is the full on-disk cache: a mapping from key to EntryCache.
// Entries are held as raw JSON so fields this build does not know about
// survive a read/modify/write cycle untouched.
type GlobalCache struct {
	fs   afero.Fs
	path string

	entries map[string]json.RawMessage
}

// Load reads the GlobalCache from path, returning an empty cache if the
// file does not exist.
func Load(fs afero.Fs, path string) (*GlobalCache, error) {
	g := &GlobalCache{fs: fs, path: path, entries: map[string]json.RawMessage{}}

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cache: stat %s: %w", path, err)
	}
	if !exists {
		return g, nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cache: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return g, nil
	}
	if err := json.Unmarshal(raw, &g.entries); err != nil {
		return nil, fmt.Errorf("cache: parse %s: %w", path, err)
	}
	return g, nil
}

// Get looks up the EntryCache for key, decoding only the fields this build
// understands. The second return is false if key is absent or unreadable.
func (g *GlobalCache) Get(key string) (EntryCache, bool) {
	raw, ok := g.entries[key]
	if !ok {
		return EntryCache{}, false
	}
	var e EntryCache
	if err := json.Unmarshal(raw, &e); err != nil {
		log.Warn("cache: discarding unreadable entry", "key", key, "err", err)
		return EntryCache{}, false
	}
	return e, true
}

// Put stores the EntryCache for key, merging its known fields over any
// unknown fields already present under key so a future build's fields
// survive being written back by this one.
func (g *GlobalCache) Put(key string, entry EntryCache) error {
	merged := map[string]any{}
	if raw, ok := g.entries[key]; ok {
		_ = json.Unmarshal(raw, &merged)
	}

	known, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: marshal entry for %s: %w", key, err)
	}
	var knownMap map[string]any
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return fmt.Errorf("cache: remarshal entry for %s: %w", key, err)
	}
	for k, v := range knownMap {
		merged[k] = v
	}

	out, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("cache: encode entry for %s: %w", key, err)
	}
	g.entries[key] = out
	return nil
}

// Save writes the GlobalCache back to its path. Callers must log and
// swallow a failure here per the flush-must-not-propagate contract; Save
// itself only reports the error.
func (g *GlobalCache) Save() error {
	out, err := json.MarshalIndent(g.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", g.path, err)
	}
	if err := afero.WriteFile(g.fs, g.path, out, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", g.path, err)
	}
	return nil
}
