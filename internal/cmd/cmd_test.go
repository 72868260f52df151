package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// newOnDiskRepo builds a real on-disk repository with one achievement-
// triggering commit; internal/clone opens local paths via git.PlainOpen,
// which needs a real filesystem, not an in-memory one.
func newOnDiskRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()}
	_, err = wt.Commit("fixup! placeholder commit", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	return dir
}

func newTestApp(t *testing.T, dataDir string) *App {
	t.Helper()
	return &App{deps: NewTestDependencies(context.Background(), dataDir)}
}

func TestCheckActionPrintsAchievementAndStaysStateless(t *testing.T) {
	t.Parallel()

	repoPath := newOnDiskRepo(t)
	dataDir := t.TempDir()
	a := newTestApp(t, dataDir)

	check := a.buildCheckCommand()
	var buf bytes.Buffer
	check.Writer = &buf

	err := check.Run(context.Background(), []string{"check", repoPath})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "H1-fixup")

	exists, err := afero.Exists(a.deps.FS, a.deps.cachePath())
	require.NoError(t, err)
	assert.False(t, exists, "check must never write cache.json")
}

func TestAddThenRemoveRoundTrips(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	a := newTestApp(t, dataDir)

	add := a.buildAddCommand()
	require.NoError(t, add.Run(context.Background(), []string{"add", "myrepo", "https://example.com/myrepo.git", "main"}))

	cfg, err := a.deps.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/myrepo.git", cfg.Repositories["myrepo"].URL)
	assert.Equal(t, "main", cfg.Repositories["myrepo"].Reference)

	remove := a.buildRemoveCommand()
	require.NoError(t, remove.Run(context.Background(), []string{"remove", "myrepo"}))

	cfg, err = a.deps.LoadConfig()
	require.NoError(t, err)
	_, stillPresent := cfg.Repositories["myrepo"]
	assert.False(t, stillPresent)
}

func TestRemoveUnknownRepositoryIsUsageError(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, t.TempDir())
	remove := a.buildRemoveCommand()

	err := remove.Run(context.Background(), []string{"remove", "does-not-exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tracked repository")
}

func TestRootActionWithNoSubcommandIsUsageError(t *testing.T) {
	t.Parallel()

	a := newTestApp(t, t.TempDir())
	root := &cli.Command{
		Name:   "herostratus",
		Flags:  a.buildGlobalFlags(),
		Action: a.rootAction,
	}

	err := root.Run(context.Background(), []string{"herostratus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subcommand")
}
