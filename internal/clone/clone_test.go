package clone_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notgnoshi/herostratus/internal/clone"
)

func newOnDiskRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dir+"/README.md", []byte("hi\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	_, err = wt.Commit("feat: initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestOpenLocalPath(t *testing.T) {
	t.Parallel()

	path := newOnDiskRepo(t)

	o := clone.New(clone.DefaultConfig(t.TempDir()))
	repo, err := o.Open(context.Background(), path)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	assert.False(t, head.Hash().IsZero())
}

func TestValidateHostRejectsUnlisted(t *testing.T) {
	t.Parallel()

	cfg := clone.DefaultConfig(t.TempDir())
	cfg.AllowedHosts = []string{"github.com"}
	o := clone.New(cfg)

	err := o.ValidateHost("https://evil.example.com/user/repo.git")
	assert.ErrorIs(t, err, clone.ErrUnauthorizedHost)
}

func TestValidateHostAllowsListed(t *testing.T) {
	t.Parallel()

	cfg := clone.DefaultConfig(t.TempDir())
	cfg.AllowedHosts = []string{"github.com"}
	o := clone.New(cfg)

	assert.NoError(t, o.ValidateHost("https://github.com/notgnoshi/herostratus.git"))
	assert.NoError(t, o.ValidateHost("git@github.com:notgnoshi/herostratus.git"))
}

func TestValidateHostUnrestrictedByDefault(t *testing.T) {
	t.Parallel()

	o := clone.New(clone.DefaultConfig(t.TempDir()))
	assert.NoError(t, o.ValidateHost("https://anything.example.com/repo.git"))
}
