// Package gittest builds throwaway in-memory repositories for exercising
// the walker, diff driver, and rule engine without touching disk. Adapted
// from the fixture helpers in herostratus-tests/src/fixtures/repository.rs.
package gittest

import (
	"fmt"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Epoch is the fixture's base commit time; successive commits advance from
// here one minute apart unless a caller-supplied time is used.
var Epoch = time.Date(2024, 3, 28, 12, 30, 30, 0, time.FixedZone("", -5*60*60))

// Repo is an in-memory repository plus its working tree, for test use only.
type Repo struct {
	*git.Repository
	wt *git.Worktree
}

// New creates an empty in-memory repository.
func New() *Repo {
	storer := memory.NewStorage()
	fs := memfs.New()

	repo, err := git.Init(storer, fs)
	if err != nil {
		panic(fmt.Errorf("gittest: init repo: %w", err))
	}

	wt, err := repo.Worktree()
	if err != nil {
		panic(fmt.Errorf("gittest: worktree: %w", err))
	}

	return &Repo{Repository: repo, wt: wt}
}

// WriteFile creates or overwrites path with content and stages it.
func (r *Repo) WriteFile(path, content string) {
	f, err := r.wt.Filesystem.Create(path)
	if err != nil {
		panic(fmt.Errorf("gittest: create %s: %w", path, err))
	}
	if _, err := f.Write([]byte(content)); err != nil {
		panic(fmt.Errorf("gittest: write %s: %w", path, err))
	}
	_ = f.Close()

	if _, err := r.wt.Add(path); err != nil {
		panic(fmt.Errorf("gittest: stage %s: %w", path, err))
	}
}

// RemoveFile removes path from the working tree and the index.
func (r *Repo) RemoveFile(path string) {
	if _, err := r.wt.Remove(path); err != nil {
		panic(fmt.Errorf("gittest: remove %s: %w", path, err))
	}
}

// Commit creates a commit with the given message and time, returning its hash.
func (r *Repo) Commit(message string, when time.Time) plumbing.Hash {
	sig := &object.Signature{Name: "Herostratus", Email: "herostratus@example.com", When: when}
	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author:    sig,
		Committer: sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		panic(fmt.Errorf("gittest: commit: %w", err))
	}
	return hash
}

// MergeCommit creates a commit whose parents are exactly extraParents, in
// order; HEAD is not added as a parent. Used for merge commits and for
// committing onto a parent other than HEAD.
func (r *Repo) MergeCommit(message string, when time.Time, extraParents ...plumbing.Hash) plumbing.Hash {
	sig := &object.Signature{Name: "Herostratus", Email: "herostratus@example.com", When: when}
	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           extraParents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		panic(fmt.Errorf("gittest: merge commit: %w", err))
	}
	return hash
}

// WithEmptyCommits builds a repo with one empty commit per message, in
// order, each a minute apart starting at Epoch. It returns the repo and the
// hashes in commit order (oldest first).
func WithEmptyCommits(messages ...string) (*Repo, []plumbing.Hash) {
	r := New()
	hashes := make([]plumbing.Hash, 0, len(messages))
	when := Epoch
	for _, m := range messages {
		hashes = append(hashes, r.Commit(m, when))
		when = when.Add(time.Minute)
	}
	return r, hashes
}
