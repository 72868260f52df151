// Package walker resolves a reference string to a commit id and produces a
// lazy, newest-first, topologically consistent sequence of reachable commits.
package walker

import (
	"container/heap"
	"fmt"
	"iter"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/notgnoshi/herostratus/internal/gitobj"
)

// ParseError reports that a reference string failed to resolve to a commit.
type ParseError struct {
	Ref string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse reference %q: %v", e.Ref, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WalkError reports that the walk could not even begin (the root commit
// object itself could not be loaded).
type WalkError struct {
	Err error
}

func (e *WalkError) Error() string { return fmt.Sprintf("walk: %v", e.Err) }
func (e *WalkError) Unwrap() error { return e.Err }

// CommitWalker wraps a repository to translate references into commit ids
// and walk the history graph they root.
type CommitWalker struct {
	repo *git.Repository
}

// New wraps repo for walking.
func New(repo *git.Repository) *CommitWalker {
	return &CommitWalker{repo: repo}
}

// Parse resolves ref_string to a CommitId, peeling annotated tags to their
// target commit.
func (w *CommitWalker) Parse(ref string) (gitobj.CommitID, error) {
	hash, err := w.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return gitobj.CommitID{}, &ParseError{Ref: ref, Err: err}
	}

	if commit, err := w.repo.CommitObject(*hash); err == nil {
		return gitobj.CommitID(commit.Hash), nil
	}

	tag, err := w.repo.TagObject(*hash)
	if err != nil {
		return gitobj.CommitID{}, &ParseError{Ref: ref, Err: fmt.Errorf("object %s is not a commit or annotated tag", hash)}
	}

	commit, err := tag.Commit()
	if err != nil {
		return gitobj.CommitID{}, &ParseError{Ref: ref, Err: fmt.Errorf("tag %s does not peel to a commit: %w", hash, err)}
	}

	return gitobj.CommitID(commit.Hash), nil
}

// heapItem orders the walk frontier newest-first by committer time, using
// discovery sequence as a tie-break so a child is never reordered behind a
// sibling discovered earlier with an identical timestamp.
type heapItem struct {
	commit *object.Commit
	seq    int
}

type commitHeap []heapItem

func (h commitHeap) Len() int { return len(h) }
func (h commitHeap) Less(i, j int) bool {
	ti := h[i].commit.Committer.When
	tj := h[j].commit.Committer.When
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return h[i].seq > h[j].seq
}
func (h commitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *commitHeap) Push(x any)        { *h = append(*h, x.(heapItem)) }
func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Walk yields every commit reachable from root exactly once, newest-first by
// committer timestamp, with topological tie-breaking: a child always
// precedes its ancestors because an ancestor only enters the walk frontier
// once its child has been visited. Per-element errors (e.g. a missing parent
// object in a shallow clone) are logged and that edge is skipped; they never
// abort the walk.
func (w *CommitWalker) Walk(root gitobj.CommitID) (iter.Seq[gitobj.CommitID], error) {
	rootCommit, err := w.repo.CommitObject(plumbing.Hash(root))
	if err != nil {
		return nil, &WalkError{Err: fmt.Errorf("load root commit %s: %w", root, err)}
	}

	return func(yield func(gitobj.CommitID) bool) {
		seen := make(map[plumbing.Hash]bool)
		seq := 0

		h := &commitHeap{}
		heap.Init(h)
		heap.Push(h, heapItem{commit: rootCommit, seq: seq})
		seen[rootCommit.Hash] = true

		for h.Len() > 0 {
			item := heap.Pop(h).(heapItem)
			c := item.commit

			if !yield(gitobj.CommitID(c.Hash)) {
				return
			}

			for _, ph := range c.ParentHashes {
				if seen[ph] {
					continue
				}
				seen[ph] = true

				parent, err := w.repo.CommitObject(ph)
				if err != nil {
					log.Warn("skipping unreachable parent object", "commit", c.Hash, "parent", ph, "error", err)
					continue
				}

				seq++
				heap.Push(h, heapItem{commit: parent, seq: seq})
			}
		}
	}, nil
}
