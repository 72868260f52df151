package rules

import "github.com/notgnoshi/herostratus/internal/gitobj"

func init() {
	Register("empty-commit", func(map[string]any) Rule { return newEmptyCommit() })
}

// EmptyCommit grants an achievement for a non-merge commit whose diff
// against its parent contains no changes at all (git commit --allow-empty).
type EmptyCommit struct {
	Base

	sawAnyChange bool
}

func newEmptyCommit() *EmptyCommit {
	return &EmptyCommit{Base: NewBase(&AchievementDescriptor{
		Enabled:     true,
		ID:          5,
		HumanID:     "empty-commit",
		DisplayName: "You can always add more later",
		Description: "Create an empty commit containing no changes",
	})}
}

func (r *EmptyCommit) IsInterestedInDiffs() bool { return true }

func (r *EmptyCommit) Process(*gitobj.Commit) []Achievement { return nil }

func (r *EmptyCommit) Finalize() []Achievement { return nil }

func (r *EmptyCommit) OnDiffStart(*gitobj.Commit) {
	r.sawAnyChange = false
}

func (r *EmptyCommit) OnDiffChange(*gitobj.Commit, gitobj.TreeChange, gitobj.BlobReader) Decision {
	r.sawAnyChange = true
	return Cancel
}

func (r *EmptyCommit) OnDiffEnd(c *gitobj.Commit) []Achievement {
	desc := r.Descriptors()[0]
	if !desc.Enabled || c.IsMerge() || r.sawAnyChange {
		return nil
	}
	return []Achievement{{Name: desc.DisplayName, Commit: c.ID}}
}
