package rules

import (
	"github.com/notgnoshi/herostratus/internal/gitobj"
	"github.com/notgnoshi/herostratus/internal/textutil"
)

func init() {
	Register("whitespace-only", func(map[string]any) Rule { return newWhitespaceOnly() })
}

// WhitespaceOnly grants an achievement for a non-merge commit whose diff
// against its parent touches at least one file, and every touched file's
// content is unchanged once whitespace is ignored.
type WhitespaceOnly struct {
	Base

	foundAnyChange     bool
	foundNonWhitespace bool
}

func newWhitespaceOnly() *WhitespaceOnly {
	return &WhitespaceOnly{Base: NewBase(&AchievementDescriptor{
		Enabled:     true,
		ID:          6,
		HumanID:     "whitespace-only",
		DisplayName: "Whitespace Warrior",
		Description: "Make a whitespace-only change",
	})}
}

func (r *WhitespaceOnly) IsInterestedInDiffs() bool { return true }

func (r *WhitespaceOnly) Process(*gitobj.Commit) []Achievement { return nil }

func (r *WhitespaceOnly) Finalize() []Achievement { return nil }

func (r *WhitespaceOnly) OnDiffStart(*gitobj.Commit) {
	r.foundAnyChange = false
	r.foundNonWhitespace = false
}

func (r *WhitespaceOnly) OnDiffChange(_ *gitobj.Commit, change gitobj.TreeChange, blobs gitobj.BlobReader) Decision {
	r.foundAnyChange = true

	mod, isModification := change.(gitobj.Modification)
	if !isModification {
		// Additions, deletions, and (disabled) rewrites are never
		// whitespace-only by definition.
		r.foundNonWhitespace = true
		return Cancel
	}

	if mod.OldMode == gitobj.ModeTree || mod.NewMode == gitobj.ModeTree {
		// Structural descent marker, not a content change to inspect.
		return Continue
	}
	if mod.OldMode == gitobj.ModeSubmodule || mod.NewMode == gitobj.ModeSubmodule {
		r.foundNonWhitespace = true
		return Cancel
	}

	oldContent, errOld := blobs.ReadBlob(mod.OldID)
	newContent, errNew := blobs.ReadBlob(mod.NewID)
	if errOld != nil || errNew != nil {
		r.foundNonWhitespace = true
		return Cancel
	}

	if textutil.IsEqualIgnoringWhitespace(oldContent, newContent) {
		return Continue
	}

	r.foundNonWhitespace = true
	return Cancel
}

func (r *WhitespaceOnly) OnDiffEnd(c *gitobj.Commit) []Achievement {
	desc := r.Descriptors()[0]
	if !desc.Enabled || c.IsMerge() || !r.foundAnyChange || r.foundNonWhitespace {
		return nil
	}
	return []Achievement{{Name: desc.DisplayName, Commit: c.ID}}
}
