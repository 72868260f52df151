// Package rules defines the rule contract, the achievement descriptor
// model, and the compile-time rule registry, in the teacher's capability-set
// idiom: a mandatory Rule interface plus an optional DiffRule interface that
// the engine and diff driver type-assert for.
package rules

import (
	"fmt"
	"strconv"

	"github.com/notgnoshi/herostratus/internal/gitobj"
)

// Decision is returned by OnDiffChange to tell the diff driver whether a
// rule remains interested in further changes for this commit.
type Decision int

const (
	// Continue means the rule wants to see more changes for this commit.
	Continue Decision = iota
	// Cancel means the rule is done with this commit; the driver clears its
	// interest bit. This is not an error.
	Cancel
)

// Achievement is the emitted value: a name referencing the granting
// descriptor, and the commit it was granted for.
type Achievement struct {
	Name   string
	Commit gitobj.CommitID
}

// AchievementDescriptor is the per-rule metadata unit identifying one
// variant of achievement a rule can grant.
type AchievementDescriptor struct {
	Enabled     bool
	ID          int
	HumanID     string
	DisplayName string
	Description string
}

// PrettyID renders "H<id>-<human_id>".
func (d *AchievementDescriptor) PrettyID() string {
	return fmt.Sprintf("H%d-%s", d.ID, d.HumanID)
}

// Matches reports whether token identifies this descriptor via any of its
// four lookup forms: decimal id, "H"+id, human_id, or pretty_id.
func (d *AchievementDescriptor) Matches(token string) bool {
	return token == strconv.Itoa(d.ID) ||
		token == "H"+strconv.Itoa(d.ID) ||
		token == d.HumanID ||
		token == d.PrettyID()
}

// Rule is the mandatory capability every rule implements: it owns one or
// more descriptors, is invoked for every commit in walk order, and may
// accumulate state to emit at Finalize.
type Rule interface {
	// Descriptors returns this rule's descriptors for mutation (enabling,
	// disabling, filtering) by the catalog and engine.
	Descriptors() []*AchievementDescriptor
	// DisableByID toggles enabled=false on the matching descriptor, if any.
	DisableByID(id int)
	// EnableByID toggles enabled=true on the matching descriptor, if any.
	EnableByID(id int)
	// Process is invoked once per commit in walk order. Disabled descriptors
	// must not produce achievements.
	Process(c *gitobj.Commit) []Achievement
	// Finalize is invoked once after the last commit is processed; the only
	// legal place for accumulator-style rules to emit.
	Finalize() []Achievement
	// IsInterestedInDiffs must be stable across a run: it may be polled
	// multiple times but must always return the same value.
	IsInterestedInDiffs() bool
}

// DiffRule is the optional diff lifecycle a Rule may additionally
// implement. The diff driver only calls these methods for commits where
// IsInterestedInDiffs() returned true. blobs is threaded through
// OnDiffChange so rules that need to compare content (not just which paths
// changed) can read blobs without retaining a reference to the driver's
// own content-hash cache.
type DiffRule interface {
	Rule
	OnDiffStart(c *gitobj.Commit)
	OnDiffChange(c *gitobj.Commit, change gitobj.TreeChange, blobs gitobj.BlobReader) Decision
	OnDiffEnd(c *gitobj.Commit) []Achievement
}

// Base provides the common descriptor bookkeeping every built-in rule
// embeds; IsInterestedInDiffs defaults to false and is overridden by
// diff-interested rules via shadowing.
type Base struct {
	descriptors []*AchievementDescriptor
}

// NewBase constructs a Base managing the given descriptors.
func NewBase(descs ...*AchievementDescriptor) Base {
	return Base{descriptors: descs}
}

func (b *Base) Descriptors() []*AchievementDescriptor { return b.descriptors }

func (b *Base) DisableByID(id int) {
	for _, d := range b.descriptors {
		if d.ID == id {
			d.Enabled = false
		}
	}
}

func (b *Base) EnableByID(id int) {
	for _, d := range b.descriptors {
		if d.ID == id {
			d.Enabled = true
		}
	}
}

func (b *Base) IsInterestedInDiffs() bool { return false }

// descriptorByID returns the descriptor with the given id, or nil.
func (b *Base) descriptorByID(id int) *AchievementDescriptor {
	for _, d := range b.descriptors {
		if d.ID == id {
			return d
		}
	}
	return nil
}
