package rules

import (
	"strings"

	"github.com/notgnoshi/herostratus/internal/gitobj"
)

func init() {
	Register("fixup", func(map[string]any) Rule { return newFixup() })
}

// fixupPrefixes are checked against the commit subject with strings.HasPrefix.
// We accept false negatives (e.g. lowercase "wip" without a colon) to avoid
// false positives on real words.
var fixupPrefixes = []string{
	"fixup!", "squash!", "amend!",
	"WIP", "TODO", "FIXME", "DROPME",
	"wip:", "todo", "fixme", "dropme",
}

// Fixup grants an achievement for a commit whose subject line starts with a
// fixup/squash/amend marker, or one of a handful of ad-hoc WIP-style
// prefixes.
type Fixup struct {
	Base
}

func newFixup() *Fixup {
	return &Fixup{Base: NewBase(&AchievementDescriptor{
		Enabled:     true,
		ID:          1,
		HumanID:     "fixup",
		DisplayName: "I meant to fix that up later, I swear!",
		Description: "Prefix a commit message with a !fixup marker",
	})}
}

func (f *Fixup) Process(c *gitobj.Commit) []Achievement {
	desc := f.Descriptors()[0]
	if !desc.Enabled {
		return nil
	}

	subject := string(c.MessageTitle)
	for _, prefix := range fixupPrefixes {
		if strings.HasPrefix(subject, prefix) {
			return []Achievement{{Name: desc.DisplayName, Commit: c.ID}}
		}
	}
	return nil
}

func (f *Fixup) Finalize() []Achievement { return nil }
