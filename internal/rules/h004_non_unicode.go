package rules

import (
	"unicode/utf8"

	"github.com/notgnoshi/herostratus/internal/gitobj"
)

func init() {
	Register("non-unicode", func(map[string]any) Rule { return newNonUnicode() })
}

// NonUnicode grants an achievement for a commit whose message contains a
// byte sequence that is not valid UTF-8.
type NonUnicode struct {
	Base
}

func newNonUnicode() *NonUnicode {
	return &NonUnicode{Base: NewBase(&AchievementDescriptor{
		Enabled:     true,
		ID:          4,
		HumanID:     "non-unicode",
		DisplayName: "But ... How?!",
		Description: "Make a commit message containing a non UTF-8 byte",
	})}
}

func (r *NonUnicode) Process(c *gitobj.Commit) []Achievement {
	desc := r.Descriptors()[0]
	if !desc.Enabled {
		return nil
	}

	if utf8.Valid(c.MessageTitle) && utf8.Valid(c.MessageBody) {
		return nil
	}
	return []Achievement{{Name: desc.DisplayName, Commit: c.ID}}
}

func (r *NonUnicode) Finalize() []Achievement { return nil }
