package rules

import (
	"github.com/notgnoshi/herostratus/internal/gitobj"
)

const (
	defaultShortestSubjectThreshold = 10
	defaultLongestSubjectThreshold  = 72
)

func init() {
	Register("subject-line-length", func(options map[string]any) Rule {
		return newSubjectLineLength(options)
	})
}

// SubjectLineLength is an accumulator rule owning two descriptors: the
// shortest and the longest subject line seen below/above their respective
// thresholds, in walk order. It exercises the pathological case where a
// rule's descriptors may be independently enabled or disabled by the
// incremental-cache protocol.
type SubjectLineLength struct {
	Base

	shortestThreshold int
	longestThreshold  int

	haveShortest   bool
	shortestLength int
	shortestCommit gitobj.CommitID

	haveLongest   bool
	longestLength int
	longestCommit gitobj.CommitID
}

func newSubjectLineLength(options map[string]any) *SubjectLineLength {
	r := &SubjectLineLength{
		shortestThreshold: defaultShortestSubjectThreshold,
		longestThreshold:  defaultLongestSubjectThreshold,
	}
	if v, ok := intOption(options, "shortest_threshold"); ok {
		r.shortestThreshold = v
	}
	if v, ok := intOption(options, "longest_threshold"); ok {
		r.longestThreshold = v
	}

	r.Base = NewBase(
		&AchievementDescriptor{
			Enabled:     true,
			ID:          2,
			HumanID:     "shortest-subject-line",
			DisplayName: "Brevity is the soul of wit",
			Description: "The shortest subject line",
		},
		&AchievementDescriptor{
			Enabled:     true,
			ID:          3,
			HumanID:     "longest-subject-line",
			DisplayName: "50 characters was more of a suggestion anyways",
			Description: "The longest subject line",
		},
	)
	return r
}

func intOption(options map[string]any, key string) (int, bool) {
	v, ok := options[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func (r *SubjectLineLength) Process(c *gitobj.Commit) []Achievement {
	length := len(c.MessageTitle)

	if length < r.shortestThreshold && (!r.haveShortest || length < r.shortestLength) {
		r.haveShortest = true
		r.shortestLength = length
		r.shortestCommit = c.ID
	}
	if length > r.longestThreshold && (!r.haveLongest || length > r.longestLength) {
		r.haveLongest = true
		r.longestLength = length
		r.longestCommit = c.ID
	}

	return nil
}

func (r *SubjectLineLength) Finalize() []Achievement {
	descs := r.Descriptors()
	var out []Achievement

	if descs[0].Enabled && r.haveShortest {
		out = append(out, Achievement{Name: descs[0].DisplayName, Commit: r.shortestCommit})
	}
	if descs[1].Enabled && r.haveLongest {
		out = append(out, Achievement{Name: descs[1].DisplayName, Commit: r.longestCommit})
	}

	return out
}
