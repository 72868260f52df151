package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notgnoshi/herostratus/internal/textutil"
)

func TestIsEqualIgnoringWhitespace(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"both empty", "", "", true},
		{"identical", "a", "a", true},
		{"different letters", "a", "b", false},
		{"whitespace padding", "   a\t", " a\n\t \r\n ", true},
		{"invalid byte matches", "a\xff b", "a\xffb", true},
		{"invalid byte differs", "a\xff b", "ab", false},
		{"invalid byte vs extra content", "a\xff b", "ac\xff b", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := textutil.IsEqualIgnoringWhitespace([]byte(tc.a), []byte(tc.b))
			assert.Equal(t, tc.want, got)
		})
	}
}
