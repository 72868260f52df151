// Package textutil provides small byte-oriented text helpers shared by the
// rules that need to reason about raw, possibly-non-UTF-8 commit content.
// Ported from herostratus's utils/utf8_whitespace.rs into Go's byte/rune
// idiom.
package textutil

import (
	"unicode"
	"unicode/utf8"
)

// unit is either a decoded rune or a single invalid byte, mirroring the
// original's CharOrByte.
type unit struct {
	r       rune
	isByte  bool
	b       byte
}

// nextNonWhitespace scans b starting at i, skipping ASCII and unicode
// whitespace, and returns the next significant unit plus the index just
// past it. ok is false once b is exhausted.
func nextNonWhitespace(b []byte, i int) (u unit, next int, ok bool) {
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			bv := b[i]
			if isASCIIWhitespace(bv) {
				i++
				continue
			}
			return unit{isByte: true, b: bv}, i + 1, true
		}

		if unicode.IsSpace(r) {
			i += size
			continue
		}

		return unit{r: r}, i + size, true
	}
	return unit{}, i, false
}

func isASCIIWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func (u unit) equal(o unit) bool {
	if u.isByte != o.isByte {
		return false
	}
	if u.isByte {
		return u.b == o.b
	}
	return u.r == o.r
}

// IsEqualIgnoringWhitespace does a two-finger comparison of a and b,
// skipping over all ASCII and unicode whitespace on both sides, treating
// invalid UTF-8 bytes as individual units. Byte slices that differ only in
// the amount or kind of whitespace between otherwise-identical content
// compare equal.
func IsEqualIgnoringWhitespace(a, b []byte) bool {
	ai, bi := 0, 0
	for {
		au, nai, aok := nextNonWhitespace(a, ai)
		bu, nbi, bok := nextNonWhitespace(b, bi)
		ai, bi = nai, nbi

		switch {
		case !aok && !bok:
			return true
		case aok && bok && au.equal(bu):
			continue
		default:
			return false
		}
	}
}
