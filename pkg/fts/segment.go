// Package fts implements the full-text tokenization of spec.md §4.2: the
// same transform is applied to indexed content and to search queries so
// MATCH behaves consistently. Tokenization is language-agnostic.
package fts

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/words"
)

// Segment splits s into UAX#29 word segments and returns the word-like ones,
// lowercased and joined by single spaces. The input's script or language is
// not detected: every input goes through the same segmenter. Empty or
// whitespace-only input yields "".
func Segment(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var b strings.Builder
	seg := words.NewSegmenter([]byte(s))
	first := true
	for seg.Next() {
		word := seg.Value()
		if !isWordLike(word) {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(strings.ToLower(string(word)))
		first = false
	}
	return b.String()
}

// isWordLike reports whether a UAX#29 word segment is a "word" rather than
// punctuation or whitespace: it must contain at least one letter, digit, or
// ideographic rune.
func isWordLike(word []byte) bool {
	for _, r := range string(word) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

