// Package charclass maps bytes to the trie's character classes.
//
// Class 0 is the delimiter class; 1..10 are the digits; 11..36 are the
// letters, case folded. This table is the only definition of a word
// boundary in the engine: tokenization at build time and trie routing at
// match time both consult it, so they can never disagree.
package charclass

// NumClasses is the fan-out of every trie block. Slot 0 (the delimiter
// class) is never linked; it exists to keep indexing uniform.
const NumClasses = 37

var table [256]uint8

func init() {
	for c := byte('0'); c <= '9'; c++ {
		table[c] = c - '0' + 1
	}
	for c := byte('A'); c <= 'Z'; c++ {
		table[c] = c - 'A' + 11
	}
	for c := byte('a'); c <= 'z'; c++ {
		table[c] = c - 'a' + 11
	}
	// everything else, including bytes >= 128, stays 0
}

// Of returns the character class for b.
func Of(b byte) uint8 { return table[b] }

// IsDelim reports whether b is a word delimiter.
func IsDelim(b byte) bool { return table[b] == 0 }

// NextBoundary returns the offset of the first delimiter byte at or after
// pos, or len(s) if the run of word bytes extends to the end.
func NextBoundary(s string, pos int) int {
	for pos < len(s) {
		if table[s[pos]] == 0 {
			return pos
		}
		pos++
	}
	return len(s)
}
