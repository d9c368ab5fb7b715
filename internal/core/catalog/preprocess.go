package catalog

import (
	"strings"
)

// Rejection reasons reported by AddRecord. Only the non-trivial ones are
// logged by ReadPatterns; comments and blank lines pass silently.
const (
	RejectComment       = "comment"
	RejectEmpty         = "empty"
	RejectException     = "exception pattern"
	RejectNonAlnum      = "non-alphanumeric"
	RejectNonConforming = "non-conforming pattern"
)

// exceptionMarker flags catalog records that carry exception lists rather
// than patterns; they are skipped wholesale.
const exceptionMarker = "_EXCEPTIONS"

// AddRecord parses one raw catalog line, runs the normalization pipeline,
// and admits the pattern on success. It reports whether the record was
// admitted and, if not, the rejection reason.
//
// Record shape: pattern words, then TAB, then an opaque metadata blob
// that is stored verbatim and echoed with every match.
func (b *Builder) AddRecord(line string) (bool, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, RejectEmpty
	}
	if trimmed[0] == '#' {
		return false, RejectComment
	}

	pattern := trimmed
	xref := ""
	if i := strings.IndexByte(trimmed, '\t'); i >= 0 {
		pattern = trimmed[:i]
		xref = trimmed[i+1:]
	}
	if strings.TrimSpace(pattern) == "" {
		return false, RejectEmpty
	}
	if strings.Contains(xref, exceptionMarker) {
		return false, RejectException
	}

	if hasInvalidChars(pattern) {
		if !b.opts.AddressMode {
			b.log.Info().Str("pattern", pattern).Msg("pattern with non alphanumeric char")
			return false, RejectNonAlnum
		}
		pattern = spaceInvalidChars(pattern)
	}

	words := b.normalizeWords(pattern, xref)
	if len(words) < 2 || len(words) > MaxWordPositions {
		return false, RejectNonConforming
	}

	// Must-have markers: a leading * or ^ flags the word's position for
	// LCSS matching; the stripped form is the real word.
	var must []uint8
	stripped := make([]string, len(words))
	for i, w := range words {
		if w[0] == '*' || w[0] == '^' {
			must = append(must, uint8(i+1))
			w = w[1:]
		}
		stripped[i] = w
	}

	b.admit(xref, stripped, must)
	return true, ""
}

// normalizeWords lowercases, splits, and filters the pattern into its
// surviving word list. Returns fewer than 2 words on failure.
func (b *Builder) normalizeWords(pattern, xref string) []string {
	lower := strings.ToLower(pattern)
	words := strings.Fields(lower)
	originalCount := len(words)

	// drop single-character words
	kept := words[:0]
	for _, w := range words {
		if len(w) > 1 {
			kept = append(kept, w)
		}
	}
	words = kept

	if b.opts.RemoveStopwords {
		kept = words[:0]
		for _, w := range words {
			// marked words carry their marker here, so a must-have word
			// never matches a stopword and is always kept
			if _, banned := b.stopwords[w]; !banned {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	// Adjacent-prefix shortening: a word that is a prefix of the next
	// word is dropped so the short form cannot fire inside the long one.
	// The last word is always kept.
	if originalCount != 1 && len(words) > 1 {
		kept = words[:0]
		for i, w := range words {
			if i == len(words)-1 || !strings.HasPrefix(markerStripped(words[i+1]), markerStripped(w)) {
				kept = append(kept, w)
			}
		}
		words = kept
	}

	if len(words) < 2 && b.log != nil {
		b.log.Info().
			Str("xref", xref).
			Str("pattern", pattern).
			Str("reduced", strings.Join(words, " ")).
			Msg("pattern reduced below two words")
	}
	return words
}

// markerStripped removes a leading must-have marker for comparisons.
func markerStripped(w string) string {
	if w != "" && (w[0] == '*' || w[0] == '^') {
		return w[1:]
	}
	return w
}

// hasInvalidChars reports whether the pattern contains bytes outside
// [A-Za-z0-9], whitespace, '*', '-', '^'.
func hasInvalidChars(s string) bool {
	for i := 0; i < len(s); i++ {
		if !validPatternByte(s[i]) {
			return true
		}
	}
	return false
}

// spaceInvalidChars replaces every invalid byte with a space; used in
// address mode where punctuation-heavy records are common.
func spaceInvalidChars(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if validPatternByte(s[i]) {
			sb.WriteByte(s[i])
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func validPatternByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == ' ', c == '\t', c == '\n', c == '\r', c == '\v', c == '\f':
		return true
	case c == '*', c == '-', c == '^':
		return true
	}
	return false
}
