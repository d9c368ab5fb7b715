package catalog

import (
	"io"
	"strings"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// protectedWords always survive stopword loading: they are common English
// stopwords that are nonetheless discriminating in category patterns.
var protectedWords = map[string]struct{}{
	"system":      {},
	"second":      {},
	"little":      {},
	"course":      {},
	"world":       {},
	"value":       {},
	"right":       {},
	"needs":       {},
	"information": {},
	"invention":   {},
}

// ReadStopwords loads a comma-separated stopword list. Entries are
// trimmed and lowercased; protected words are dropped from the set so
// they can never be filtered out of a pattern. Returns the number of
// stopwords loaded.
func (b *Builder) ReadStopwords(r io.Reader) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reading stopwords")
	}

	n := 0
	for _, entry := range strings.Split(string(raw), ",") {
		w := strings.ToLower(strings.TrimSpace(entry))
		if w == "" {
			continue
		}
		if _, keep := protectedWords[w]; keep {
			continue
		}
		if _, dup := b.stopwords[w]; !dup {
			b.stopwords[w] = struct{}{}
			n++
		}
	}

	b.log.Info().Int("stopwords", n).Msg("stopwords loaded")
	return n, nil
}

// AddStopwords merges an in-memory stopword collection, applying the same
// protected-word override as ReadStopwords.
func (b *Builder) AddStopwords(words []string) {
	for _, entry := range words {
		w := strings.ToLower(strings.TrimSpace(entry))
		if w == "" {
			continue
		}
		if _, keep := protectedWords[w]; keep {
			continue
		}
		b.stopwords[w] = struct{}{}
	}
}
