// Package domain defines the types and ports for the match service.
package domain

import (
	"strings"

	"github.com/attunepartners/prefix-match/internal/core/matcher"
)

// MatchOutput is one reported pattern in the wire shape shared by the
// socket protocol and the HTTP API.
type MatchOutput struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Match    string `json:"match"`
}

// QueryResult pairs a batch query index with its matches.
type QueryResult struct {
	Index   int           `json:"index"`
	Matches []MatchOutput `json:"matches"`
}

// FromMatch converts an engine match into the wire shape. The metadata
// blob is split on tabs: the first field is the pattern's id, the second
// its category; anything beyond is dropped from the wire form.
func FromMatch(m matcher.MatchResult) MatchOutput {
	out := MatchOutput{Pattern: m.Pattern, Match: m.Matched}

	xref := m.Xref
	if i := strings.IndexByte(xref, '\t'); i >= 0 {
		out.ID = xref[:i]
		rest := xref[i+1:]
		if j := strings.IndexByte(rest, '\t'); j >= 0 {
			out.Category = rest[:j]
		} else {
			out.Category = rest
		}
	} else {
		out.ID = xref
	}
	return out
}
