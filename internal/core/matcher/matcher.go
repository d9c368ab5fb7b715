// Package matcher walks input text through a sealed catalog and reports
// every pattern whose word sequence occurs at word boundaries. The walk
// is allocation-free after context warm-up except for the result slice
// and, when enabled, the matched substrings and the LCSS bookkeeping
// maps.
package matcher

import (
	"strings"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/charclass"
)

// Flags selects per-query matching behavior.
type Flags struct {
	// Matching extracts the case-preserved substring spanning the match.
	Matching bool
	// LCSS additionally reports in-order, non-consecutive occurrences of
	// at least three pattern words (subject to must-have positions).
	LCSS bool
}

// MatchResult is one reported pattern occurrence.
type MatchResult struct {
	PatternID uint32
	Xref      string // opaque metadata blob from the catalog record
	Pattern   string // display text of the pattern
	Matched   string // input substring, set when Flags.Matching
	Start     int    // byte offsets into the trimmed input, valid
	End       int    // when Flags.Matching
	LCSS      bool   // produced by the subsequence pass
}

// Match scans input and returns all pattern occurrences in completion
// order. It never fails: malformed or empty input yields an empty list.
// The catalog is read-only; ctx carries all mutable state.
func Match(cat *catalog.Catalog, input string, flags Flags, ctx *Context) []MatchResult {
	var results []MatchResult

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return results
	}

	ctx.clear()
	ctx.ensure(cat.PatternCount())

	var lcssSeen map[uint32]map[uint8]int
	var lcssFound map[uint32]struct{}
	if flags.LCSS {
		lcssSeen = make(map[uint32]map[uint8]int)
		lcssFound = make(map[uint32]struct{})
	}

	var cur uint32 // current trie block; 0 mid-word means dead until the next delimiter
	atWordStart := true
	// pos<<32|pid of the active entries set while scanning the current
	// token; only these carry over past the next delimiter
	var freshBuf [16]uint64
	fresh := freshBuf[:0]

	for i := 0; i < len(trimmed); i++ {
		cls := charclass.Of(trimmed[i])

		if cls == 0 {
			if !atWordStart {
				// a token ended: state it did not advance is dropped, so an
				// intervening token breaks an exact match
				ctx.clear()
				for _, e := range fresh {
					ctx.active[e>>32][uint32(e)] = struct{}{}
					ctx.maxActivePos = max(ctx.maxActivePos, uint8(e>>32))
				}
				fresh = fresh[:0]
			}
			cur = 0
			atWordStart = true
			continue
		}

		if atWordStart {
			// first character of a word: no end-of-word check, no pattern
			// word has length 0
			atWordStart = false
			cur = cat.Child(0, cls)
			continue
		}

		if cur == 0 {
			continue
		}

		if pm, ok := cat.EndOfWord(cur, cls); ok {
			pm.ForEach(func(pos uint8, pids []uint32) {
				if flags.LCSS {
					for _, pid := range pids {
						byPos := lcssSeen[pid]
						if byPos == nil {
							byPos = make(map[uint8]int)
							lcssSeen[pid] = byPos
						}
						byPos[pos] = i
					}
				}

				if pos == 1 {
					act := ctx.active[1]
					if ctx.maxActivePos < 1 {
						ctx.maxActivePos = 1
					}
					for _, pid := range pids {
						act[pid] = struct{}{}
						fresh = append(fresh, 1<<32|uint64(pid))
						if flags.Matching {
							if lens := cat.WordLengths(pid); len(lens) > 0 {
								ctx.startOfMatch[pid] = i - int(lens[0]) + 1
							}
						}
					}
					return
				}

				prev := ctx.active[pos-1]
				if len(prev) == 0 {
					return
				}
				act := ctx.active[pos]
				if ctx.maxActivePos < pos {
					ctx.maxActivePos = pos
				}
				for _, pid := range pids {
					if _, live := prev[pid]; !live {
						continue
					}
					// consume the prior state: a pattern matches at most
					// once per starting position
					delete(prev, pid)

					if cat.WordCount(pid) != pos {
						act[pid] = struct{}{}
						fresh = append(fresh, uint64(pos)<<32|uint64(pid))
						continue
					}

					if flags.LCSS {
						lcssFound[pid] = struct{}{}
					}
					m := MatchResult{
						PatternID: pid,
						Xref:      cat.Xref(pid),
						Pattern:   cat.DisplayText(pid),
					}
					if flags.Matching {
						s := ctx.startOfMatch[pid]
						e := charclass.NextBoundary(trimmed, i+1)
						m.Start, m.End = s, e
						m.Matched = trimmed[s:e]
					}
					results = append(results, m)
				}
			})
		}

		cur = cat.Child(cur, cls)
	}

	if flags.LCSS && len(lcssSeen) > 0 {
		results = appendLCSS(cat, trimmed, flags, results, lcssSeen, lcssFound)
	}

	return results
}
