package matcher

import (
	"sort"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/charclass"
)

// lcssMinWords is the minimum number of distinct pattern words that must
// appear, in order, for a subsequence match.
const lcssMinWords = 3

// appendLCSS runs the relaxed subsequence pass over the per-pattern
// observation map collected during the walk. A pattern qualifies when its
// observed positions cover every must-have position and the longest
// strictly increasing run of observed offsets (taken in word order) has
// at least lcssMinWords elements. Patterns already reported by the exact
// pass are skipped.
func appendLCSS(
	cat *catalog.Catalog,
	input string,
	flags Flags,
	results []MatchResult,
	seen map[uint32]map[uint8]int,
	found map[uint32]struct{},
) []MatchResult {
	pids := make([]uint32, 0, len(seen))
	for pid := range seen {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	for _, pid := range pids {
		if _, dup := found[pid]; dup {
			continue
		}
		byPos := seen[pid]

		covered := true
		for _, mp := range cat.MustHave(pid) {
			if _, ok := byPos[mp]; !ok {
				covered = false
				break
			}
		}
		if !covered {
			continue
		}

		// offsets ordered by word position; the LIS length is the longest
		// in-order run of words actually present in the input
		wc := cat.WordCount(pid)
		offsets := make([]int, 0, len(byPos))
		posAt := make([]uint8, 0, len(byPos))
		for p := uint8(1); p <= wc; p++ {
			if off, ok := byPos[p]; ok {
				offsets = append(offsets, off)
				posAt = append(posAt, p)
			}
		}

		lis := longestIncreasing(offsets)
		if len(lis) < lcssMinWords {
			continue
		}

		m := MatchResult{
			PatternID: pid,
			Xref:      cat.Xref(pid),
			Pattern:   cat.DisplayText(pid),
			LCSS:      true,
		}
		if flags.Matching {
			first := lis[0]
			last := lis[len(lis)-1]
			start := first
			for i, off := range offsets {
				if off == first {
					// offset marks the word's final byte; back up to its start
					lens := cat.WordLengths(pid)
					start = first - int(lens[posAt[i]-1]) + 1
					break
				}
			}
			if start < 0 {
				start = 0
			}
			end := charclass.NextBoundary(input, last+1)
			m.Start, m.End = start, end
			m.Matched = input[start:end]
		}
		results = append(results, m)
	}
	return results
}

// longestIncreasing returns the values of one longest strictly increasing
// subsequence of input, using patience sorting with predecessor links.
func longestIncreasing(input []int) []int {
	if len(input) == 0 {
		return nil
	}

	n := len(input)
	tails := make([]int, n+1) // tails[l] = index of smallest tail of an increasing run of length l
	prev := make([]int, n)
	best := 0

	for i := 0; i < n; i++ {
		lo, hi := 1, best+1
		for lo < hi {
			mid := lo + (hi-lo)/2
			if input[tails[mid]] < input[i] {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 1 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		tails[lo] = i
		if lo > best {
			best = lo
		}
	}

	out := make([]int, best)
	k := tails[best]
	for i := best - 1; i >= 0; i-- {
		out[i] = input[k]
		k = prev[k]
	}
	return out
}
