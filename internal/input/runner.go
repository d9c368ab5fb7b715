package input

import (
	"bufio"
	"io"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/matcher"
)

// BatchOptions controls the parallel batch run.
type BatchOptions struct {
	Workers int // <= 0 means GOMAXPROCS
	Flags   matcher.Flags
}

// BatchStats summarizes a completed run.
type BatchStats struct {
	Lines   int
	Matches int
	Elapsed time.Duration
}

// RunBatch matches every line against the catalog in parallel and writes
// results to out in input order. Each worker owns one reusable match
// context; result ordering is deterministic regardless of worker count.
//
// Output lines are tab-separated: a marker ("=" exact, "*" LCSS), the
// pattern's metadata blob, its display text, the matched substring (or
// the 1-based line number when substring extraction is off), and the
// original input line.
func RunBatch(cat *catalog.Catalog, lines []string, opts BatchOptions, out io.Writer) (BatchStats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(lines) && len(lines) > 0 {
		workers = len(lines)
	}

	start := time.Now()
	results := make([][]matcher.MatchResult, len(lines))

	var next atomic.Int64
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			ctx := matcher.NewContext(cat)
			for {
				i := next.Add(1) - 1
				if i >= int64(len(lines)) {
					return nil
				}
				results[i] = matcher.Match(cat, lines[i], opts.Flags, ctx)
			}
		})
	}
	if err := g.Wait(); err != nil {
		return BatchStats{}, err
	}

	stats := BatchStats{Lines: len(lines), Elapsed: time.Since(start)}

	bw := bufio.NewWriterSize(out, 256*1024)
	for i, ms := range results {
		for _, m := range ms {
			stats.Matches++
			marker := "="
			if m.LCSS {
				marker = "*"
			}
			bw.WriteString(marker)
			bw.WriteByte('\t')
			bw.WriteString(m.Xref)
			bw.WriteByte('\t')
			bw.WriteString(m.Pattern)
			bw.WriteByte('\t')
			if opts.Flags.Matching {
				bw.WriteString(m.Matched)
			} else {
				bw.WriteString(strconv.Itoa(i + 1))
			}
			bw.WriteByte('\t')
			bw.WriteString(lines[i])
			bw.WriteByte('\n')
		}
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
