// Package catalog builds and holds the pattern store: a flat 37-way trie
// indexed by character class, an end-of-word index, and per-pattern
// metadata. The catalog is built once from a line source, sealed, and
// read-only thereafter; matching never mutates it.
package catalog

import (
	"bufio"
	"fmt"
	"io"

	"github.com/attunepartners/prefix-match/internal/core/charclass"
	"github.com/attunepartners/prefix-match/internal/platform/logger"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// MaxWordPositions bounds pattern word positions to 1..31. Patterns with
// more surviving words are rejected at admission.
const MaxWordPositions = 31

// Options controls preprocessing during the build.
type Options struct {
	RemoveStopwords bool
	// AddressMode replaces characters outside the valid pattern alphabet
	// with spaces instead of rejecting the record.
	AddressMode bool
}

// Builder accumulates patterns. It is not safe for concurrent use; build
// on one goroutine, Seal, then share the Catalog freely.
type Builder struct {
	opts Options
	log  *logger.Logger

	stopwords map[string]struct{}

	trie       []uint32
	blockCount uint32
	eop        map[eopKey]*PosMap

	patternCount uint32
	xref         []string   // pid -> metadata blob, 1-indexed
	text         []string   // pid -> display text
	wordLengths  [][]uint8  // pid -> per-word byte lengths
	wordCount    []uint8    // pid -> surviving word count
	mustHave     map[uint32][]uint8
}

// NewBuilder returns an empty builder. The logger receives per-record
// rejection reasons at info level; pass logger.Get() or a named child.
func NewBuilder(opts Options, log *logger.Logger) *Builder {
	if log == nil {
		log = logger.Named("catalog")
	}
	b := &Builder{
		opts:      opts,
		log:       log,
		stopwords: make(map[string]struct{}),
		eop:       make(map[eopKey]*PosMap),
		// pid 0 is unused so metadata slices start with one filler entry
		xref:        make([]string, 1),
		text:        make([]string, 1),
		wordLengths: make([][]uint8, 1),
		wordCount:   make([]uint8, 1),
		mustHave:    make(map[uint32][]uint8),
	}
	// block 0 is the root
	b.trie = make([]uint32, charclass.NumClasses)
	b.blockCount = 1
	return b
}

// ReadPatterns ingests a line-oriented pattern source. Per-record
// rejections are logged and never abort the read; only I/O failures
// surface as errors. Returns the number of admitted patterns.
func (b *Builder) ReadPatterns(r io.Reader, name string) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	loaded := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		admitted, reason := b.AddRecord(sc.Text())
		if admitted {
			loaded++
			continue
		}
		if reason != "" && reason != RejectComment && reason != RejectEmpty {
			b.log.Info().
				Str("source", name).
				Int("line", lineNo).
				Str("reason", reason).
				Msg("pattern not processed")
		}
	}
	if err := sc.Err(); err != nil {
		return loaded, perr.Wrapf(err, perr.ErrorCodeUnavailable, "reading patterns from %s", name)
	}

	b.log.Info().
		Str("source", name).
		Int("loaded", loaded).
		Uint32("blocks", b.blockCount).
		Msg("patterns loaded")
	return loaded, nil
}

// admit assigns the next pattern id and stores metadata plus trie words.
// words are the surviving preprocessed words, markers already stripped,
// with must-have positions listed in must.
func (b *Builder) admit(xref string, words []string, must []uint8) uint32 {
	b.patternCount++
	pid := b.patternCount

	display := ""
	lengths := make([]uint8, 0, len(words))
	for i, w := range words {
		if i > 0 {
			display += " "
		}
		display += w
		lengths = append(lengths, uint8(len(w)))
		b.insertWord(pid, w, uint8(i+1))
	}

	b.xref = append(b.xref, xref)
	b.text = append(b.text, display)
	b.wordLengths = append(b.wordLengths, lengths)
	b.wordCount = append(b.wordCount, uint8(len(words)))
	if len(must) > 0 {
		b.mustHave[pid] = must
	}
	return pid
}

// Seal freezes the builder into a read-only catalog. The builder must not
// be used afterwards.
func (b *Builder) Seal() *Catalog {
	c := &Catalog{
		trie:         b.trie,
		blockCount:   b.blockCount,
		eop:          b.eop,
		patternCount: b.patternCount,
		xref:         b.xref,
		text:         b.text,
		wordLengths:  b.wordLengths,
		wordCount:    b.wordCount,
		mustHave:     b.mustHave,
	}
	b.trie = nil
	b.eop = nil
	return c
}

// Catalog is the sealed, immutable pattern store. All methods are safe
// for concurrent use.
type Catalog struct {
	trie       []uint32
	blockCount uint32
	eop        map[eopKey]*PosMap

	patternCount uint32
	xref         []string
	text         []string
	wordLengths  [][]uint8
	wordCount    []uint8
	mustHave     map[uint32][]uint8
}

// PatternCount returns the highest admitted pattern id.
func (c *Catalog) PatternCount() uint32 { return c.patternCount }

// BlockCount returns the number of allocated trie blocks.
func (c *Catalog) BlockCount() uint32 { return c.blockCount }

// Child returns the block reached from block via class, or 0 if none.
func (c *Catalog) Child(block uint32, class uint8) uint32 {
	return c.trie[block*charclass.NumClasses+uint32(class)]
}

// EndOfWord returns the end-of-word entry at (block, class), if any.
func (c *Catalog) EndOfWord(block uint32, class uint8) (*PosMap, bool) {
	pm, ok := c.eop[eopKey{block: block, class: class}]
	return pm, ok
}

// Xref returns the opaque metadata blob stored for pid.
func (c *Catalog) Xref(pid uint32) string { return c.xref[pid] }

// DisplayText returns the space-joined preprocessed words for pid.
func (c *Catalog) DisplayText(pid uint32) string { return c.text[pid] }

// WordCount returns the number of words in pid.
func (c *Catalog) WordCount(pid uint32) uint8 { return c.wordCount[pid] }

// WordLengths returns the per-word byte lengths for pid. Callers must not
// modify the returned slice.
func (c *Catalog) WordLengths(pid uint32) []uint8 { return c.wordLengths[pid] }

// MustHave returns the must-have word positions for pid, or nil.
func (c *Catalog) MustHave(pid uint32) []uint8 { return c.mustHave[pid] }

// MemoryUsage estimates the resident size of the catalog in bytes.
func (c *Catalog) MemoryUsage() int {
	total := len(c.trie) * 4
	for _, pm := range c.eop {
		total += 16
		for p := uint8(1); p <= pm.maxPos; p++ {
			total += cap(pm.byPos[p]) * 4
		}
	}
	for pid := uint32(1); pid <= c.patternCount; pid++ {
		total += len(c.xref[pid]) + len(c.text[pid]) + cap(c.wordLengths[pid]) + 48
	}
	return total
}

// Stats is a loggable summary of the sealed catalog.
type Stats struct {
	Patterns    uint32 `json:"patterns"`
	Blocks      uint32 `json:"blocks"`
	MemoryBytes int    `json:"memory_bytes"`
}

// Stats returns catalog counters.
func (c *Catalog) Stats() Stats {
	return Stats{Patterns: c.patternCount, Blocks: c.blockCount, MemoryBytes: c.MemoryUsage()}
}

// String implements fmt.Stringer for log lines.
func (s Stats) String() string {
	return fmt.Sprintf("patterns=%d blocks=%d mem=%dKB", s.Patterns, s.Blocks, s.MemoryBytes/1024)
}
