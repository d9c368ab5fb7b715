package matcher

import (
	"github.com/attunepartners/prefix-match/internal/core/catalog"
)

// Context is per-worker scratch state reused across queries. It is not
// safe for concurrent use; give each worker its own and never share one
// mid-query.
type Context struct {
	// active[p] holds pattern ids whose words 1..p have matched
	// consecutive input tokens, the last of them the current or the
	// previous token.
	active       [catalog.MaxWordPositions + 1]map[uint32]struct{}
	maxActivePos uint8

	// startOfMatch[pid] is the byte offset where pid's first word began,
	// overwritten whenever word 1 is re-observed.
	startOfMatch []int
}

// NewContext returns a context pre-sized for the catalog. Reuse it for
// any number of queries; clearing is O(touched positions), not O(31).
func NewContext(c *catalog.Catalog) *Context {
	ctx := &Context{}
	for i := 1; i < len(ctx.active); i++ {
		ctx.active[i] = make(map[uint32]struct{})
	}
	ctx.startOfMatch = make([]int, c.PatternCount()+1)
	return ctx
}

func (ctx *Context) clear() {
	for p := uint8(1); p <= ctx.maxActivePos; p++ {
		clear(ctx.active[p])
	}
	ctx.maxActivePos = 0
}

func (ctx *Context) ensure(patternCount uint32) {
	if uint32(len(ctx.startOfMatch)) <= patternCount {
		grown := make([]int, patternCount+1)
		copy(grown, ctx.startOfMatch)
		ctx.startOfMatch = grown
	}
}
