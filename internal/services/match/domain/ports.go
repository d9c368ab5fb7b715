package domain

import (
	"context"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
)

// MatcherPort is the query surface exposed to transports.
type MatcherPort interface {
	// Match runs a single query and returns its matches (possibly empty,
	// never an error: the matcher is total).
	Match(ctx context.Context, query string) []MatchOutput

	// MatchBatch fans queries out over the worker pool; results are
	// index-aligned with the input.
	MatchBatch(ctx context.Context, queries []string) []QueryResult

	// Stats reports catalog counters for the stats endpoint.
	Stats() catalog.Stats
}

// CachePort caches per-query responses. Implementations must be safe for
// concurrent use; a nil CachePort disables caching.
type CachePort interface {
	Get(ctx context.Context, query string) ([]MatchOutput, bool)
	Set(ctx context.Context, query string, matches []MatchOutput)
}

// RecorderPort receives match events for analytics. Record must never
// block the query path.
type RecorderPort interface {
	Record(query string, matches []MatchOutput)
}
