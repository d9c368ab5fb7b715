// Package service implements the match service over a sealed catalog.
package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/attunepartners/prefix-match/internal/core/catalog"
	"github.com/attunepartners/prefix-match/internal/core/matcher"
	"github.com/attunepartners/prefix-match/internal/platform/metrics"
	"github.com/attunepartners/prefix-match/internal/services/match/domain"
)

// Config for the match service.
type Config struct {
	Flags   matcher.Flags
	Workers int // batch fan-out bound; <= 0 disables the limit
}

// Service answers queries against one sealed catalog. Match contexts are
// pooled so the hot path performs no per-query allocation beyond results.
type Service struct {
	cat  *catalog.Catalog
	cfg  Config
	pool sync.Pool

	cache    domain.CachePort   // optional
	recorder domain.RecorderPort // optional
	metrics  *metrics.Metrics    // optional
}

// Option customizes the service.
type Option func(*Service)

// WithCache attaches a response cache.
func WithCache(c domain.CachePort) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder attaches an analytics recorder.
func WithRecorder(r domain.RecorderPort) Option {
	return func(s *Service) { s.recorder = r }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the service. The catalog must already be sealed.
func New(cat *catalog.Catalog, cfg Config, opts ...Option) *Service {
	s := &Service{cat: cat, cfg: cfg}
	s.pool.New = func() any { return matcher.NewContext(cat) }
	for _, o := range opts {
		o(s)
	}
	if s.metrics != nil {
		st := cat.Stats()
		s.metrics.PatternsLoaded.Set(float64(st.Patterns))
		s.metrics.TrieBlocks.Set(float64(st.Blocks))
	}
	return s
}

// Match implements domain.MatcherPort.
func (s *Service) Match(ctx context.Context, query string) []domain.MatchOutput {
	if s.cache != nil {
		if out, ok := s.cache.Get(ctx, query); ok {
			if s.metrics != nil {
				s.metrics.CacheHitsTotal.Inc()
				s.observe(out, 0, true)
			}
			return out
		}
		if s.metrics != nil {
			s.metrics.CacheMissTotal.Inc()
		}
	}

	start := time.Now()
	out := s.matchOne(query)
	if s.metrics != nil {
		s.observe(out, time.Since(start), false)
	}

	if s.cache != nil {
		s.cache.Set(ctx, query, out)
	}
	if s.recorder != nil && len(out) > 0 {
		s.recorder.Record(query, out)
	}
	return out
}

// MatchBatch implements domain.MatcherPort.
func (s *Service) MatchBatch(ctx context.Context, queries []string) []domain.QueryResult {
	results := make([]domain.QueryResult, len(queries))

	var g errgroup.Group
	if s.cfg.Workers > 0 {
		g.SetLimit(s.cfg.Workers)
	}
	for i, q := range queries {
		g.Go(func() error {
			results[i] = domain.QueryResult{Index: i, Matches: s.Match(ctx, q)}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

// Stats implements domain.MatcherPort.
func (s *Service) Stats() catalog.Stats { return s.cat.Stats() }

func (s *Service) matchOne(query string) []domain.MatchOutput {
	mctx := s.pool.Get().(*matcher.Context)
	ms := matcher.Match(s.cat, query, s.cfg.Flags, mctx)
	s.pool.Put(mctx)

	if len(ms) == 0 {
		return nil
	}
	out := make([]domain.MatchOutput, len(ms))
	for i, m := range ms {
		out[i] = domain.FromMatch(m)
	}
	return out
}

func (s *Service) observe(out []domain.MatchOutput, elapsed time.Duration, cached bool) {
	result := "miss"
	if len(out) > 0 {
		result = "hit"
	}
	s.metrics.QueriesTotal.WithLabelValues(result).Inc()
	s.metrics.MatchesPerQuery.Observe(float64(len(out)))
	label := "bypass"
	if cached {
		label = "hit"
	}
	if !cached {
		s.metrics.MatchLatency.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}
