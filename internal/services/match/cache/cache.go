// Package cache provides an optional redis-backed response cache for
// repeated queries. RTB traffic is heavily skewed toward a small set of
// hot URLs, so even a short TTL absorbs most of the load.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/attunepartners/prefix-match/internal/platform/logger"
	"github.com/attunepartners/prefix-match/internal/services/match/domain"
)

const keyPrefix = "match:"

// Config for the redis cache.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // default 5m
}

// QueryCache implements domain.CachePort over redis. Failures degrade to
// cache misses; the matcher is always the source of truth.
type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// New dials redis and returns the cache. The connection is verified with
// a ping so misconfiguration surfaces at startup, not per query.
func New(ctx context.Context, cfg Config) (*QueryCache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &QueryCache{rdb: rdb, ttl: cfg.TTL, log: logger.Named("cache")}, nil
}

// Get implements domain.CachePort.
func (c *QueryCache) Get(ctx context.Context, query string) ([]domain.MatchOutput, bool) {
	data, err := c.rdb.Get(ctx, buildKey(query)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("cache get failed")
		}
		return nil, false
	}
	var out []domain.MatchOutput
	if err := json.Unmarshal(data, &out); err != nil {
		c.log.Warn().Err(err).Msg("cache entry corrupt")
		return nil, false
	}
	return out, true
}

// Set implements domain.CachePort. Empty results are cached too; "no
// match" answers are just as hot as hits.
func (c *QueryCache) Set(ctx context.Context, query string, matches []domain.MatchOutput) {
	if matches == nil {
		matches = []domain.MatchOutput{}
	}
	data, err := json.Marshal(matches)
	if err != nil {
		c.log.Warn().Err(err).Msg("cache marshal failed")
		return
	}
	if err := c.rdb.Set(ctx, buildKey(query), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache set failed")
	}
}

// Close releases the redis connection.
func (c *QueryCache) Close() error { return c.rdb.Close() }

func buildKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return keyPrefix + hex.EncodeToString(sum[:16])
}
