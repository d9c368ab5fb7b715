// Package module assembles the optional hits sink from configuration.
package module

import (
	"context"

	"github.com/attunepartners/prefix-match/internal/platform/metrics"
	"github.com/attunepartners/prefix-match/internal/platform/store/ch"
	"github.com/attunepartners/prefix-match/internal/services/hits/repo"
	"github.com/attunepartners/prefix-match/internal/services/hits/service"
)

// New opens the ClickHouse connection and starts the recorder. Returns
// (nil, nil) when no DBURL is configured: the sink is strictly optional.
func New(ctx context.Context, opts Options, m *metrics.Metrics) (*service.Recorder, error) {
	if opts.DBURL == "" {
		return nil, nil
	}

	conn, err := ch.Open(ctx, ch.Config{URL: opts.DBURL, ClientTag: "hits"})
	if err != nil {
		return nil, err
	}

	rec := service.NewRecorder(
		repo.NewCH(conn, opts.Table),
		service.Config{
			BufferSize:    opts.BufferSize,
			FlushSize:     opts.FlushSize,
			FlushInterval: opts.FlushInterval,
		},
		m,
	)
	return rec, nil
}
