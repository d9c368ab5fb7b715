// Package repo persists hit events to ClickHouse.
package repo

import (
	"context"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/attunepartners/prefix-match/internal/services/hits/domain"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// CH writes hit events through a ClickHouse connection. The table is
// expected to be MergeTree partitioned by day; inserts are append-only.
type CH struct {
	conn  driver.Conn
	table string
}

// NewCH wraps an open connection. table defaults to match_hits.
func NewCH(conn driver.Conn, table string) *CH {
	if table == "" {
		table = "match_hits"
	}
	return &CH{conn: conn, table: table}
}

// WriteBatch implements domain.WriterPort using the native batch API.
func (r *CH) WriteBatch(ctx context.Context, xs []domain.HitEvent) error {
	if len(xs) == 0 {
		return nil
	}

	batch, err := r.conn.PrepareBatch(ctx,
		"INSERT INTO "+r.table+
			" (event_id, at, query, pattern_id, category, pattern, matched)")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "prepare hits batch")
	}

	for _, h := range xs {
		if err := batch.Append(
			uuid.New().String(),
			h.At,
			h.Query,
			h.PatternID,
			h.Category,
			h.Pattern,
			h.Matched,
		); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeDB, "append hit")
		}
	}

	if err := batch.Send(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "send hits batch")
	}
	return nil
}
