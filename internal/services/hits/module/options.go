package module

import (
	"time"

	"github.com/attunepartners/prefix-match/internal/platform/config"
)

// Options holds configuration for the hits sink.
type Options struct {
	DBURL         string
	Table         string
	BufferSize    int
	FlushSize     int
	FlushInterval time.Duration
}

// FromConfig extracts Options from the CORE_HITS_* namespace.
func FromConfig(cfg config.Conf) Options {
	hc := cfg.Prefix("CORE_HITS_")
	return Options{
		DBURL:         hc.MayString("DBURL", ""),
		Table:         hc.MayString("TABLE", "match_hits"),
		BufferSize:    hc.MayInt("BUFFER", 8192),
		FlushSize:     hc.MayInt("FLUSH_SIZE", 256),
		FlushInterval: hc.MayDuration("FLUSH_INTERVAL", 2*time.Second),
	}
}
