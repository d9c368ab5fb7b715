// Package service implements the asynchronous hit recorder.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/attunepartners/prefix-match/internal/platform/logger"
	"github.com/attunepartners/prefix-match/internal/platform/metrics"
	hitsdom "github.com/attunepartners/prefix-match/internal/services/hits/domain"
	matchdom "github.com/attunepartners/prefix-match/internal/services/match/domain"
)

// Config for the recorder.
type Config struct {
	BufferSize    int           // default 8192
	FlushSize     int           // default 256
	FlushInterval time.Duration // default 2s
}

// Recorder implements the match service's RecorderPort: it buffers hit
// events on a channel and flushes them to the writer in the background.
// When the buffer is full events are dropped, never blocking a query.
type Recorder struct {
	writer  hitsdom.WriterPort
	cfg     Config
	log     *logger.Logger
	metrics *metrics.Metrics // optional

	events chan hitsdom.HitEvent
	done   chan struct{}
	wg     sync.WaitGroup

	// test seam for event timestamps
	now func() time.Time
}

// NewRecorder starts the background flusher.
func NewRecorder(writer hitsdom.WriterPort, cfg Config, m *metrics.Metrics) *Recorder {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 8192
	}
	if cfg.FlushSize <= 0 {
		cfg.FlushSize = 256
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	r := &Recorder{
		writer:  writer,
		cfg:     cfg,
		log:     logger.Named("hits"),
		metrics: m,
		events:  make(chan hitsdom.HitEvent, cfg.BufferSize),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record implements matchdom.RecorderPort. It never blocks.
func (r *Recorder) Record(query string, matches []matchdom.MatchOutput) {
	at := r.now()
	for _, m := range matches {
		ev := hitsdom.HitEvent{
			At:        at,
			Query:     query,
			PatternID: m.ID,
			Category:  m.Category,
			Pattern:   m.Pattern,
			Matched:   m.Match,
		}
		select {
		case r.events <- ev:
		default:
			if r.metrics != nil {
				r.metrics.HitsDropped.Inc()
			}
			return // buffer full; drop the remainder of this query too
		}
	}
}

// Close flushes buffered events and stops the background worker.
func (r *Recorder) Close() {
	close(r.done)
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	buf := make([]hitsdom.HitEvent, 0, r.cfg.FlushSize)
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(buf) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := r.writer.WriteBatch(ctx, buf); err != nil {
			r.log.Warn().Err(err).Int("events", len(buf)).Msg("hits flush failed")
		}
		cancel()
		buf = buf[:0]
	}

	for {
		select {
		case ev := <-r.events:
			buf = append(buf, ev)
			if len(buf) >= r.cfg.FlushSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-r.done:
			// drain whatever is left
			for {
				select {
				case ev := <-r.events:
					buf = append(buf, ev)
					if len(buf) >= r.cfg.FlushSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

var _ matchdom.RecorderPort = (*Recorder)(nil)
