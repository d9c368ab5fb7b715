// Command prefixmatch-api serves the HTTP match API with metrics, an
// optional redis response cache, and an optional ClickHouse hits sink.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/attunepartners/prefix-match/internal/platform/config"
	"github.com/attunepartners/prefix-match/internal/platform/logger"
	"github.com/attunepartners/prefix-match/internal/platform/metrics"

	phttp "github.com/attunepartners/prefix-match/internal/platform/net/http"
	mw "github.com/attunepartners/prefix-match/internal/platform/net/middleware"

	"github.com/attunepartners/prefix-match/internal/services/hits/module"
	"github.com/attunepartners/prefix-match/internal/services/match/cache"
	matchhttp "github.com/attunepartners/prefix-match/internal/services/match/http"
	matchmod "github.com/attunepartners/prefix-match/internal/services/match/module"
	"github.com/attunepartners/prefix-match/internal/services/match/service"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// optional collaborators
	var svcOpts []service.Option
	svcOpts = append(svcOpts, service.WithMetrics(m))

	if addr := root.Prefix("CORE_CACHE_").MayString("REDIS_ADDR", ""); addr != "" {
		qc, err := cache.New(ctx, cache.Config{
			Addr:     addr,
			Password: root.Prefix("CORE_CACHE_").MayString("REDIS_PASSWORD", ""),
			DB:       root.Prefix("CORE_CACHE_").MayInt("REDIS_DB", 0),
			TTL:      root.Prefix("CORE_CACHE_").MayDuration("TTL", 5*time.Minute),
		})
		if err != nil {
			l.Panic().Err(err).Msg("cache.New failed")
		}
		defer func() {
			if err := qc.Close(); err != nil {
				l.Error().Err(err).Msg("failed to close cache")
			}
		}()
		svcOpts = append(svcOpts, service.WithCache(qc))
	}

	recorder, err := module.New(ctx, module.FromConfig(root), m)
	if err != nil {
		l.Panic().Err(err).Msg("hits module failed")
	}
	if recorder != nil {
		defer recorder.Close()
		svcOpts = append(svcOpts, service.WithRecorder(recorder))
	}

	svc, err := matchmod.New(matchmod.FromConfig(root), svcOpts...)
	if err != nil {
		l.Panic().Err(err).Msg("match module failed")
	}

	srv := phttp.NewServer(apiCfg)
	r := srv.Router()

	r.Use(mw.RequestID())
	r.Use(mw.RealIP())
	r.Use(mw.RecoverJSON)
	r.Use(mw.AccessLogZerolog(mw.AccessLogOptions{Slow: 250 * time.Millisecond}))
	r.Use(mw.CORS(mw.CORSOptions{AllowedOrigins: []string{"*"}}))

	matchhttp.Mount(r, svc)
	r.Handle("/metrics", m.Handler())
	phttp.MountProfiler(r, "/debug", apiCfg.MayBool("PROFILER", false))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error().Err(err).Msg("shutdown failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
