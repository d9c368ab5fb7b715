package wire

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/attunepartners/prefix-match/internal/platform/logger"
	"github.com/attunepartners/prefix-match/internal/services/match/domain"

	perr "github.com/attunepartners/prefix-match/internal/platform/errors"
)

// Config for the stream server. Exactly one of Addr or SocketPath must
// be set.
type Config struct {
	Addr       string // TCP listen address, e.g. ":9000"
	SocketPath string // unix socket path
	MaxConns   int    // concurrent connection cap; default 50
	ReadIdle   time.Duration // per-read idle timeout; default 5m
}

// Server accepts stream connections and answers match queries. The
// matcher port owns worker pooling; the server only frames the protocol.
type Server struct {
	svc domain.MatcherPort
	cfg Config
	log *logger.Logger

	mu   sync.Mutex
	addr net.Addr
	wg   sync.WaitGroup
}

// NewServer wires a matcher port behind the stream protocol.
func NewServer(svc domain.MatcherPort, cfg Config) *Server {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 50
	}
	if cfg.ReadIdle <= 0 {
		cfg.ReadIdle = 5 * time.Minute
	}
	return &Server{svc: svc, cfg: cfg, log: logger.Named("wire")}
}

// ListenAndServe binds the configured endpoint and serves until ctx is
// cancelled. The socket file, if any, is removed on shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var ln net.Listener
	var err error
	switch {
	case s.cfg.SocketPath != "":
		// a stale socket from a previous run blocks the bind
		_ = os.Remove(s.cfg.SocketPath)
		ln, err = net.Listen("unix", s.cfg.SocketPath)
	case s.cfg.Addr != "":
		ln, err = net.Listen("tcp", s.cfg.Addr)
	default:
		return perr.InvalidArgf("wire server needs an address or a socket path")
	}
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "wire listen")
	}
	defer func() {
		if s.cfg.SocketPath != "" {
			_ = os.Remove(s.cfg.SocketPath)
		}
	}()

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("wire listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	sem := make(chan struct{}, s.cfg.MaxConns)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		select {
		case sem <- struct{}{}:
		default:
			s.log.Warn().Msg("connection limit reached, rejecting")
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-sem }()
			s.handleConn(ctx, conn)
		}()
	}

	s.wg.Wait()
	return nil
}

// Addr returns the bound listener address, or nil before ListenAndServe
// has bound its endpoint.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() { _ = conn.Close() }()

	connID := uuid.NewString()
	log := s.log.With().Str("conn_id", connID).Logger()
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection open")

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		if ctx.Err() != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadIdle))

		var req Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Debug().Msg("idle timeout")
				return
			}
			// framing is lost after a syntax error: answer and hang up
			_ = enc.Encode(ErrorResponse(req.ID, "invalid JSON: "+err.Error()))
			return
		}

		queries, batch := req.normalized()
		if len(queries) == 0 {
			if err := enc.Encode(ErrorResponse(req.ID, "No queries provided")); err != nil {
				return
			}
			continue
		}

		var resp Response
		if batch {
			resp = BatchResponse(req.ID, s.svc.MatchBatch(ctx, queries))
		} else {
			resp = SingleResponse(req.ID, s.svc.Match(ctx, queries[0]))
		}
		if err := enc.Encode(resp); err != nil {
			log.Debug().Err(err).Msg("write failed")
			return
		}
	}
}
