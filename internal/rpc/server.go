// Package rpc serves HTTP and gRPC from a single listener. cmux routes
// HTTP/2 connections carrying application/grpc to the gRPC server and
// everything else to the HTTP handler.
package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nyashahama/scas-screening-backend/internal/auth"
	"github.com/soheilhy/cmux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// DefaultHealthInterval is how often the database is pinged to refresh the
// gRPC health status.
const DefaultHealthInterval = 15 * time.Second

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config tunes the listener-level servers.
type Config struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HealthInterval time.Duration
}

// Server owns the HTTP server, the gRPC server and the health service that
// share one listener.
type Server struct {
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
	db     Pinger
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	lis     net.Listener
	closing atomic.Bool
}

// NewServer registers the health and screening services. db may be nil, in
// which case health reports SERVING unconditionally.
func NewServer(handler http.Handler, previewer Previewer, issuer *auth.Issuer, db Pinger, cfg Config, logger *slog.Logger) *Server {
	if cfg.HealthInterval <= 0 {
		cfg.HealthInterval = DefaultHealthInterval
	}

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(logger),
		authInterceptor(issuer),
	))
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(ScreeningService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	RegisterScreeningServer(gs, &screeningServer{previewer: previewer})

	return &Server{
		http: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		grpc:   gs,
		health: hs,
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// Serve accepts connections on lis until Shutdown is called or a server
// fails. It returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.mu.Lock()
	s.lis = lis
	s.mu.Unlock()

	m := cmux.New(lis)
	grpcL := m.MatchWithWriters(cmux.HTTP2MatchHeaderFieldSendSettings("content-type", "application/grpc"))
	httpL := m.Match(cmux.Any())

	s.checkHealth(ctx)
	go s.watchHealth(ctx)

	errc := make(chan error, 3)
	go func() { errc <- s.grpc.Serve(grpcL) }()
	go func() { errc <- s.http.Serve(httpL) }()
	go func() { errc <- m.Serve() }()

	s.logger.Info("server listening", "addr", lis.Addr().String())

	// The first non-benign error wins. The remaining goroutines exit when
	// Shutdown closes the root listener; errors after that are expected.
	for range 3 {
		if err := <-errc; !isClosedErr(err) && !s.closing.Load() {
			return err
		}
	}
	return nil
}

// Shutdown drains HTTP requests and gRPC calls, then closes the listener.
// gRPC is stopped hard if it has not drained by the deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	s.health.Shutdown()

	httpErr := s.http.Shutdown(ctx)

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.grpc.Stop()
	}

	s.mu.Lock()
	lis := s.lis
	s.mu.Unlock()
	if lis != nil {
		if err := lis.Close(); err != nil && !isClosedErr(err) {
			return errors.Join(httpErr, err)
		}
	}
	return httpErr
}

// watchHealth keeps the health status in step with the database until ctx
// is cancelled.
func (s *Server) watchHealth(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HealthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

func (s *Server) checkHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := s.db.PingContext(pingCtx)
		cancel()
		if err != nil {
			s.logger.Warn("rpc: database unreachable", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ScreeningService, status)
}

func isClosedErr(err error) bool {
	return err == nil ||
		errors.Is(err, http.ErrServerClosed) ||
		errors.Is(err, grpc.ErrServerStopped) ||
		errors.Is(err, cmux.ErrListenerClosed) ||
		errors.Is(err, net.ErrClosed)
}
