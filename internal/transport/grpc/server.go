// Package grpcx - служебный gRPC-сервер: health и reflection.
package grpcx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

type Config struct {
	Addr            string
	UnaryTimeout    time.Duration
	ShutdownTimeout time.Duration
	Reflection      bool
}

type Server struct {
	cfg    Config
	grpc   *grpc.Server
	health *health.Server
}

func NewServer(cfg Config) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(cfg.UnaryTimeout)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	if cfg.Reflection {
		reflection.Register(gs)
	}

	return &Server{cfg: cfg, grpc: gs, health: hs}
}

// SetServing переключает общий статус ("") и статус отдельного сервиса
func (s *Server) SetServing(service string, serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(service, st)
}

// Serve обслуживает lis до завершения ctx
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)

	s.SetServing("", true)
	go func() {
		if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.shutdown()
		return nil
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}

// Run слушает cfg.Addr и блокирует до завершения ctx.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	slog.Info("grpc listen", "addr", lis.Addr().String())

	return s.Serve(ctx, lis)
}

func (s *Server) shutdown() {
	// Shutdown переводит все статусы в NOT_SERVING
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.ShutdownTimeout):
		slog.Warn("grpc graceful stop timed out, forcing")
		s.grpc.Stop()
	}
}
