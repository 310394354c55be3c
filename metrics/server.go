// Package metrics registers prometheus metrics of agewitness components and serves them over http.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server serves prometheus metrics on /metrics.
type Server struct {
	logger *zap.Logger
	srv    *http.Server
	lis    net.Listener
}

// NewServer creates metrics server listening on addr.
func NewServer(logger *zap.Logger, addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen metrics on %s: %w", s.srv.Addr, err)
	}
	s.lis = lis
	s.logger.Info("serving metrics", zap.Stringer("address", lis.Addr()))
	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}

// Stop shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
