package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/no-panic/callserver/internal/config"
	"github.com/no-panic/callserver/internal/signaling"
)

const shutdownTimeout = 10 * time.Second

// Server runs the hub loop and the HTTP listener together.
type Server struct {
	hub        *signaling.Hub
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a server for cfg around hub.
func New(cfg *config.Config, hub *signaling.Hub, logger *slog.Logger) *Server {
	return &Server{
		hub: hub,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(hub, cfg, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts the listener down and stops
// the hub, which closes every open connection.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("signaling server starting", slog.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("signaling server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked WebSocket connections are not tracked by Shutdown; stopping
	// the hub closes their send queues and the write pumps close the sockets.
	stopHub()
	<-s.hub.Done()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
