package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/marmos91/kioskd/internal/logger"
	"github.com/marmos91/kioskd/pkg/api/handlers"
	"github.com/marmos91/kioskd/pkg/config"
)

// Server is the kioskd HTTP control server with graceful shutdown.
type Server struct {
	server       *http.Server
	cfg          config.ServerConfig
	shutdownOnce sync.Once
}

// NewServer creates the control server. Call Start to begin serving.
func NewServer(cfg config.Config, ctrl handlers.SessionController) *Server {
	router := NewRouter(ctrl, cfg.ClientLog, cfg.Metrics.Enabled)

	return &Server{
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		cfg: cfg.Server,
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("control server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("control server shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("control server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call multiple times.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("control server shutdown error: %w", err)
		} else {
			logger.Info("control server stopped gracefully")
		}
	})
	return shutdownErr
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }
