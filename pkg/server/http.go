// Package server provides the HTTP server lifecycle around gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	httpopts "github.com/kouzina-io/kouzina/pkg/options/http"
)

// HTTPServer runs a gin engine with graceful shutdown on SIGINT/SIGTERM.
type HTTPServer struct {
	engine *gin.Engine
	srv    *http.Server
	opts   *httpopts.Options
}

// New creates an HTTP server around a fresh gin engine.
func New(opts *httpopts.Options) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &HTTPServer{
		engine: engine,
		opts:   opts,
		srv: &http.Server{
			Addr:         opts.Addr,
			Handler:      engine,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
			IdleTimeout:  opts.IdleTimeout,
		},
	}
}

// Engine exposes the gin engine for route registration.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Run serves until the context is canceled or a termination signal
// arrives, then drains in-flight requests within the shutdown timeout.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Infow("HTTP server listening", "addr", s.opts.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Infow("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Server context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("HTTP server forced to shutdown", "error", err.Error())
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
