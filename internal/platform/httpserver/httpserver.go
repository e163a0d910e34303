package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"shortener.local/internal/platform/config"
)

// New builds the public server from cfg.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return newServer(cfg, cfg.Addr, handler)
}

// NewAdmin builds the loopback/internal server (metrics, readiness, pprof).
func NewAdmin(cfg config.Config, handler http.Handler) *http.Server {
	return newServer(cfg, cfg.AdminAddr, handler)
}

func newServer(cfg config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// RunWithGracefulShutdownContext serves until stopCtx is done, then drains
// in-flight requests for at most shutdownTimeout.
func RunWithGracefulShutdownContext(srv *http.Server, shutdownTimeout time.Duration, stopCtx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		slog.Info("http server stopped", "addr", srv.Addr)
	}
	return nil
}
