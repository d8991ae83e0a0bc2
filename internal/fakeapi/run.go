package fakeapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// ListenAndServe serves s on addr until ctx is canceled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	s.cfg.Log.Info().Str("addr", addr).Str("base", s.base).Msg("fake CINCO API starting")
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.cfg.Log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			s.cfg.Log.Error().Stack().Err(err).Msg("Server forced to shutdown")
			return err
		}
		s.cfg.Log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		s.cfg.Log.Error().Stack().Err(err).Msg("HTTP server failed")
		return err
	}
}
