package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Server runs the diagnostics router in the background.
type Server struct {
	e    *echo.Echo
	addr string
	log  zerolog.Logger
	done chan error
}

func NewServer(addr string, e *echo.Echo, log zerolog.Logger) *Server {
	return &Server{e: e, addr: addr, log: log, done: make(chan error, 1)}
}

// Start begins serving and returns immediately.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("diagnostics listening")
		err := s.e.Start(s.addr)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			s.log.Error().Err(err).Msg("diagnostics server stopped")
		}
		s.done <- err
	}()
}

// Shutdown stops the server and waits for Start's goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		return err
	}
	select {
	case err := <-s.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
