// Package server exposes the volatility analytics over HTTP for the
// dashboard frontend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Option configures the server.
type Option func(*options)

type options struct {
	address         string
	allowOrigins    []string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// WithAddress sets the listen address.
func WithAddress(addr string) Option {
	return func(o *options) { o.address = addr }
}

// WithAllowOrigins sets the CORS allowed origins.
func WithAllowOrigins(origins []string) Option {
	return func(o *options) {
		if len(origins) > 0 {
			o.allowOrigins = origins
		}
	}
}

// WithTimeouts sets read, write and shutdown timeouts.
func WithTimeouts(read, write, shutdown time.Duration) Option {
	return func(o *options) {
		o.readTimeout = read
		o.writeTimeout = write
		o.shutdownTimeout = shutdown
	}
}

// Server wraps the Echo HTTP server.
type Server struct {
	echo   *echo.Echo
	opts   options
	logger zerolog.Logger
}

// New creates the HTTP server and registers the handler's routes.
func New(h *Handler, logger zerolog.Logger, opts ...Option) *Server {
	o := options{
		address:         ":8080",
		allowOrigins:    []string{"*"},
		readTimeout:     10 * time.Second,
		writeTimeout:    30 * time.Second,
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = o.readTimeout
	e.Server.WriteTimeout = o.writeTimeout

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: o.allowOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))
	e.Use(requestLogging(logger))

	h.RegisterRoutes(e)

	return &Server{
		echo:   e,
		opts:   o,
		logger: logger.With().Str("component", "server").Logger(),
	}
}

// Start begins serving and blocks until the server stops.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.opts.address).Msg("HTTP server starting")
	if err := s.echo.Start(s.opts.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance, used by tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func requestLogging(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("elapsed", time.Since(start)).
				Msg("request")
			return err
		}
	}
}
