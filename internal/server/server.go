// Package server exposes dispatch over HTTP: JSON fan-out, SSE streaming of
// a single agent and a WebSocket carrying live target updates.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/leofalp/polyprompt/core/config"
	"github.com/leofalp/polyprompt/core/cost"
	"github.com/leofalp/polyprompt/core/dispatch"
	"github.com/leofalp/polyprompt/core/store"
	"github.com/leofalp/polyprompt/providers/observability"
	"github.com/leofalp/polyprompt/providers/registry"
)

const (
	maxBodyBytes        = 1 << 20 // 1 MiB
	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 30 * time.Second
	idleTimeout         = 120 * time.Second
)

// Options wires the server to the dispatch stack. Coordinator, Registry and
// Agents are required; History and Pricing are optional.
type Options struct {
	Addr        string
	Coordinator *dispatch.Coordinator
	Registry    *registry.Registry
	Agents      config.Store
	Pricing     *cost.Engine
	History     *store.Store
	Observer    observability.Provider
}

// AgentLister is implemented by agent stores that can enumerate their agents.
type AgentLister interface {
	Agents() []config.AgentConfig
}

type Server struct {
	opts Options
	app  *echo.Echo
}

// New constructs an HTTP server wired with routes and middleware.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Coordinator == nil:
		return nil, errors.New("server: coordinator must not be nil")
	case opts.Registry == nil:
		return nil, errors.New("server: registry must not be nil")
	case opts.Agents == nil:
		return nil, errors.New("server: agent store must not be nil")
	}
	if opts.Observer == nil {
		opts.Observer = observability.Nop()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	observer := opts.Observer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []observability.Attribute{
				observability.String(observability.AttrHTTPMethod, v.Method),
				observability.String(observability.AttrHTTPURL, v.URI),
				observability.Int(observability.AttrHTTPStatusCode, v.Status),
				observability.Duration(observability.AttrDuration, v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, observability.Error(v.Error))
			}
			observer.Info(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))

	srv := &Server{opts: opts, app: e}
	srv.registerRoutes()
	return srv, nil
}

// Handler returns the routed handler, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.opts.Observer.Info(ctx, "starting server", observability.String("addr", s.opts.Addr))

	// No WriteTimeout: dispatches and streams last as long as the providers.
	httpServer := &http.Server{
		Addr:        s.opts.Addr,
		Handler:     s.app,
		ReadTimeout: readTimeout,
		IdleTimeout: idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.opts.Observer.Info(ctx, "server shutdown complete")
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) registerRoutes() {
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/v1/providers", s.handleProviders)
	s.app.GET("/v1/pricing", s.handlePricing)
	s.app.GET("/v1/agents", s.handleAgents)
	s.app.POST("/v1/dispatch", s.handleDispatch)
	s.app.GET("/v1/dispatch/ws", s.handleDispatchSocket)
	s.app.POST("/v1/agents/:id/stream", s.handleAgentStream)
	s.app.GET("/v1/dispatches", s.handleDispatches)
	s.app.GET("/v1/dispatches/:id", s.handleDispatchHistory)
}
