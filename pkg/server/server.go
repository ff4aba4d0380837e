// Package server exposes the invocation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/runbridge/runbridge/pkg/api"
	"github.com/runbridge/runbridge/pkg/runner"
)

// Server handles invocation requests over HTTP.
type Server struct {
	echo   *echo.Echo
	runner *runner.Runner
}

// New creates the HTTP server around the given runner.
func New(r *runner.Runner) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, runner: r}

	e.GET("/health", s.handleHealth)
	e.POST("/api/invocations", s.handleInvoke)

	return s
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		_ = s.echo.Shutdown(context.Background())
	}()

	slog.Info("Server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInvoke(c echo.Context) error {
	var req api.InvocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	// Invalid instructions are rejected here; the pipeline never sees them.
	if strings.TrimSpace(req.Instruction) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "instruction is required")
	}

	result, err := s.runner.Invoke(c.Request().Context(), req)
	if err != nil {
		slog.Error("Invocation failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "invocation failed")
	}

	return c.JSON(http.StatusOK, result)
}
