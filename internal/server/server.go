// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dshills/docsearch/internal/metrics"
	"github.com/dshills/docsearch/pkg/types"
)

// SearchService answers ranked queries
type SearchService interface {
	Search(ctx context.Context, query string, k int) (*types.SearchResponse, error)
}

// Config contains listener and CORS settings
type Config struct {
	Address         string
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP query service
type Server struct {
	echo    *echo.Echo
	search  SearchService
	metrics *metrics.Metrics
	logger  *slog.Logger
	config  Config
}

// New builds the router. A nil metrics disables /metrics and request
// accounting; a nil logger uses slog.Default().
func New(search SearchService, config Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		echo:    echo.New(),
		search:  search,
		metrics: m,
		logger:  logger.With("component", "server"),
		config:  config,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				s.logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.Debug("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: allowOrigins(config.AllowedOrigins),
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{echo.HeaderContentType},
	}))

	e.GET("/healthz", s.handleHealth)
	e.Any("/api/search", s.handleSearch)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return s
}

// allowOrigins matches request origins against the configured list exactly.
// An empty list allows no origin; "*" must be listed to allow every origin.
func allowOrigins(origins []string) func(string) (bool, error) {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, wildcard := allowed["*"]
	return func(origin string) (bool, error) {
		if wildcard {
			return true, nil
		}
		_, ok := allowed[origin]
		return ok, nil
	}
}

// Handler returns the router for use with httptest or a custom listener
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled and then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := s.echo.Server
	srv.ReadTimeout = s.config.ReadTimeout
	srv.ReadHeaderTimeout = 5 * time.Second
	srv.WriteTimeout = s.config.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.config.Address)
	}()
	s.logger.Info("search API listening", "address", s.config.Address)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleError renders every error as {"error": message}
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, errorBody{Error: msg})
}
