package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dshills/docsearch/internal/searcher"
)

// statusClientClosed is recorded when the caller went away mid-query
const statusClientClosed = 499

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSearch(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusNoContent)
	case http.MethodGet:
	default:
		return c.JSON(http.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	}

	started := time.Now()
	code := http.StatusOK
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSearch(code, time.Since(started))
		}
	}()

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		code = http.StatusBadRequest
		return c.JSON(code, errorBody{Error: "Missing q"})
	}
	k := parseK(c.QueryParam("k"))

	ctx := c.Request().Context()
	resp, err := s.search.Search(ctx, q, k)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			code = statusClientClosed
			s.logger.Debug("search cancelled by client", "q", q)
			return nil
		}
		if errors.Is(err, searcher.ErrEmptyQuery) {
			code = http.StatusBadRequest
			return c.JSON(code, errorBody{Error: "Missing q"})
		}
		code = http.StatusInternalServerError
		s.logger.Error("search failed", "q", q, "k", k, "error", err)
		return c.JSON(code, errorBody{Error: err.Error()})
	}
	return c.JSON(code, resp)
}

// parseK reads the k parameter. Fractions truncate; anything that is not a
// finite number selects the default before clamping.
func parseK(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return searcher.DefaultK
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return searcher.DefaultK
	}
	if f >= searcher.MaxK {
		return searcher.MaxK
	}
	if f < 1 {
		if f == 0 {
			return searcher.DefaultK
		}
		return 1
	}
	return searcher.NormalizeK(int(f))
}
