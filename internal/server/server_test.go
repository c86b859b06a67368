package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docsearch/internal/metrics"
	"github.com/dshills/docsearch/pkg/types"
)

type fakeSearch struct {
	err   error
	gotQ  string
	gotK  int
	calls int
}

func (f *fakeSearch) Search(ctx context.Context, q string, k int) (*types.SearchResponse, error) {
	f.calls++
	f.gotQ, f.gotK = q, k
	if f.err != nil {
		return nil, f.err
	}
	return &types.SearchResponse{
		Query:   q,
		K:       k,
		Ranking: types.RankingInfo{Specificity: 0, WLex: 0.2, WVec: 0.8},
		Results: []types.SearchResult{{ID: "a#0", URL: "/a", Title: "A", Score: 0.9}},
	}, nil
}

var testOrigins = []string{"http://localhost:1313", "http://127.0.0.1:1313"}

func newTestServer(search SearchService, m *metrics.Metrics) *Server {
	return New(search, Config{AllowedOrigins: testOrigins}, m, nil)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestSearch(t *testing.T) {
	fs := &fakeSearch{}
	s := newTestServer(fs, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/search?q=++autorisasjon++&k=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "autorisasjon", fs.gotQ)
	assert.Equal(t, 5, fs.gotK)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "autorisasjon", resp.Query)
	assert.Equal(t, 5, resp.K)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a#0", resp.Results[0].ID)
	assert.Equal(t, 0.8, resp.Ranking.WVec)
}

func TestSearchMissingQuery(t *testing.T) {
	for _, target := range []string{"/api/search", "/api/search?q=", "/api/search?q=%20%20"} {
		fs := &fakeSearch{}
		s := newTestServer(fs, nil)

		rec := do(t, s, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "Missing q", decodeError(t, rec))
		assert.Zero(t, fs.calls, "engine must not be called")
	}
}

func TestSearchK(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 10},
		{"abc", 10},
		{"0", 10},
		{"-3", 1},
		{"0.5", 1},
		{"7", 7},
		{"7.9", 7},
		{"999", 50},
		{"Infinity", 10},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			fs := &fakeSearch{}
			s := newTestServer(fs, nil)
			rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/search?q=x&k="+tt.raw, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, fs.gotK)
		})
	}
}

func TestSearchFailure(t *testing.T) {
	s := newTestServer(&fakeSearch{err: errors.New("embed query: provider down")}, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "embed query: provider down", decodeError(t, rec))
}

func TestSearchCancelled(t *testing.T) {
	m := metrics.New()
	s := newTestServer(&fakeSearch{err: context.Canceled}, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil).WithContext(ctx)

	rec := do(t, s, req)
	assert.Empty(t, rec.Body.String())

	scrape := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, scrape.Body.String(), `docsearch_search_requests_total{code="499"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeSearch{}, nil)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		rec := do(t, s, httptest.NewRequest(method, "/api/search?q=x", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "Method not allowed", decodeError(t, rec))
	}
}

func TestCORS(t *testing.T) {
	s := newTestServer(&fakeSearch{}, nil)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
		req.Header.Set("Origin", "http://localhost:1313")
		rec := do(t, s, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:1313", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := do(t, s, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		req.Header.Set("Origin", "http://127.0.0.1:1313")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := do(t, s, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://127.0.0.1:1313", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
	})

	t.Run("preflight without origin", func(t *testing.T) {
		rec := do(t, s, httptest.NewRequest(http.MethodOptions, "/api/search", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCORSEmptyAllowList(t *testing.T) {
	for _, origins := range [][]string{nil, {}} {
		s := New(&fakeSearch{}, Config{AllowedOrigins: origins}, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := do(t, s, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		req.Header.Set("Origin", "http://localhost:1313")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec = do(t, s, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSWildcard(t *testing.T) {
	s := New(&fakeSearch{}, Config{AllowedOrigins: []string{"*"}}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
	req.Header.Set("Origin", "https://docs.example")
	rec := do(t, s, req)
	assert.Equal(t, "https://docs.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeSearch{err: errors.New("index missing")}, nil)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeSearch{}, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	m := metrics.New()
	s = newTestServer(&fakeSearch{}, m)
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil))
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/search", nil))

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `docsearch_search_requests_total{code="200"} 1`)
	assert.Contains(t, rec.Body.String(), `docsearch_search_requests_total{code="400"} 1`)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(&fakeSearch{}, nil)
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestRunShutdown(t *testing.T) {
	s := New(&fakeSearch{}, Config{Address: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
