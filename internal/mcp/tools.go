package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/docsearch/internal/highlight"
	"github.com/dshills/docsearch/internal/searcher"
	"github.com/dshills/docsearch/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeIndexingInProgress = -32002 // Another build is already running
	ErrorCodeNotIndexed         = -32003 // No index has been built yet
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleSearchDocs handles the search_docs tool invocation
func (s *Server) handleSearchDocs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	k := getIntDefault(args, "k", searcher.DefaultK)
	if k < 1 || k > searcher.MaxK {
		return nil, newMCPError(ErrorCodeInvalidParams, "k must be between 1 and 50", map[string]interface{}{
			"param": "k",
			"value": k,
		})
	}

	resp, err := s.searcher.Search(ctx, query, k)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotIndexed, "no index found; run rebuild_index or docsearch index first", nil)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, map[string]interface{}{
			"id":        r.ID,
			"url":       r.URL,
			"title":     r.Title,
			"section":   highlight.GroupLabel(r.URL),
			"score":     round(r.Score),
			"vec_score": round(r.VecScore),
			"lex_score": round(r.LexScore),
			"snippet":   r.Snippet,
		})
	}

	response := map[string]interface{}{
		"query": resp.Query,
		"k":     resp.K,
		"ranking": map[string]interface{}{
			"specificity": round(resp.Ranking.Specificity),
			"w_lex":       round(resp.Ranking.WLex),
			"w_vec":       round(resp.Ranking.WVec),
		},
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexStatus handles the index_status tool invocation
func (s *Server) handleIndexStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idx, err := s.store.LoadIndex(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed":  false,
			"building": s.lock.Held(),
			"message":  "No index built yet. Use rebuild_index or run docsearch index.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to load index", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":     true,
		"building":    s.lock.Held(),
		"records":     idx.Len(),
		"dimension":   idx.Dimension,
		"modified_at": idx.ModTime.UTC().Format(time.RFC3339),
	}

	meta, err := s.store.LoadMetadata(ctx)
	switch {
	case err == nil:
		build := map[string]interface{}{
			"build_id":           meta.BuildID,
			"created_at":         meta.CreatedAt.Format(time.RFC3339),
			"complete":           meta.CompletedAt != nil,
			"source":             meta.Source,
			"total_files":        meta.TotalFiles,
			"total_chunks":       meta.TotalChunks,
			"embedding_provider": meta.EmbeddingProvider,
		}
		if meta.DocsRepoCommit != "" {
			build["docs_repo_commit"] = meta.DocsRepoCommit
		}
		if meta.PortalCommit != "" {
			build["portal_commit"] = meta.PortalCommit
		}
		response["build"] = build
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.logger.Warn("failed to read index metadata", "error", err)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRebuildIndex handles the rebuild_index tool invocation
func (s *Server) handleRebuildIndex(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	maxFiles := getIntDefault(args, "max_files", 0)
	if maxFiles < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_files cannot be negative", map[string]interface{}{
			"param": "max_files",
			"value": maxFiles,
		})
	}

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "an index build is already running", nil)
	}
	defer s.lock.Release()

	b, err := s.newBuilder(maxFiles)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create builder", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("rebuild requested", "max_files", maxFiles)
	stats, err := b.Build(ctx)
	if err != nil {
		data := map[string]interface{}{"error": err.Error()}
		if stats != nil {
			data["chunks_written"] = stats.ChunksCreated
		}
		return nil, newMCPError(ErrorCodeInternalError, "index build failed", data)
	}

	response := map[string]interface{}{
		"indexed":        true,
		"build_id":       stats.BuildID,
		"files_seen":     stats.FilesSeen,
		"files_indexed":  stats.FilesIndexed,
		"chunks_created": stats.ChunksCreated,
		"batches":        stats.Batches,
		"embedding_dim":  stats.EmbeddingDim,
		"duration_ms":    stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// round trims scores to four decimals for readable output
func round(f float64) float64 {
	return math.Round(f*10000) / 10000
}
