package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/docsearch/internal/indexer"
	"github.com/dshills/docsearch/internal/storage"
	"github.com/dshills/docsearch/pkg/types"
)

// ServerName is the MCP server name
const ServerName = "docsearch"

// Searcher answers ranked queries
type Searcher interface {
	Search(ctx context.Context, query string, k int) (*types.SearchResponse, error)
}

// StatusSource exposes the current index generation
type StatusSource interface {
	LoadIndex(ctx context.Context) (*storage.Index, error)
	LoadMetadata(ctx context.Context) (*types.Metadata, error)
}

// BuildRunner runs one index build
type BuildRunner interface {
	Build(ctx context.Context) (*indexer.Statistics, error)
}

// BuilderFactory creates a builder limited to maxFiles files (0 for all)
type BuilderFactory func(maxFiles int) (BuildRunner, error)

// Deps are the components the tools operate on
type Deps struct {
	Searcher   Searcher
	Store      StatusSource
	NewBuilder BuilderFactory // Optional; without it rebuild_index is not registered
	Logger     *slog.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp        *server.MCPServer
	searcher   Searcher
	store      StatusSource
	newBuilder BuilderFactory
	lock       indexer.IndexLock
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(deps Deps, version string) (*Server, error) {
	if deps.Searcher == nil || deps.Store == nil {
		return nil, errors.New("searcher and store are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mcp:        server.NewMCPServer(ServerName, version),
		searcher:   deps.Searcher,
		store:      deps.Store,
		newBuilder: deps.NewBuilder,
		logger:     logger.With("component", "mcp"),
	}
	s.registerTools()
	return s, nil
}

// Serve runs the MCP server on stdio until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeIO(ctx, os.Stdin, os.Stdout)
}

// ServeIO speaks the MCP protocol over in and out. Cancelling ctx is a clean
// shutdown and returns nil.
func (s *Server) ServeIO(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocsTool(), s.handleSearchDocs)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
	if s.newBuilder != nil {
		s.mcp.AddTool(rebuildIndexTool(), s.handleRebuildIndex)
	}
}
