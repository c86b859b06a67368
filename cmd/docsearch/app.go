package main

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/docsearch/internal/config"
	"github.com/dshills/docsearch/internal/embedder"
	"github.com/dshills/docsearch/internal/indexer"
	"github.com/dshills/docsearch/internal/metrics"
	"github.com/dshills/docsearch/internal/searcher"
	"github.com/dshills/docsearch/internal/storage"
)

// app carries state shared by the subcommands
type app struct {
	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// init loads configuration and installs the process logger. Logs go to
// stderr; stdout is reserved for command output and the MCP protocol.
func (a *app) init() error {
	cfg, err := config.Load(config.Options{ConfigFile: a.configPath, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = strings.ToLower(a.logLevel)
		if _, err := cfg.Log.SlogLevel(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}

// newEmbedder builds the configured provider; retries are logged and, when
// m is set, counted
func (a *app) newEmbedder(m *metrics.Metrics) (embedder.Embedder, error) {
	logger := a.logger.With("component", "embedder")
	onRetry := func(retry int, delay time.Duration, err error) {
		logger.Warn("embedding call failed, retrying", "retry", retry, "delay", delay, "error", err)
		if m != nil {
			m.EmbeddingRetried()
		}
	}
	return embedder.New(a.cfg.EmbedderConfig(onRetry))
}

// newStore opens the index store over the project root
func (a *app) newStore(m *metrics.Metrics) (*storage.Store, error) {
	root := a.cfg.Index.ProjectRoot
	opts := []storage.Option{storage.WithLogger(a.logger)}

	if a.cfg.Index.OutDir != "" {
		dir, err := relInside(root, a.cfg.Index.OutDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, storage.WithPaths(
			path.Join(dir, storage.IndexFileName),
			storage.ConfigPath,
			path.Join(dir, storage.MetaFileName),
		))
	}
	if m != nil {
		opts = append(opts, storage.WithReloadHook(m.StoreReloaded))
	}
	return storage.NewStore(os.DirFS(root), opts...), nil
}

// newSearcher wires store, query embedder and ranking engine
func (a *app) newSearcher(m *metrics.Metrics) (*searcher.Searcher, *storage.Store, error) {
	store, err := a.newStore(m)
	if err != nil {
		return nil, nil, err
	}
	emb, err := a.newEmbedder(m)
	if err != nil {
		return nil, nil, err
	}
	var query searcher.QueryEmbedder = emb
	if size := a.cfg.Server.QueryCacheSize; size > 0 {
		query = embedder.NewCachingEmbedder(emb, size)
	}
	return searcher.New(store, query, searcher.WithLogger(a.logger)), store, nil
}

// newBuilder creates an index builder, optionally limited to maxFiles
func (a *app) newBuilder(emb embedder.Embedder, maxFiles int) (*indexer.Builder, error) {
	cfg := a.cfg.IndexerConfig()
	if maxFiles > 0 {
		cfg.MaxFiles = maxFiles
	}
	return indexer.New(emb, cfg, a.logger)
}

// relInside returns path relative to root in slash form, rejecting paths
// outside root since the store reads through os.DirFS(root)
func relInside(root, dir string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("index.out_dir %s must be inside index.project_root %s", dir, root)
	}
	return filepath.ToSlash(rel), nil
}
