package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/docsearch/internal/chunker"
	"github.com/dshills/docsearch/internal/embedder"
	"github.com/dshills/docsearch/internal/parser"
	"github.com/dshills/docsearch/internal/storage"
	"github.com/dshills/docsearch/pkg/types"
)

const (
	// SourcePortal labels indexes built from the portal's own content tree
	SourcePortal = "portal"

	// DefaultRepoSlug labels indexes built from the upstream docs repository
	DefaultRepoSlug = "Altinn/altinn-studio-docs"
)

// ErrInvalidConfig is returned when a builder configuration cannot be used
var ErrInvalidConfig = errors.New("invalid indexer config")

// Config contains configuration for a build
type Config struct {
	ProjectRoot  string   // Record file paths are relative to this directory
	ContentRoot  string   // Directory walked for markdown
	OutDir       string   // Receives index.jsonl and meta.json
	DocsRepoPath string   // Set when indexing a checkout of the upstream docs repo
	Source       string   // Provenance label (default: portal, or DefaultRepoSlug with DocsRepoPath)
	URLStyle     URLStyle // Default: URLCanonical
	BatchSize    int      // Chunks per embedding call (default: embedder.DefaultBatchSize)
	MaxFiles     int      // Stop after this many files when > 0
	IgnoreDirs   []string // Directory names skipped in addition to DefaultIgnoreDirs
	Chunking     chunker.Config

	// Provenance copied into meta.json
	EmbeddingDeployment string
	APIBase             string
	APIVersion          string
}

// Normalize fills defaults for unset fields
func (c *Config) Normalize() {
	if c.ProjectRoot == "" {
		c.ProjectRoot = "."
	}
	if c.ContentRoot == "" {
		if c.DocsRepoPath != "" {
			c.ContentRoot = filepath.Join(c.DocsRepoPath, "content")
		} else {
			c.ContentRoot = filepath.Join(c.ProjectRoot, "content")
		}
	}
	if c.OutDir == "" {
		c.OutDir = filepath.Join(c.ProjectRoot, filepath.FromSlash(storage.IndexDir))
	}
	if c.Source == "" {
		if c.DocsRepoPath != "" {
			c.Source = DefaultRepoSlug
		} else {
			c.Source = SourcePortal
		}
	}
	if c.URLStyle == "" {
		c.URLStyle = URLCanonical
	}
	if c.BatchSize <= 0 {
		c.BatchSize = embedder.DefaultBatchSize
	}
	if c.Chunking == (chunker.Config{}) {
		c.Chunking = chunker.DefaultConfig()
	}
}

// Validate reports the first unusable field
func (c Config) Validate() error {
	if c.BatchSize > embedder.MaxBatchSize {
		return fmt.Errorf("%w: batch size %d exceeds %d", ErrInvalidConfig, c.BatchSize, embedder.MaxBatchSize)
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("%w: max files %d is negative", ErrInvalidConfig, c.MaxFiles)
	}
	if _, err := ParseURLStyle(string(c.URLStyle)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Chunking.Validate(); err != nil {
		return err
	}
	return nil
}

// Progress is reported after every flushed batch
type Progress struct {
	FilesTotal     int
	FilesProcessed int
	ChunksWritten  int
	Batches        int
}

// Statistics summarizes a finished build
type Statistics struct {
	BuildID        string
	FilesSeen      int
	FilesIndexed   int // Files that produced at least one chunk
	ChunksCreated  int
	Batches        int
	EmbeddingDim   int
	Duration       time.Duration
	IndexPath      string
	MetadataPath   string
	DocsRepoCommit string
	PortalCommit   string
}

// Option customizes a Builder
type Option func(*Builder)

// WithProgress installs a callback invoked after each batch is written
func WithProgress(fn func(Progress)) Option {
	return func(b *Builder) { b.onProgress = fn }
}

// WithClock overrides the time source used for metadata timestamps
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// Builder runs the offline pipeline: discover -> parse -> chunk -> embed -> write
type Builder struct {
	config   Config
	embedder embedder.Embedder
	parser   *parser.Parser
	chunker  *chunker.Chunker
	logger   *slog.Logger

	onProgress func(Progress)
	now        func() time.Time
}

// pending is a chunk waiting for its embedding
type pending struct {
	id, url, filePath, title, text string
}

// New creates a Builder. A nil logger uses slog.Default().
func New(emb embedder.Embedder, config Config, logger *slog.Logger, opts ...Option) (*Builder, error) {
	if emb == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	config.Normalize()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ch, err := chunker.New(config.Chunking)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{
		config:   config,
		embedder: emb,
		parser:   parser.New(),
		chunker:  ch,
		logger:   logger.With("component", "indexer"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Config returns the normalized configuration
func (b *Builder) Config() Config {
	return b.config
}

// Build rebuilds the index from scratch. Batches already appended when an
// error occurs stay on disk as a valid prefix of the new generation.
func (b *Builder) Build(ctx context.Context) (*Statistics, error) {
	started := time.Now()
	cfg := b.config

	files, err := Discover(cfg.ContentRoot, append(append([]string{}, DefaultIgnoreDirs...), cfg.IgnoreDirs...))
	if err != nil {
		return nil, err
	}
	if cfg.MaxFiles > 0 && len(files) > cfg.MaxFiles {
		files = files[:cfg.MaxFiles]
	}

	stats := &Statistics{
		BuildID:      uuid.NewString(),
		FilesSeen:    len(files),
		IndexPath:    filepath.Join(cfg.OutDir, storage.IndexFileName),
		MetadataPath: filepath.Join(cfg.OutDir, storage.MetaFileName),
		PortalCommit: GitHead(ctx, cfg.ProjectRoot),
	}
	if cfg.DocsRepoPath != "" {
		stats.DocsRepoCommit = GitHead(ctx, cfg.DocsRepoPath)
	}

	meta := b.metadata(stats)
	w, err := storage.CreateIndex(cfg.OutDir)
	if err != nil {
		return nil, err
	}
	defer func() { _ = w.Close() }()
	if err := w.WriteMetadata(meta); err != nil {
		return nil, err
	}

	b.logger.Info("index build started",
		"build_id", stats.BuildID,
		"files", len(files),
		"content_root", cfg.ContentRoot,
		"provider", b.embedder.Provider())

	queue := make([]pending, 0, cfg.BatchSize)
	flush := func(processed int) error {
		if len(queue) == 0 {
			return nil
		}
		if err := b.flush(ctx, w, queue, stats); err != nil {
			return err
		}
		queue = queue[:0]
		if b.onProgress != nil {
			b.onProgress(Progress{
				FilesTotal:     len(files),
				FilesProcessed: processed,
				ChunksWritten:  w.Written(),
				Batches:        stats.Batches,
			})
		}
		return nil
	}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		chunks, err := b.prepareFile(path)
		if err != nil {
			return stats, err
		}
		if len(chunks) > 0 {
			stats.FilesIndexed++
		}
		for _, c := range chunks {
			queue = append(queue, c)
			if len(queue) >= cfg.BatchSize {
				if err := flush(i + 1); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flush(len(files)); err != nil {
		return stats, err
	}

	completed := b.now().UTC()
	meta.CompletedAt = &completed
	meta.TotalFiles = len(files)
	meta.TotalChunks = stats.ChunksCreated
	meta.EmbeddingDim = stats.EmbeddingDim
	if err := w.WriteMetadata(meta); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(started)
	b.logger.Info("index build finished",
		"build_id", stats.BuildID,
		"files", stats.FilesSeen,
		"chunks", stats.ChunksCreated,
		"batches", stats.Batches,
		"duration", stats.Duration)
	return stats, nil
}

func (b *Builder) metadata(stats *Statistics) *types.Metadata {
	cfg := b.config
	ch := b.chunker.Config()
	return &types.Metadata{
		BuildID:             stats.BuildID,
		CreatedAt:           b.now().UTC(),
		Source:              cfg.Source,
		ContentRootPath:     b.relToProject(cfg.ContentRoot),
		DocsRepoPath:        cfg.DocsRepoPath,
		DocsRepoCommit:      stats.DocsRepoCommit,
		PortalCommit:        stats.PortalCommit,
		EmbeddingProvider:   b.embedder.Provider(),
		EmbeddingDeployment: cfg.EmbeddingDeployment,
		APIBase:             cfg.APIBase,
		APIVersion:          cfg.APIVersion,
		Chunking: types.Chunking{
			MinWords:  ch.MinWords,
			MaxWords:  ch.MaxWords,
			BatchSize: cfg.BatchSize,
		},
	}
}

// prepareFile parses and chunks one file
func (b *Builder) prepareFile(path string) ([]pending, error) {
	doc, err := b.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	rel := b.relToProject(path)
	contentRel, err := filepath.Rel(b.config.ContentRoot, path)
	if err != nil {
		contentRel = rel
	}
	url := SiteURL(filepath.ToSlash(contentRel), b.config.URLStyle)

	chunks := b.chunker.Chunk(doc.Body)
	out := make([]pending, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, pending{
			id:       types.ChunkID(rel, c.Ordinal),
			url:      url,
			filePath: rel,
			title:    doc.Title,
			text:     c.Text(),
		})
	}
	return out, nil
}

// flush embeds queued chunks in one call and appends them to the index
func (b *Builder) flush(ctx context.Context, w *storage.IndexWriter, queue []pending, stats *Statistics) error {
	texts := make([]string, len(queue))
	for i, p := range queue {
		texts[i] = p.text
	}
	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch %d: %w", stats.Batches+1, err)
	}
	if len(vectors) != len(queue) {
		return fmt.Errorf("embed batch %d: %w: got %d vectors for %d texts",
			stats.Batches+1, embedder.ErrShapeMismatch, len(vectors), len(queue))
	}

	records := make([]types.Record, len(queue))
	for i, p := range queue {
		if stats.EmbeddingDim == 0 {
			stats.EmbeddingDim = len(vectors[i])
		} else if len(vectors[i]) != stats.EmbeddingDim {
			return fmt.Errorf("embed batch %d: %w: dimension %d, want %d",
				stats.Batches+1, embedder.ErrShapeMismatch, len(vectors[i]), stats.EmbeddingDim)
		}
		records[i] = storage.NewRecord(p.id, p.url, p.filePath, p.title, p.text, vectors[i])
	}
	if err := w.Append(records); err != nil {
		return err
	}
	stats.Batches++
	stats.ChunksCreated += len(records)
	b.logger.Debug("batch written", "batch", stats.Batches, "records", len(records))
	return nil
}

// relToProject returns path relative to the project root, slash separated
func (b *Builder) relToProject(path string) string {
	root, err := filepath.Abs(b.config.ProjectRoot)
	if err != nil {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Exists reports whether an index generation is present in dir
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, storage.IndexFileName))
	return err == nil
}
