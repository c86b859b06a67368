package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/docsearch/pkg/types"
)

// Reload kinds reported to the reload hook
const (
	KindIndex  = "index"
	KindConfig = "config"
)

// cached is one parsed file tagged with the mtime it was read at
type cached[T any] struct {
	modTime time.Time
	value   T
}

// Store loads the index and ranking config from a file system and keeps the
// last parsed generation of each in memory. A load stats the file and
// reuses the cached value while the mtime is unchanged; a new mtime causes
// a re-parse and an atomic swap, so readers see the old or the new
// generation and never a partial one.
type Store struct {
	fsys       fs.FS
	indexPath  string
	configPath string
	metaPath   string
	logger     *slog.Logger
	onReload   func(kind string, records int)

	index  atomic.Pointer[cached[*Index]]
	config atomic.Pointer[cached[types.RankingConfig]]
	group  singleflight.Group
}

// Option configures a Store
type Option func(*Store)

// WithPaths overrides the file locations inside the file system
func WithPaths(index, config, meta string) Option {
	return func(s *Store) {
		s.indexPath = index
		s.configPath = config
		s.metaPath = meta
	}
}

// WithReloadHook registers fn to be called after every re-parse
func WithReloadHook(fn func(kind string, records int)) Option {
	return func(s *Store) {
		s.onReload = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store over fsys, typically os.DirFS(projectRoot)
func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{
		fsys:       fsys,
		indexPath:  IndexPath,
		configPath: ConfigPath,
		metaPath:   MetaPath,
		logger:     slog.Default().With("component", "storage"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadIndex returns the current index generation
func (s *Store) LoadIndex(ctx context.Context) (*Index, error) {
	return load(ctx, s, KindIndex, s.indexPath, &s.index, s.parseIndex)
}

// LoadConfig returns the current ranking configuration, with defaults for
// absent fields
func (s *Store) LoadConfig(ctx context.Context) (types.RankingConfig, error) {
	return load(ctx, s, KindConfig, s.configPath, &s.config, s.parseConfig)
}

// LoadMetadata reads meta.json. It is not cached.
func (s *Store) LoadMetadata(ctx context.Context) (*types.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, s.metaPath)
	if err != nil {
		return nil, wrapNotFound(s.metaPath, err)
	}
	var meta types.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.metaPath, err)
	}
	return &meta, nil
}

func load[T any](ctx context.Context, s *Store, kind, path string, slot *atomic.Pointer[cached[T]],
	parse func(modTime time.Time) (T, int, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	info, err := fs.Stat(s.fsys, path)
	if err != nil {
		return zero, wrapNotFound(path, err)
	}
	modTime := info.ModTime()
	if cur := slot.Load(); cur != nil && cur.modTime.Equal(modTime) {
		return cur.value, nil
	}

	ch := s.group.DoChan(kind+"@"+modTime.String(), func() (any, error) {
		if cur := slot.Load(); cur != nil && cur.modTime.Equal(modTime) {
			return cur.value, nil
		}
		value, n, err := parse(modTime)
		if err != nil {
			return nil, err
		}
		slot.Store(&cached[T]{modTime: modTime, value: value})
		s.logger.Info("reloaded", "kind", kind, "path", path, "records", n, "mtime", modTime)
		if s.onReload != nil {
			s.onReload(kind, n)
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (s *Store) parseIndex(modTime time.Time) (*Index, int, error) {
	f, err := s.fsys.Open(s.indexPath)
	if err != nil {
		return nil, 0, wrapNotFound(s.indexPath, err)
	}
	defer func() { _ = f.Close() }()

	records, dim, err := ReadIndex(f)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", s.indexPath, err)
	}
	return &Index{Records: records, Dimension: dim, ModTime: modTime}, len(records), nil
}

func (s *Store) parseConfig(time.Time) (types.RankingConfig, int, error) {
	cfg := types.DefaultRankingConfig()
	data, err := fs.ReadFile(s.fsys, s.configPath)
	if err != nil {
		return cfg, 0, wrapNotFound(s.configPath, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, 0, fmt.Errorf("parse %s: %w", s.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, 0, fmt.Errorf("%s: %w", s.configPath, err)
	}
	return cfg, 0, nil
}

func wrapNotFound(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("access %s: %w", path, err)
}
