// Package config loads docsearch settings from defaults, an optional config
// file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dshills/docsearch/internal/chunker"
	"github.com/dshills/docsearch/internal/embedder"
	"github.com/dshills/docsearch/internal/indexer"
)

// EnvPrefix prefixes environment overrides: DOCSEARCH_SERVER_ADDRESS etc.
const EnvPrefix = "DOCSEARCH"

// Config is the full application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Index     IndexConfig     `mapstructure:"index"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains HTTP query service settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	QueryCacheSize  int           `mapstructure:"query_cache_size"` // Cached query embeddings, 0 disables
}

// EmbeddingConfig selects and authenticates the embedding provider
type EmbeddingConfig struct {
	Provider   string        `mapstructure:"provider"` // azure, openai or local
	APIKey     string        `mapstructure:"api_key"`
	APIBase    string        `mapstructure:"api_base"`
	APIVersion string        `mapstructure:"api_version"`
	Deployment string        `mapstructure:"deployment"`
	Model      string        `mapstructure:"model"`
	Dimension  int           `mapstructure:"dimension"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// IndexConfig contains index build settings
type IndexConfig struct {
	ProjectRoot  string   `mapstructure:"project_root"`
	ContentRoot  string   `mapstructure:"content_root"`
	OutDir       string   `mapstructure:"out_dir"`
	DocsRepoPath string   `mapstructure:"docs_repo_path"`
	RepoURL      string   `mapstructure:"repo_url"`
	Source       string   `mapstructure:"source"`
	URLStyle     string   `mapstructure:"url_style"`
	BatchSize    int      `mapstructure:"batch_size"`
	MaxFiles     int      `mapstructure:"max_files"`
	MinWords     int      `mapstructure:"min_words"`
	MaxWords     int      `mapstructure:"max_words"`
	IgnoreDirs   []string `mapstructure:"ignore_dirs"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Options controls where Load looks for settings
type Options struct {
	ConfigFile string // Explicit config file; otherwise docsearch.* in . and ./config
	EnvFile    string // Default: .env in the working directory
}

// bareEnv maps the plain variable names of existing deployments to keys
var bareEnv = map[string][]string{
	"embedding.api_key":     {"api_key"},
	"embedding.api_base":    {"api_base"},
	"embedding.api_version": {"api_version"},
	"embedding.deployment":  {"embedding_deployment_name", "deployment_name"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:1313", "http://127.0.0.1:1313"})
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.query_cache_size", 512)

	v.SetDefault("embedding.provider", embedder.ProviderAzure)
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.dimension", 0)
	v.SetDefault("embedding.timeout", embedder.DefaultTimeout)
	v.SetDefault("embedding.max_retries", embedder.DefaultMaxRetries)
	v.SetDefault("embedding.base_delay", embedder.DefaultBaseDelay)

	v.SetDefault("index.project_root", ".")
	v.SetDefault("index.content_root", "")
	v.SetDefault("index.out_dir", "")
	v.SetDefault("index.docs_repo_path", "")
	v.SetDefault("index.source", "")
	v.SetDefault("index.max_files", 0)
	v.SetDefault("index.ignore_dirs", []string{})
	v.SetDefault("index.repo_url", "https://github.com/Altinn/altinn-studio-docs")
	v.SetDefault("index.url_style", string(indexer.URLCanonical))
	v.SetDefault("index.batch_size", embedder.DefaultBatchSize)
	v.SetDefault("index.min_words", chunker.DefaultMinWords)
	v.SetDefault("index.max_words", chunker.DefaultMaxWords)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration. Values already set in the environment win
// over the .env file; a missing .env or config file is not an error.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("docsearch")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range bareEnv {
		args := append([]string{key, EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize trims values and fills derived defaults
func (c *Config) Normalize() {
	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = embedder.ProviderAzure
	}
	c.Embedding.APIBase = strings.TrimRight(strings.TrimSpace(c.Embedding.APIBase), "/")

	var origins []string
	for _, o := range c.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.AllowedOrigins = origins

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// Validate rejects settings that cannot work
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case embedder.ProviderAzure, embedder.ProviderOpenAI, embedder.ProviderLocal:
	default:
		return fmt.Errorf("embedding.provider %q is not one of azure, openai, local", c.Embedding.Provider)
	}
	if c.Embedding.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries cannot be negative")
	}
	if c.Server.QueryCacheSize < 0 {
		return fmt.Errorf("server.query_cache_size cannot be negative")
	}
	if c.Index.BatchSize < 1 || c.Index.BatchSize > embedder.MaxBatchSize {
		return fmt.Errorf("index.batch_size must be between 1 and %d", embedder.MaxBatchSize)
	}
	if c.Index.MaxFiles < 0 {
		return fmt.Errorf("index.max_files cannot be negative")
	}
	if err := c.Chunking().Validate(); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	if _, err := indexer.ParseURLStyle(c.Index.URLStyle); err != nil {
		return fmt.Errorf("index.url_style: %w", err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q is not text or json", c.Log.Format)
	}
	return nil
}

// Chunking returns the chunker settings
func (c *Config) Chunking() chunker.Config {
	return chunker.Config{MinWords: c.Index.MinWords, MaxWords: c.Index.MaxWords}
}

// EmbedderConfig converts the embedding section for embedder.New.
// onRetry may be nil.
func (c *Config) EmbedderConfig(onRetry func(retry int, delay time.Duration, err error)) embedder.Config {
	retry := embedder.DefaultRetryPolicy()
	retry.MaxRetries = c.Embedding.MaxRetries
	if c.Embedding.BaseDelay > 0 {
		retry.BaseDelay = c.Embedding.BaseDelay
	}
	retry.OnRetry = onRetry

	return embedder.Config{
		Provider:   c.Embedding.Provider,
		APIKey:     c.Embedding.APIKey,
		APIBase:    c.Embedding.APIBase,
		APIVersion: c.Embedding.APIVersion,
		Deployment: c.Embedding.Deployment,
		Model:      c.Embedding.Model,
		Timeout:    c.Embedding.Timeout,
		Dimension:  c.Embedding.Dimension,
		Retry:      retry,
	}
}

// IndexerConfig converts the index section for indexer.New
func (c *Config) IndexerConfig() indexer.Config {
	style, _ := indexer.ParseURLStyle(c.Index.URLStyle)
	return indexer.Config{
		ProjectRoot:         c.Index.ProjectRoot,
		ContentRoot:         c.Index.ContentRoot,
		OutDir:              c.Index.OutDir,
		DocsRepoPath:        c.Index.DocsRepoPath,
		Source:              c.Index.Source,
		URLStyle:            style,
		BatchSize:           c.Index.BatchSize,
		MaxFiles:            c.Index.MaxFiles,
		IgnoreDirs:          c.Index.IgnoreDirs,
		Chunking:            c.Chunking(),
		EmbeddingDeployment: c.Embedding.Deployment,
		APIBase:             c.Embedding.APIBase,
		APIVersion:          c.Embedding.APIVersion,
	}
}

// DefaultDocsRepoPath is where --clone checks out the upstream docs
func (c *Config) DefaultDocsRepoPath() string {
	return filepath.Join(c.Index.ProjectRoot, "search", ".cache", "altinn-studio-docs")
}

// SlogLevel parses the level name
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// NewLogger builds a slog logger writing to w per the log section
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
