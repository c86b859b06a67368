package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrProviderFailed      = errors.New("embedding provider failed")
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrMissingCredentials  = errors.New("missing embedding credentials")
	ErrShapeMismatch       = errors.New("unexpected embeddings response shape")
	ErrMalformedResponse   = errors.New("malformed embeddings response")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
)

// Embedder turns text into dense vectors
type Embedder interface {
	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedOne embeds a single text
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the model or deployment name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// ProviderError is a non-2xx answer from an embedding provider
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embeddings request failed: %d %s", e.StatusCode, e.Message)
}

// Temporary reports whether the status is worth retrying (429 or 5xx)
func (e *ProviderError) Temporary() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
}

// IsRetryable reports whether err is a transient provider failure
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Temporary()
}

// ValidateTexts rejects empty batches and blank entries
func ValidateTexts(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrInvalidInput)
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("%w: text %d", ErrEmptyText, i)
		}
	}
	return nil
}

// checkShape verifies a provider answered with exactly want non-empty vectors
func checkShape(vectors [][]float32, want int) error {
	if len(vectors) != want {
		return fmt.Errorf("%w: got %d embeddings for %d inputs", ErrShapeMismatch, len(vectors), want)
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("%w: embedding %d is empty", ErrShapeMismatch, i)
		}
	}
	return nil
}

// Cache provides in-memory LRU caching of vectors by content hash
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 1024
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](1024)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of the cached vector
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores a copy of v
func (c *Cache) Set(hash string, v []float32) {
	stored := make([]float32, len(v))
	copy(stored, v)
	c.cache.Add(hash, stored)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache
func (c *Cache) Clear() {
	c.cache.Purge()
}

// ComputeHash computes SHA-256 hash of text for caching
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// CachingEmbedder memoizes EmbedOne results of the wrapped embedder.
// Batch calls pass straight through.
type CachingEmbedder struct {
	Embedder
	cache *Cache
}

// NewCachingEmbedder wraps e with an LRU of the given size
func NewCachingEmbedder(e Embedder, size int) *CachingEmbedder {
	return &CachingEmbedder{Embedder: e, cache: NewCache(size)}
}

// EmbedOne returns the cached vector for text or embeds and caches it
func (c *CachingEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	hash := ComputeHash(text)
	if v, ok := c.cache.Get(hash); ok {
		return v, nil
	}
	v, err := c.Embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Set(hash, v)
	return v, nil
}

// Cache exposes the underlying cache
func (c *CachingEmbedder) Cache() *Cache {
	return c.cache
}
