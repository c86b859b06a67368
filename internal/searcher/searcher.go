package searcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/docsearch/internal/storage"
	"github.com/dshills/docsearch/pkg/types"
)

// Result count bounds
const (
	DefaultK = 10
	MaxK     = 50
)

// ErrEmptyQuery is returned for a blank query
var ErrEmptyQuery = errors.New("query cannot be empty")

// IndexSource supplies the index and ranking configuration
type IndexSource interface {
	LoadIndex(ctx context.Context) (*storage.Index, error)
	LoadConfig(ctx context.Context) (types.RankingConfig, error)
}

// QueryEmbedder embeds a single query string
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}

// Searcher ranks index records against free-text queries
type Searcher struct {
	source   IndexSource
	embedder QueryEmbedder
	logger   *slog.Logger
}

// Option configures a Searcher
type Option func(*Searcher)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// New creates a new Searcher instance
func New(source IndexSource, emb QueryEmbedder, opts ...Option) *Searcher {
	s := &Searcher{
		source:   source,
		embedder: emb,
		logger:   slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeK maps 0 to DefaultK and clamps everything else into [1, MaxK]
func NormalizeK(k int) int {
	switch {
	case k == 0:
		return DefaultK
	case k < 1:
		return 1
	case k > MaxK:
		return MaxK
	default:
		return k
	}
}

// Search ranks the current index against query and returns the top k.
// The index, the ranking config and the query embedding are fetched
// concurrently; if any of them fails the search fails.
func (s *Searcher) Search(ctx context.Context, query string, k int) (*types.SearchResponse, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	k = NormalizeK(k)
	start := time.Now()

	var (
		idx *storage.Index
		cfg types.RankingConfig
		qv  []float32
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if idx, err = s.source.LoadIndex(gctx); err != nil {
			return fmt.Errorf("load index: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if cfg, err = s.source.LoadConfig(gctx); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if qv, err = s.embedder.EmbedOne(gctx, q); err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := Rank(idx.Records, cfg.Ranking, q, qv, k)
	s.logger.Debug("search",
		"q", q,
		"k", k,
		"records", idx.Len(),
		"specificity", resp.Ranking.Specificity,
		"duration", time.Since(start))
	return resp, nil
}

type scored struct {
	rec      *types.LoadedRecord
	vecScore float64
	lexScore float64
	score    float64
}

// Rank scores every record, fusing cosine similarity and lexical score
// with query-adaptive weights, and returns the k best. Ties keep index
// order.
func Rank(records []types.LoadedRecord, cfg types.Ranking, q string, qv []float32, k int) *types.SearchResponse {
	tokens := Tokenize(q)
	specificity := Specificity(q, tokens, cfg)
	wLex, wVec := FusionWeights(specificity, cfg)
	qNorm := storage.L2Norm(qv)

	all := make([]scored, len(records))
	for i := range records {
		rec := &records[i]
		vec := storage.CosineSimilarity(qv, qNorm, rec.Embedding, rec.EmbeddingNorm)
		lex := LexicalScore(tokens, rec.Text, rec.Title)
		all[i] = scored{rec: rec, vecScore: vec, lexScore: lex, score: vec*wVec + lex*wLex}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	top := all[:min(k, len(all))]
	results := make([]types.SearchResult, len(top))
	for i, s := range top {
		results[i] = types.SearchResult{
			ID:       s.rec.ID,
			URL:      s.rec.URL,
			FilePath: s.rec.FilePath,
			Title:    s.rec.Title,
			Score:    s.score,
			VecScore: s.vecScore,
			LexScore: s.lexScore,
			Snippet:  Snippet(tokens, s.rec.Text, SnippetLength),
		}
	}

	return &types.SearchResponse{
		Query: q,
		K:     k,
		Ranking: types.RankingInfo{
			Specificity: specificity,
			WLex:        wLex,
			WVec:        wVec,
		},
		Results: results,
	}
}
