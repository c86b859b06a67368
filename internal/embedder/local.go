package embedder

import (
	"context"
	"crypto/sha256"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// LocalDimension is the vector size of the local provider
const LocalDimension = 256

// LocalProvider produces deterministic feature-hashing vectors. Texts that
// share words get similar vectors, which is enough for offline development
// and tests; it is not a language model.
type LocalProvider struct {
	dim int
}

// NewLocalProvider creates a local embedder, LocalDimension when dim <= 0
func NewLocalProvider(dim int) *LocalProvider {
	if dim <= 0 {
		dim = LocalDimension
	}
	return &LocalProvider{dim: dim}
}

func (l *LocalProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateTexts(texts); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.vector(text)
	}
	return out, nil
}

func (l *LocalProvider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := l.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (l *LocalProvider) vector(text string) []float32 {
	v := make([]float32, l.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		sum := h.Sum32()
		sign := float32(1)
		if sum&0x80000000 != 0 {
			sign = -1
		}
		v[int(sum%uint32(l.dim))] += sign
	}

	if len(words) == 0 {
		digest := sha256.Sum256([]byte(text))
		for i := range v {
			v[i] = float32(digest[i%len(digest)])/255.0 - 0.5
		}
	}
	return NormalizeVector(v)
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return "feature-hash"
}

func (l *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity)
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
