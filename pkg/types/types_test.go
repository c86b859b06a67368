package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankingConfigDefaults(t *testing.T) {
	t.Run("absent fields keep defaults", func(t *testing.T) {
		cfg := DefaultRankingConfig()
		require.NoError(t, json.Unmarshal([]byte(`{"ranking":{"signals":{"hasDigit":0.4}}}`), &cfg))

		assert.Equal(t, 0.2, cfg.Ranking.LexWeightMin)
		assert.Equal(t, 0.7, cfg.Ranking.LexWeightMax)
		assert.Equal(t, 0.4, cfg.Ranking.Signals.HasDigit)
		assert.Equal(t, 12, cfg.Ranking.Thresholds.LongTokenLength)
		assert.Equal(t, 3, cfg.Ranking.Thresholds.ManyTokensCount)
		assert.Equal(t, 3, cfg.Highlight.MinTokenLength)
	})

	t.Run("explicit zero is honoured", func(t *testing.T) {
		cfg := DefaultRankingConfig()
		require.NoError(t, json.Unmarshal([]byte(`{"ranking":{"lexWeightMin":0}}`), &cfg))
		assert.Equal(t, 0.0, cfg.Ranking.LexWeightMin)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		cfg := DefaultRankingConfig()
		cfg.Ranking.LexWeightMin = 0.9
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidWeights)
	})
}

func TestRecordValidate(t *testing.T) {
	valid := Record{ID: ChunkID("content/a.md", 2), Text: "body", EmbeddingDim: 3}
	assert.Equal(t, "content/a.md#2", valid.ID)
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		rec  Record
		want error
	}{
		{"missing id", Record{Text: "x", EmbeddingDim: 1}, ErrInvalidRecordID},
		{"no ordinal", Record{ID: "a.md", Text: "x", EmbeddingDim: 1}, ErrInvalidRecordID},
		{"blank text", Record{ID: "a.md#0", Text: "  ", EmbeddingDim: 1}, ErrEmptyContent},
		{"no dimension", Record{ID: "a.md#0", Text: "x"}, ErrInvalidDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.rec.Validate(), tt.want)
		})
	}
}
