package types

import "fmt"

// Signals holds the specificity weight contributed by each query feature
type Signals struct {
	HasDigit       float64 `json:"hasDigit"`
	HasSpecialChar float64 `json:"hasSpecialChar"`
	HasCamelCase   float64 `json:"hasCamelCase"`
	HasLongToken   float64 `json:"hasLongToken"`
	ManyTokens     float64 `json:"manyTokens"`
}

// Thresholds controls when the long-token and many-tokens signals fire
type Thresholds struct {
	LongTokenLength int `json:"longTokenLength"`
	ManyTokensCount int `json:"manyTokensCount"`
}

// Ranking holds the fusion weights
type Ranking struct {
	LexWeightMin float64    `json:"lexWeightMin"`
	LexWeightMax float64    `json:"lexWeightMax"`
	Signals      Signals    `json:"signals"`
	Thresholds   Thresholds `json:"thresholds"`
}

// Highlight holds client highlighting settings
type Highlight struct {
	MinTokenLength int `json:"minTokenLength"`
}

// RankingConfig is the contents of search/search.config.json
type RankingConfig struct {
	Highlight Highlight `json:"highlight"`
	Ranking   Ranking   `json:"ranking"`
}

// DefaultRankingConfig returns the values used when a field is absent.
// Signals default to zero, so specificity is zero until configured.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		Highlight: Highlight{MinTokenLength: 3},
		Ranking: Ranking{
			LexWeightMin: 0.2,
			LexWeightMax: 0.7,
			Thresholds: Thresholds{
				LongTokenLength: 12,
				ManyTokensCount: 3,
			},
		},
	}
}

// Validate checks that the weight range is usable
func (c RankingConfig) Validate() error {
	if c.Ranking.LexWeightMin > c.Ranking.LexWeightMax {
		return fmt.Errorf("%w: %.3f > %.3f", ErrInvalidWeights, c.Ranking.LexWeightMin, c.Ranking.LexWeightMax)
	}
	return nil
}
