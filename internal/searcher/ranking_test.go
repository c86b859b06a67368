package searcher

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/docsearch/pkg/types"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		q    string
		want []string
	}{
		{"Autorisasjon", []string{"autorisasjon"}},
		{"app-lib v8.1", []string{"app", "lib", "v8"}},
		{"a b cd", []string{"cd"}},
		{"Blå_Skjema!!  ØKT", []string{"blå", "skjema", "økt"}},
		{"   ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got := Tokenize(tt.q)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectSignals(t *testing.T) {
	th := types.DefaultRankingConfig().Ranking.Thresholds

	s := DetectSignals("getUserById", Tokenize("getUserById"), th)
	assert.True(t, s.HasCamelCase)
	assert.False(t, s.HasDigit)
	assert.False(t, s.HasLongToken, "getuserbyid has 11 characters")

	s = DetectSignals("HTTP 429", Tokenize("HTTP 429"), th)
	assert.True(t, s.HasDigit)
	assert.False(t, s.HasCamelCase, "upper to upper is not camel case")

	s = DetectSignals("app/config.json", Tokenize("app/config.json"), th)
	assert.True(t, s.HasSpecialChar)
	assert.True(t, s.ManyTokens)

	s = DetectSignals("tilgangsstyring", Tokenize("tilgangsstyring"), th)
	assert.True(t, s.HasLongToken)
	assert.False(t, s.ManyTokens)
}

func TestSpecificity(t *testing.T) {
	cfg := types.DefaultRankingConfig().Ranking
	assert.Equal(t, 0.0, Specificity("v8 app-lib", Tokenize("v8 app-lib"), cfg), "signals default to zero")

	cfg.Signals = types.Signals{HasDigit: 0.4, HasSpecialChar: 0.4, HasCamelCase: 0.3, HasLongToken: 0.2, ManyTokens: 0.1}
	assert.InDelta(t, 0.4, Specificity("v8", Tokenize("v8"), cfg), 1e-9)
	assert.InDelta(t, 0.8, Specificity("v8-app", Tokenize("v8-app"), cfg), 1e-9)
	assert.Equal(t, 1.0, Specificity("getApp v8-lib x", Tokenize("getApp v8-lib x"), cfg), "clamped to 1")
}

func TestFusionWeights(t *testing.T) {
	cfg := types.DefaultRankingConfig().Ranking

	wLex, wVec := FusionWeights(0, cfg)
	assert.InDelta(t, 0.2, wLex, 1e-9)
	assert.InDelta(t, 0.8, wVec, 1e-9)

	wLex, wVec = FusionWeights(1, cfg)
	assert.InDelta(t, 0.7, wLex, 1e-9)
	assert.InDelta(t, 0.3, wVec, 1e-9)

	prev := -1.0
	for s := 0.0; s <= 1.0; s += 0.1 {
		wLex, wVec := FusionWeights(s, cfg)
		assert.Greater(t, wLex, prev, "wLex is monotonic in specificity")
		assert.InDelta(t, 1.0, wLex+wVec, 1e-9)
		prev = wLex
	}
}

func TestLexicalScore(t *testing.T) {
	assert.Equal(t, 0.0, LexicalScore(nil, "text", "title"))
	assert.Equal(t, 0.0, LexicalScore([]string{"skjema"}, "ingen treff", ""))

	// Two hits in text, one in title
	got := LexicalScore([]string{"skjema"}, "Skjema og skjema.", "Nytt skjema")
	assert.InDelta(t, math.Log1p(2+5), got, 1e-9)

	t.Run("whole words only", func(t *testing.T) {
		assert.Equal(t, 0, countWholeWord("skjemaer og delskjema", "skjema"))
		assert.Equal(t, 1, countWholeWord("app_id app", "app"))
		assert.Equal(t, 2, countWholeWord("(økt) økt", "økt"))
		assert.Equal(t, 2, countWholeWord("aa aa", "aa"))
		assert.Equal(t, 0, countWholeWord("aaa", "aa"))
	})
}

func TestSnippet(t *testing.T) {
	t.Run("centers on first hit", func(t *testing.T) {
		text := strings.Repeat("x", 500) + "token" + strings.Repeat("y", 495)
		assert.Len(t, text, 1000)

		got := Snippet([]string{"token"}, text, SnippetLength)
		assert.Len(t, []rune(got), SnippetLength)
		assert.Equal(t, text[420:660], got)
		assert.Contains(t, got, "token")
	})

	t.Run("token order decides", func(t *testing.T) {
		text := "alpha " + strings.Repeat("-", 300) + " beta"
		got := Snippet([]string{"beta", "alpha"}, text, 20)
		assert.Contains(t, got, "beta")
	})

	t.Run("falls back to head", func(t *testing.T) {
		text := strings.Repeat("z", 300)
		assert.Equal(t, text[:240], Snippet([]string{"missing"}, text, SnippetLength))
		assert.Equal(t, "short", Snippet(nil, "short", SnippetLength))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		text := strings.Repeat("æ", 200) + "målet" + strings.Repeat("ø", 200)
		got := Snippet([]string{"målet"}, text, 30)
		runes := []rune(got)
		assert.Len(t, runes, 30)
		assert.Equal(t, "målet", string(runes[10:15]))
	})
}
