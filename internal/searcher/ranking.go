package searcher

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/docsearch/pkg/types"
)

const (
	// SnippetLength is the maximum snippet length in characters
	SnippetLength = 240

	// TitleWeight multiplies whole-word hits in the title
	TitleWeight = 5

	minTokenLength = 2
)

// Tokenize lowercases q and splits it on runs of characters that are
// neither letters nor numbers, keeping tokens of at least two characters
func Tokenize(q string) []string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Signals reports which specificity features a query has
type Signals struct {
	HasDigit       bool
	HasSpecialChar bool
	HasCamelCase   bool
	HasLongToken   bool
	ManyTokens     bool
}

// DetectSignals inspects the raw query and its tokens
func DetectSignals(q string, tokens []string, th types.Thresholds) Signals {
	var s Signals
	var prev rune
	for _, r := range q {
		switch {
		case r >= '0' && r <= '9':
			s.HasDigit = true
		case strings.ContainsRune("-_/.:", r):
			s.HasSpecialChar = true
		case r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z':
			s.HasCamelCase = true
		}
		prev = r
	}

	maxLen := 0
	for _, t := range tokens {
		maxLen = max(maxLen, utf8.RuneCountInString(t))
	}
	s.HasLongToken = maxLen >= th.LongTokenLength
	s.ManyTokens = len(tokens) >= th.ManyTokensCount
	return s
}

// Specificity sums the configured weight of each present signal, clamped
// to [0, 1]
func Specificity(q string, tokens []string, cfg types.Ranking) float64 {
	s := DetectSignals(q, tokens, cfg.Thresholds)
	var score float64
	if s.HasDigit {
		score += cfg.Signals.HasDigit
	}
	if s.HasSpecialChar {
		score += cfg.Signals.HasSpecialChar
	}
	if s.HasCamelCase {
		score += cfg.Signals.HasCamelCase
	}
	if s.HasLongToken {
		score += cfg.Signals.HasLongToken
	}
	if s.ManyTokens {
		score += cfg.Signals.ManyTokens
	}
	return clamp01(score)
}

// FusionWeights interpolates the lexical weight between lexWeightMin and
// lexWeightMax by specificity; the vector weight is its complement
func FusionWeights(specificity float64, cfg types.Ranking) (wLex, wVec float64) {
	wLex = cfg.LexWeightMin + (cfg.LexWeightMax-cfg.LexWeightMin)*specificity
	return wLex, 1 - wLex
}

// LexicalScore counts case-insensitive whole-word hits of every token in
// text and, weighted by TitleWeight, in title, then compresses with log1p
func LexicalScore(tokens []string, text, title string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hay := strings.ToLower(text)
	ttl := strings.ToLower(title)

	hits := 0
	for _, t := range tokens {
		hits += countWholeWord(hay, t) + countWholeWord(ttl, t)*TitleWeight
	}
	return math.Log1p(float64(hits))
}

// countWholeWord counts non-overlapping occurrences of word in hay that are
// not adjacent to another word character
func countWholeWord(hay, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for i := 0; i < len(hay); {
		j := strings.Index(hay[i:], word)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(word)
		if !wordBefore(hay, start) && !wordAfter(hay, end) {
			count++
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(hay[start:])
		i = start + size
	}
	return count
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return isWordRune(r)
}

func wordAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return isWordRune(r)
}

// Snippet returns up to maxLen characters of text around the first query
// token (in query order) that occurs in it, starting maxLen/3 characters
// before the hit. Without a hit it returns the head of the text.
func Snippet(tokens []string, text string, maxLen int) string {
	runes := []rune(text)
	head := func() string {
		return string(runes[:min(len(runes), maxLen)])
	}
	if len(tokens) == 0 {
		return head()
	}

	// Rune-wise lowering keeps rune offsets aligned with text
	lower := strings.Map(unicode.ToLower, text)
	idx := -1
	for _, t := range tokens {
		if b := strings.Index(lower, t); b >= 0 {
			idx = utf8.RuneCountInString(lower[:b])
			break
		}
	}
	if idx < 0 {
		return head()
	}

	start := max(0, idx-maxLen/3)
	end := min(len(runes), start+maxLen)
	return string(runes[start:end])
}

func clamp01(n float64) float64 {
	return math.Max(0, math.Min(1, n))
}
