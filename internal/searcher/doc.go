// Package searcher ranks documentation chunks by fusing vector similarity
// with a lexical score.
//
// # Scoring
//
// For a query q with tokens T:
//
//	specificity = clamp01(sum of weights of the signals q has)
//	wLex        = lexWeightMin + (lexWeightMax - lexWeightMin) * specificity
//	wVec        = 1 - wLex
//	lex         = log1p(sum over T of textHits + 5 * titleHits)
//	score       = cosine(query, record) * wVec + lex * wLex
//
// The signals are: a digit, one of - _ / . :, a lower-to-upper camel case
// transition, a token at least longTokenLength long, and at least
// manyTokensCount tokens. Specific queries (error codes, identifiers) thus
// lean on exact term matches while vague ones lean on the embedding.
//
// Hits are counted case-insensitively on whole words. Records are sorted
// by score, ties keep index order, and each result carries a snippet
// around the first matching token.
//
// # Basic Usage
//
//	s := searcher.New(store, emb)
//	resp, err := s.Search(ctx, "autorisasjon", 10)
//	for _, r := range resp.Results {
//	    fmt.Printf("%.3f %s\n", r.Score, r.URL)
//	}
package searcher
