package types

// SearchResult is a single ranked chunk
type SearchResult struct {
	ID       string  `json:"id"`
	URL      string  `json:"url"`
	FilePath string  `json:"filePath"`
	Title    string  `json:"title"`
	Score    float64 `json:"score"`
	VecScore float64 `json:"vecScore"`
	LexScore float64 `json:"lexScore"`
	Snippet  string  `json:"snippet"`
}

// RankingInfo reports the weights chosen for a query
type RankingInfo struct {
	Specificity float64 `json:"specificity"`
	WLex        float64 `json:"wLex"`
	WVec        float64 `json:"wVec"`
}

// SearchResponse is the body returned by the query endpoint
type SearchResponse struct {
	Query   string         `json:"q"`
	K       int            `json:"k"`
	Ranking RankingInfo    `json:"ranking"`
	Results []SearchResult `json:"results"`
}
