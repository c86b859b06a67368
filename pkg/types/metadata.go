package types

import "time"

// Chunking records the chunker and batch settings used for a build
type Chunking struct {
	MinWords  int `json:"minWords"`
	MaxWords  int `json:"maxWords"`
	BatchSize int `json:"batchSize"`
}

// Metadata is the provenance written next to the index as meta.json.
// It is never consulted when ranking.
type Metadata struct {
	BuildID             string     `json:"buildId"`
	CreatedAt           time.Time  `json:"createdAt"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
	Source              string     `json:"source"`
	ContentRootPath     string     `json:"contentRootPath"`
	DocsRepoPath        string     `json:"docsRepoPath,omitempty"`
	DocsRepoCommit      string     `json:"docsRepoCommit,omitempty"`
	PortalCommit        string     `json:"portalCommit,omitempty"`
	EmbeddingProvider   string     `json:"embeddingProvider"`
	EmbeddingDeployment string     `json:"embeddingDeployment,omitempty"`
	APIBase             string     `json:"apiBase,omitempty"`
	APIVersion          string     `json:"apiVersion,omitempty"`
	EmbeddingDim        int        `json:"embeddingDim,omitempty"`
	Chunking            Chunking   `json:"chunking"`
	TotalFiles          int        `json:"totalFiles"`
	TotalChunks         int        `json:"totalChunks"`
}
