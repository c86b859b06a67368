package types

import (
	"fmt"
	"strings"
)

// Record is a persisted chunk: one JSON object per line of index.jsonl.
type Record struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	FilePath      string  `json:"filePath"`
	Title         string  `json:"title"`
	Text          string  `json:"text"`
	EmbeddingB64  string  `json:"embeddingB64"`
	EmbeddingDim  int     `json:"embeddingDim"`
	EmbeddingNorm float64 `json:"embeddingNorm"`
}

// LoadedRecord is a Record with its embedding decoded
type LoadedRecord struct {
	Record
	Embedding []float32 `json:"-"`
}

// ChunkID builds the record identifier for the ordinal-th chunk of a file
func ChunkID(filePath string, ordinal int) string {
	return fmt.Sprintf("%s#%d", filePath, ordinal)
}

// Validate checks the fields every record must carry
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrInvalidRecordID
	}
	if !strings.Contains(r.ID, "#") {
		return fmt.Errorf("%w: %q has no ordinal", ErrInvalidRecordID, r.ID)
	}
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyContent
	}
	if r.EmbeddingDim <= 0 {
		return ErrInvalidDimension
	}
	return nil
}
