package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/docsearch/pkg/types"
)

// maxLineSize bounds a single index line; records carry a base64 vector and
// up to a few kilobytes of text
const maxLineSize = 64 << 20

// NewRecord builds a persisted record, encoding the vector and its norm
func NewRecord(id, url, filePath, title, text string, vector []float32) types.Record {
	return types.Record{
		ID:            id,
		URL:           url,
		FilePath:      filePath,
		Title:         title,
		Text:          text,
		EmbeddingB64:  EncodeVector(vector),
		EmbeddingDim:  len(vector),
		EmbeddingNorm: L2Norm(vector),
	}
}

// DecodeRecord validates rec, decodes its embedding and checks it against
// the declared dimension
func DecodeRecord(rec types.Record) (types.LoadedRecord, error) {
	if err := rec.Validate(); err != nil {
		return types.LoadedRecord{}, fmt.Errorf("%w: record %q: %w", ErrCorruptIndex, rec.ID, err)
	}
	vector, err := DecodeVector(rec.EmbeddingB64)
	if err != nil {
		return types.LoadedRecord{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	if len(vector) != rec.EmbeddingDim {
		return types.LoadedRecord{}, fmt.Errorf("%w: record %s declares %d dimensions, has %d",
			ErrCorruptIndex, rec.ID, rec.EmbeddingDim, len(vector))
	}
	return types.LoadedRecord{Record: rec, Embedding: vector}, nil
}

// ReadIndex parses a JSON-lines index. Blank lines are skipped. All records
// must share one dimension.
func ReadIndex(r io.Reader) ([]types.LoadedRecord, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records []types.LoadedRecord
		dim     int
		line    int
	)
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec types.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, 0, fmt.Errorf("%w: line %d: %v", ErrCorruptIndex, line, err)
		}
		loaded, err := DecodeRecord(rec)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
		if dim == 0 {
			dim = loaded.EmbeddingDim
		} else if loaded.EmbeddingDim != dim {
			return nil, 0, fmt.Errorf("%w: line %d has dimension %d, index has %d",
				ErrCorruptIndex, line, loaded.EmbeddingDim, dim)
		}
		records = append(records, loaded)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read index: %w", err)
	}
	return records, dim, nil
}

// EncodeRecords writes records as JSON lines
func EncodeRecords(w io.Writer, records []types.Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("encode record %s: %w", records[i].ID, err)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
