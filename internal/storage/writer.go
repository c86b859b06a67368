package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dshills/docsearch/pkg/types"
)

// IndexWriter writes a fresh index generation into a directory
type IndexWriter struct {
	dir     string
	file    *os.File
	written int
}

// CreateIndex creates dir if needed and truncates dir/index.jsonl
func CreateIndex(dir string) (*IndexWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, IndexFileName), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create index file: %w", err)
	}
	return &IndexWriter{dir: dir, file: f}, nil
}

// Append writes one batch of records as whole lines and syncs the file, so
// an interrupted build leaves only complete records behind
func (w *IndexWriter) Append(records []types.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := EncodeRecords(w.file, records); err != nil {
		return fmt.Errorf("append records: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("sync index file: %w", err)
	}
	w.written += len(records)
	return nil
}

// Written returns the number of records appended so far
func (w *IndexWriter) Written() int {
	return w.written
}

// WriteMetadata replaces dir/meta.json
func (w *IndexWriter) WriteMetadata(meta *types.Metadata) error {
	return WriteMetadata(w.dir, meta)
}

// Close closes the index file
func (w *IndexWriter) Close() error {
	return w.file.Close()
}

// WriteMetadata writes meta.json into dir through a temp file and rename
func WriteMetadata(dir string, meta *types.Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, ".meta-*.json")
	if err != nil {
		return fmt.Errorf("create metadata: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, MetaFileName)); err != nil {
		return fmt.Errorf("replace metadata: %w", err)
	}
	return nil
}
