package storage

import (
	"errors"
	"time"

	"github.com/dshills/docsearch/pkg/types"
)

// Locations relative to the project root
const (
	IndexDir   = "search/index"
	IndexPath  = "search/index/index.jsonl"
	MetaPath   = "search/index/meta.json"
	ConfigPath = "search/search.config.json"

	IndexFileName = "index.jsonl"
	MetaFileName  = "meta.json"
)

var (
	// ErrNotFound is returned when an index or config file does not exist
	ErrNotFound = errors.New("not found")

	// ErrCorruptIndex is returned for records that cannot be decoded
	ErrCorruptIndex = errors.New("corrupt index")
)

// Index is one parsed generation of index.jsonl. It is shared read-only
// between concurrent queries.
type Index struct {
	Records   []types.LoadedRecord
	Dimension int
	ModTime   time.Time
}

// Len returns the number of records
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.Records)
}
