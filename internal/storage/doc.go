// Package storage persists the search index as JSON lines and serves it back
// through an mtime-keyed in-memory cache.
//
// # Files
//
// Paths are relative to the project root:
//   - search/index/index.jsonl: one record per line, embeddings as base64
//     little-endian float32 with the dimension and L2 norm alongside
//   - search/index/meta.json: build provenance, never read when ranking
//   - search/search.config.json: ranking configuration
//
// # Writing
//
// The index builder owns writes. An IndexWriter truncates index.jsonl and
// appends each embedded batch as whole, synced lines:
//
//	w, err := storage.CreateIndex("search/index")
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	err = w.Append(records)
//
// # Reading
//
// A Store wraps an fs.FS so tests can substitute fstest.MapFS:
//
//	store := storage.NewStore(os.DirFS(root))
//	idx, err := store.LoadIndex(ctx)
//	cfg, err := store.LoadConfig(ctx)
//
// Each load stats its file. While the mtime is unchanged the parsed value is
// returned without reading the file again. Concurrent loads of a changed file
// share one parse.
package storage
