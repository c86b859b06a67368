// Package indexer builds the documentation search index.
//
// A build walks a content tree, cleans and chunks every markdown page,
// embeds the chunks in batches and appends them to index.jsonl. Each build
// is a wholesale rebuild: the previous generation is truncated at start.
//
// # Basic Usage
//
//	b, err := indexer.New(emb, indexer.Config{
//	    ProjectRoot: ".",
//	    MaxFiles:    0,
//	}, slog.Default())
//
//	stats, err := b.Build(ctx)
//	fmt.Printf("Indexed %d chunks from %d files in %v\n",
//	    stats.ChunksCreated, stats.FilesSeen, stats.Duration)
//
// # Pipeline
//
//  1. Discovery: .md and .mdx files in lexical order, skipping hidden,
//     underscore-prefixed and site-generator directories
//  2. Parse: strip import/export lines and shortcodes, read the title
//     from YAML or TOML front matter
//  3. Chunk: heading-aware word windows (see package chunker)
//  4. Embed: chunks are queued across files and sent BatchSize at a time
//  5. Write: each batch is appended and synced before the next is embedded
//
// A failed batch aborts the build. Everything appended before it remains
// readable, so a partial index can still serve queries.
//
// # URLs
//
// SiteURL maps a content-relative path to the page URL:
//
//	docs/intro.en.md        -> /en/docs/intro      (URLCanonical)
//	docs/guide/_index.nb.md -> /nb/docs/guide
//	docs/intro.en.md        -> /docs/intro/        (URLPretty)
//
// # Metadata
//
// meta.json is written before the first batch and rewritten with totals and
// completedAt when the build finishes. A meta.json without completedAt
// marks an interrupted build.
//
// # Concurrency
//
// A Builder runs files sequentially with one embedding call in flight.
// Callers that may trigger overlapping builds guard them with IndexLock.
package indexer
