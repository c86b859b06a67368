// Package types provides shared type definitions for docsearch.
//
// This package defines the data model shared by the indexer, the index store,
// the ranking engine and the front ends (HTTP, MCP and CLI).
//
// # Core Types
//
// Record is one line of the index file: a chunk of documentation text with
// its embedding serialized as base64 little-endian float32:
//
//	rec := types.Record{
//	    ID:       "content/docs/install.en.md#0",
//	    URL:      "/en/docs/install",
//	    FilePath: "content/docs/install.en.md",
//	    Title:    "Install",
//	    Text:     "## Requirements\n...",
//	}
//
// LoadedRecord is the in-memory form produced by the index store, carrying
// the decoded vector next to the stored norm.
//
// # Ranking Configuration
//
// RankingConfig mirrors search/search.config.json. Decode it on top of
// DefaultRankingConfig so that only absent fields take defaults:
//
//	cfg := types.DefaultRankingConfig()
//	_ = json.Unmarshal(data, &cfg)
//
// # Search Results
//
// SearchResponse is the wire shape of GET /api/search. Scores are not
// normalized; the fused score is vecScore*wVec + lexScore*wLex.
package types
