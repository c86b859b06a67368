// Package mcp implements the Model Context Protocol (MCP) server for docsearch.
//
// The MCP server exposes the documentation search engine to AI assistants:
//   - search_docs: Ranked hybrid search over the documentation index
//   - index_status: Build metadata and record count of the current index
//   - rebuild_index: Rebuild the index from the content tree
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Basic Usage
//
//	docsearch mcp
//
// # Tool: search_docs
//
//	Request:
//	{
//	  "name": "search_docs",
//	  "arguments": {"query": "autorisasjon", "k": 5}
//	}
//
//	Response:
//	{
//	  "query": "autorisasjon",
//	  "k": 5,
//	  "ranking": {"specificity": 0, "w_lex": 0.2, "w_vec": 0.8},
//	  "results": [
//	    {
//	      "id": "content/altinn-studio/authorization.nb.md#0",
//	      "url": "/nb/altinn-studio/authorization",
//	      "title": "Autorisasjon",
//	      "section": "Altinn-studio",
//	      "score": 0.8123,
//	      "snippet": "..."
//	    }
//	  ]
//	}
//
// # Tool: rebuild_index
//
// Runs a full build in the calling request. Only one build runs at a time;
// a second request while one is running fails with ErrorCodeIndexingInProgress.
// The query path picks up the new generation on its next request because
// the store reloads on file modification time.
//
// # Error Handling
//
// Tool failures are returned as MCPError values with JSON-RPC codes:
//
//	-32602  invalid parameters (k outside 1-50, negative max_files)
//	-32603  internal error (provider or storage failure)
//	-32002  indexing already in progress
//	-32003  no index built yet
//	-32004  empty query
package mcp
