// Package chunker divides markdown documents into word-bounded chunks for
// embedding and search.
//
// # Basic Usage
//
//	c, err := chunker.New(chunker.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, chunk := range c.Chunk(doc.Body) {
//	    fmt.Printf("chunk %d: %d words\n", chunk.Ordinal, chunk.Words)
//	}
//
// # Chunking Strategy
//
// The text is scanned line by line:
//   - A heading line (one to six '#' followed by whitespace and text) closes
//     the current chunk and becomes the heading of the chunks that follow,
//     until the next heading.
//   - Other lines accumulate. Once the running word count reaches MaxWords
//     the chunk is closed immediately.
//   - The end of input closes the last chunk.
//
// Every chunk's text is its heading line, a newline and its body, trimmed.
// Chunks whose body is blank are dropped, so two consecutive headings
// produce nothing for the first one.
//
// MinWords is an advisory floor: heading and end-of-input flushes are
// authoritative, so a document shorter than MinWords still yields exactly
// one chunk.
package chunker
