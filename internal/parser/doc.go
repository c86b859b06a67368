// Package parser turns raw markdown and MDX documentation files into plain
// documents ready for chunking.
//
// Parsing happens in three steps, always in this order:
//
//  1. MDX module lines (import/export statements) are dropped.
//  2. Hugo shortcodes ({{< name >}} and {{% name %}}) are removed and runs of
//     three or more newlines are collapsed to a single blank line.
//  3. Front matter is split off and its title field extracted.
//
// # Basic Usage
//
//	p := parser.New()
//	doc, err := p.ParseFile("content/docs/install.en.md")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(doc.Title)
//
// # Front Matter
//
// YAML front matter is delimited by "---" lines and TOML front matter by
// "+++" lines; both must open on the first line of the document. A block that
// fails to decode is not an error: the document keeps its full text and an
// empty title, so a single malformed file never aborts an index build.
package parser
