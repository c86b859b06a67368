package parser

import (
	"fmt"
	"os"
)

// Document is a cleaned documentation file
type Document struct {
	Path        string
	Title       string
	Body        string
	Format      FrontMatterFormat
	FrontMatter map[string]any
}

// Parser cleans markdown and MDX sources
type Parser struct{}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses a documentation file
func (p *Parser) ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(path, content), nil
}

// Parse cleans content and extracts its front matter. It never fails:
// undecodable front matter leaves the cleaned text as the body.
func (p *Parser) Parse(path string, content []byte) *Document {
	cleaned := StripShortcodes(StripDirectives(string(content)))
	doc := &Document{Path: path, Body: cleaned}

	format, raw, body, ok := SplitFrontMatter(cleaned)
	if !ok {
		return doc
	}
	data, err := decodeFrontMatter(format, raw)
	if err != nil {
		return doc
	}

	doc.Body = body
	doc.Format = format
	doc.FrontMatter = data
	if title, ok := data["title"].(string); ok {
		doc.Title = title
	}
	return doc
}
