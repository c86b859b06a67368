package parser

import (
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FrontMatterFormat identifies the front matter syntax of a document
type FrontMatterFormat string

const (
	FormatNone FrontMatterFormat = ""
	FormatYAML FrontMatterFormat = "yaml"
	FormatTOML FrontMatterFormat = "toml"
)

var delimiters = map[string]FrontMatterFormat{
	"---": FormatYAML,
	"+++": FormatTOML,
}

// SplitFrontMatter separates a leading front matter block from the body.
// ok is false when the text does not open with a closed block.
func SplitFrontMatter(text string) (format FrontMatterFormat, raw, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return FormatNone, "", text, false
	}
	first = strings.TrimRight(first, " \t")
	format, known := delimiters[first]
	if !known {
		return FormatNone, "", text, false
	}

	offset := 0
	for offset <= len(rest) {
		line, tail, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, " \t") == first {
			raw = rest[:offset]
			if more {
				body = tail
			}
			return format, raw, body, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return FormatNone, "", text, false
}

// decodeFrontMatter decodes a raw block into a generic map
func decodeFrontMatter(format FrontMatterFormat, raw string) (map[string]any, error) {
	data := make(map[string]any)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
			return nil, err
		}
	case FormatTOML:
		if _, err := toml.Decode(raw, &data); err != nil {
			return nil, err
		}
	}
	return data, nil
}
