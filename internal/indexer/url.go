package indexer

import (
	"fmt"
	"regexp"
	"strings"
)

// URLStyle selects how file paths map to site URLs
type URLStyle string

const (
	// URLCanonical prefixes the language and drops trailing slashes:
	// docs/intro.en.md -> /en/docs/intro
	URLCanonical URLStyle = "canonical"

	// URLPretty emits trailing-slash URLs without a language prefix:
	// docs/intro.en.md -> /docs/intro/
	URLPretty URLStyle = "pretty"
)

var (
	pageRe     = regexp.MustCompile(`(?i)^(.*?)(?:\.(en|nb))?\.(md|mdx)$`)
	indexRe    = regexp.MustCompile(`(?i)(?:^|/)_?index$`)
	slashRunRe = regexp.MustCompile(`/+`)
)

// ParseURLStyle validates a style name, canonical when empty
func ParseURLStyle(s string) (URLStyle, error) {
	switch URLStyle(strings.ToLower(s)) {
	case "", URLCanonical:
		return URLCanonical, nil
	case URLPretty:
		return URLPretty, nil
	default:
		return "", fmt.Errorf("unknown url style %q", s)
	}
}

// SiteURL derives the page URL of a file from its path relative to the
// content root. A leading content/ segment is ignored.
func SiteURL(rel string, style URLStyle) string {
	rel = strings.ReplaceAll(rel, `\`, "/")
	rel = strings.TrimPrefix(rel, "content/")

	m := pageRe.FindStringSubmatch(rel)
	if m == nil {
		return "/" + strings.TrimLeft(rel, "/")
	}
	base := indexRe.ReplaceAllString(m[1], "")
	lang := strings.ToLower(m[2])
	clean := strings.Trim(slashRunRe.ReplaceAllString(base, "/"), "/")

	if style == URLPretty {
		if clean == "" {
			return "/"
		}
		return "/" + clean + "/"
	}

	var url string
	if lang != "" {
		url = "/" + lang + "/" + clean
	} else {
		url = "/" + clean
	}
	url = strings.TrimRight(url, "/")
	if url == "" {
		return "/"
	}
	return url
}
