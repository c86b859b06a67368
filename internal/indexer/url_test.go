package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteURL(t *testing.T) {
	tests := []struct {
		rel       string
		canonical string
		pretty    string
	}{
		{"docs/intro.en.md", "/en/docs/intro", "/docs/intro/"},
		{"content/docs/intro.nb.mdx", "/nb/docs/intro", "/docs/intro/"},
		{"docs/guide/_index.en.md", "/en/docs/guide", "/docs/guide/"},
		{"docs/guide/index.md", "/docs/guide", "/docs/guide/"},
		{"docs/Guide/Index.EN.md", "/en/docs/Guide", "/docs/Guide/"},
		{"_index.en.md", "/en", "/"},
		{"index.md", "/", "/"},
		{"docs//double.md", "/docs/double", "/docs/double/"},
		{`docs\win\page.md`, "/docs/win/page", "/docs/win/page/"},
		{"docs/page.de.md", "/docs/page.de", "/docs/page.de/"},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.canonical, SiteURL(tt.rel, URLCanonical))
			assert.Equal(t, tt.pretty, SiteURL(tt.rel, URLPretty))
		})
	}
}

func TestSiteURLNonMarkdown(t *testing.T) {
	assert.Equal(t, "/docs/file.txt", SiteURL("docs/file.txt", URLCanonical))
}

func TestParseURLStyle(t *testing.T) {
	s, err := ParseURLStyle("")
	require.NoError(t, err)
	assert.Equal(t, URLCanonical, s)

	s, err = ParseURLStyle("Pretty")
	require.NoError(t, err)
	assert.Equal(t, URLPretty, s)

	_, err = ParseURLStyle("ugly")
	assert.Error(t, err)
}
