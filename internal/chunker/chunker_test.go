package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunker(t *testing.T, min, max int) *Chunker {
	t.Helper()
	c, err := New(Config{MinWords: min, MaxWords: max})
	require.NoError(t, err)
	return c
}

func words(n int, word string) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ")
}

func TestNew(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 120, c.Config().MinWords)
	assert.Equal(t, 450, c.Config().MaxWords)

	_, err = New(Config{MinWords: 10, MaxWords: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{MinWords: 50, MaxWords: 10})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIsHeading(t *testing.T) {
	assert.True(t, IsHeading("# Title"))
	assert.True(t, IsHeading("###### Deep"))
	assert.False(t, IsHeading("####### Too deep"))
	assert.False(t, IsHeading("#hashtag"))
	assert.False(t, IsHeading("# "))
	assert.False(t, IsHeading("  # indented"))
}

func TestChunk_ShortDocumentSingleChunk(t *testing.T) {
	c := newChunker(t, 120, 450)
	chunks := c.Chunk("Just a few words here.\nAnd a second line.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Just a few words here.\nAnd a second line.", chunks[0].Text())
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 9, chunks[0].Words)
}

func TestChunk_HeadingFlushesAndPrefixes(t *testing.T) {
	c := newChunker(t, 120, 450)
	text := "Intro text.\n# Første\nAlpha beta.\n\n## Andre\nGamma delta."
	texts := c.Texts(text)
	assert.Equal(t, []string{
		"Intro text.",
		"# Første\nAlpha beta.",
		"## Andre\nGamma delta.",
	}, texts)
}

func TestChunk_ConsecutiveHeadingsDropEmptyBody(t *testing.T) {
	c := newChunker(t, 120, 450)
	texts := c.Texts("# One\n\n# Two\nBody")
	assert.Equal(t, []string{"# Two\nBody"}, texts)
}

func TestChunk_MaxWordsForcesFlush(t *testing.T) {
	c := newChunker(t, 2, 10)
	text := "# Section\n" + words(6, "a") + "\n" + words(6, "b") + "\n" + words(3, "c")
	chunks := c.Chunk(text)
	require.Len(t, chunks, 2)

	assert.Equal(t, 12, chunks[0].Words)
	assert.Equal(t, "# Section\n"+words(6, "a")+"\n"+words(6, "b"), chunks[0].Text())

	// The heading stays in effect after a size flush
	assert.Equal(t, "# Section", chunks[1].Heading)
	assert.Equal(t, "# Section\n"+words(3, "c"), chunks[1].Text())
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestChunk_BlankInput(t *testing.T) {
	c := newChunker(t, 120, 450)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("\n\n  \n"))
	assert.Empty(t, c.Chunk("# Only a heading"))
}

func TestChunk_CRLF(t *testing.T) {
	c := newChunker(t, 120, 450)
	assert.Equal(t, []string{"# T\nline"}, c.Texts("# T\r\nline\r\n"))
}

func TestChunk_ReconstructsProse(t *testing.T) {
	c := newChunker(t, 5, 25)

	var b strings.Builder
	var prose []string
	for s := 0; s < 4; s++ {
		fmt.Fprintf(&b, "## Section %d\n", s)
		for l := 0; l < 7; l++ {
			line := fmt.Sprintf("section %d line %d carries some words", s, l)
			prose = append(prose, line)
			b.WriteString(line + "\n")
			if l%3 == 0 {
				b.WriteString("\n")
			}
		}
	}

	var rebuilt []string
	for _, ch := range c.Chunk(b.String()) {
		assert.True(t, strings.HasPrefix(ch.Text(), ch.Heading))
		assert.LessOrEqual(t, ch.Words, 25+7, "chunk overshoots by at most one line")
		for _, line := range strings.Split(ch.Body, "\n") {
			if strings.TrimSpace(line) != "" {
				rebuilt = append(rebuilt, line)
			}
		}
	}

	assert.Equal(t, prose, rebuilt)
}
