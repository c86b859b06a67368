package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/docsearch/internal/chunker"
	"github.com/dshills/docsearch/internal/embedder"
	"github.com/dshills/docsearch/internal/storage"
	"github.com/dshills/docsearch/pkg/types"
)

// mockEmbedder returns the local provider's vectors and can fail on a given call
type mockEmbedder struct {
	local  *embedder.LocalProvider
	calls  int
	failOn int
	sizes  []int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{local: embedder.NewLocalProvider(8)}
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	m.sizes = append(m.sizes, len(texts))
	if m.failOn > 0 && m.calls == m.failOn {
		return nil, &embedder.ProviderError{StatusCode: 400, Message: "bad input"}
	}
	return m.local.Embed(ctx, texts)
}

func (m *mockEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return m.local.EmbedOne(ctx, text)
}

func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock-model" }
func (m *mockEmbedder) Close() error     { return nil }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeBenchFile(b *testing.B, path, content string) {
	b.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}
}

// setupSite creates a small content tree and returns the project root
func setupSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	content := filepath.Join(root, "content")

	writeFile(t, filepath.Join(content, "docs", "intro.en.md"), `---
title: Introduction
---
import Foo from './foo'

# Getting started

Install the CLI and log in with your account.

## Configure

{{< note >}}Set the api key before running.{{< /note >}}
Edit the settings file to point at your environment.
`)
	writeFile(t, filepath.Join(content, "docs", "auth.nb.mdx"), `+++
title = "Autorisasjon"
+++
# Autorisasjon

Tilgangsstyring for apper og tjenester.
`)
	writeFile(t, filepath.Join(content, "docs", "_draft.md"), "# Draft\n\nNot published.\n")
	writeFile(t, filepath.Join(content, "themes", "x", "theme.md"), "# Theme\n\nignored\n")
	writeFile(t, filepath.Join(content, "docs", "notes.txt"), "not markdown")
	writeFile(t, filepath.Join(content, "empty.md"), "---\ntitle: Empty\n---\n\n")
	return root
}

func readIndexFile(t *testing.T, path string) []types.LoadedRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, _, err := storage.ReadIndex(f)
	require.NoError(t, err)
	return records
}

func readMeta(t *testing.T, path string) types.Metadata {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var meta types.Metadata
	require.NoError(t, json.Unmarshal(data, &meta))
	return meta
}

func TestBuild(t *testing.T) {
	root := setupSite(t)
	emb := newMockEmbedder()

	b, err := New(emb, Config{ProjectRoot: root, BatchSize: 2}, nil)
	require.NoError(t, err)

	stats, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesSeen)
	assert.Equal(t, 2, stats.FilesIndexed)
	assert.Equal(t, 3, stats.ChunksCreated)
	assert.Equal(t, 2, stats.Batches)
	assert.Equal(t, 8, stats.EmbeddingDim)
	assert.Equal(t, []int{2, 1}, emb.sizes)

	records := readIndexFile(t, stats.IndexPath)
	require.Len(t, records, 3)

	// auth.nb.mdx sorts before intro.en.md
	assert.Equal(t, "content/docs/auth.nb.mdx#0", records[0].ID)
	assert.Equal(t, "/nb/docs/auth", records[0].URL)
	assert.Equal(t, "Autorisasjon", records[0].Title)

	assert.Equal(t, "content/docs/intro.en.md#0", records[1].ID)
	assert.Equal(t, "/en/docs/intro", records[1].URL)
	assert.Equal(t, "Introduction", records[1].Title)
	assert.True(t, strings.HasPrefix(records[1].Text, "# Getting started"))
	assert.NotContains(t, records[1].Text, "import Foo")

	assert.Equal(t, "content/docs/intro.en.md#1", records[2].ID)
	assert.True(t, strings.HasPrefix(records[2].Text, "## Configure"))
	assert.NotContains(t, records[2].Text, "{{<")

	for _, r := range records {
		assert.Equal(t, 8, r.EmbeddingDim)
		assert.InDelta(t, storage.L2Norm(r.Embedding), r.EmbeddingNorm, 1e-6)
	}

	meta := readMeta(t, stats.MetadataPath)
	assert.Equal(t, stats.BuildID, meta.BuildID)
	assert.Equal(t, SourcePortal, meta.Source)
	assert.Equal(t, "content", meta.ContentRootPath)
	assert.Equal(t, "mock", meta.EmbeddingProvider)
	assert.Equal(t, 3, meta.TotalFiles)
	assert.Equal(t, 3, meta.TotalChunks)
	assert.Equal(t, 8, meta.EmbeddingDim)
	assert.Equal(t, types.Chunking{MinWords: 120, MaxWords: 450, BatchSize: 2}, meta.Chunking)
	assert.NotNil(t, meta.CompletedAt)
}

func TestBuildDeterministic(t *testing.T) {
	root := setupSite(t)

	type tuple struct{ id, url, title, text string }
	run := func() []tuple {
		b, err := New(newMockEmbedder(), Config{ProjectRoot: root}, nil)
		require.NoError(t, err)
		stats, err := b.Build(context.Background())
		require.NoError(t, err)

		var out []tuple
		for _, r := range readIndexFile(t, stats.IndexPath) {
			out = append(out, tuple{r.ID, r.URL, r.Title, r.Text})
		}
		return out
	}

	first := run()
	second := run()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "rebuild should replace, not append")
}

func TestBuildPartialFailure(t *testing.T) {
	root := setupSite(t)
	emb := newMockEmbedder()
	emb.failOn = 2

	b, err := New(emb, Config{ProjectRoot: root, BatchSize: 2}, nil)
	require.NoError(t, err)

	stats, err := b.Build(context.Background())
	require.Error(t, err)
	var perr *embedder.ProviderError
	assert.True(t, errors.As(err, &perr))

	// first batch stays readable
	records := readIndexFile(t, stats.IndexPath)
	assert.Len(t, records, 2)

	meta := readMeta(t, stats.MetadataPath)
	assert.Nil(t, meta.CompletedAt)
	assert.Equal(t, 0, meta.TotalChunks)
}

func TestBuildMaxFiles(t *testing.T) {
	root := setupSite(t)

	b, err := New(newMockEmbedder(), Config{ProjectRoot: root, MaxFiles: 1}, nil)
	require.NoError(t, err)

	stats, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesSeen)

	records := readIndexFile(t, stats.IndexPath)
	require.Len(t, records, 1)
	assert.Equal(t, "content/docs/auth.nb.mdx#0", records[0].ID)
}

func TestBuildSmallChunks(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "content", "page.md"),
		"# Title\n\none two three\nfour five six\nseven eight\n")

	b, err := New(newMockEmbedder(), Config{
		ProjectRoot: root,
		Chunking:    chunker.Config{MinWords: 1, MaxWords: 3},
	}, nil)
	require.NoError(t, err)

	stats, err := b.Build(context.Background())
	require.NoError(t, err)

	records := readIndexFile(t, stats.IndexPath)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, types.ChunkID("content/page.md", i), r.ID)
		assert.True(t, strings.HasPrefix(r.Text, "# Title\n"))
		assert.Equal(t, "/page", r.URL)
	}
}

func TestBuildCancelled(t *testing.T) {
	root := setupSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := New(newMockEmbedder(), Config{ProjectRoot: root}, nil)
	require.NoError(t, err)

	_, err = b.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildUsesClock(t *testing.T) {
	root := setupSite(t)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	b, err := New(newMockEmbedder(), Config{ProjectRoot: root}, nil, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	stats, err := b.Build(context.Background())
	require.NoError(t, err)

	meta := readMeta(t, stats.MetadataPath)
	assert.True(t, fixed.Equal(meta.CreatedAt))
	require.NotNil(t, meta.CompletedAt)
	assert.True(t, fixed.Equal(*meta.CompletedAt))
}

func TestBuildProgress(t *testing.T) {
	root := setupSite(t)
	var seen []Progress

	b, err := New(newMockEmbedder(), Config{ProjectRoot: root, BatchSize: 1}, nil,
		WithProgress(func(p Progress) { seen = append(seen, p) }))
	require.NoError(t, err)

	_, err = b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, 3, seen[2].ChunksWritten)
	assert.Equal(t, 3, seen[2].Batches)
	assert.Equal(t, 3, seen[2].FilesTotal)
}

func TestConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := Config{ProjectRoot: "/site"}
		c.Normalize()
		assert.Equal(t, filepath.Join("/site", "content"), c.ContentRoot)
		assert.Equal(t, filepath.Join("/site", "search", "index"), c.OutDir)
		assert.Equal(t, SourcePortal, c.Source)
		assert.Equal(t, URLCanonical, c.URLStyle)
		assert.Equal(t, embedder.DefaultBatchSize, c.BatchSize)
		assert.Equal(t, chunker.DefaultConfig(), c.Chunking)
	})

	t.Run("docs repo", func(t *testing.T) {
		c := Config{ProjectRoot: "/site", DocsRepoPath: "/site/.cache/docs"}
		c.Normalize()
		assert.Equal(t, filepath.Join("/site/.cache/docs", "content"), c.ContentRoot)
		assert.Equal(t, DefaultRepoSlug, c.Source)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := New(newMockEmbedder(), Config{MaxFiles: -1}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = New(newMockEmbedder(), Config{URLStyle: "weird"}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		_, err = New(newMockEmbedder(), Config{Chunking: chunker.Config{MinWords: 10, MaxWords: 5}}, nil)
		assert.ErrorIs(t, err, chunker.ErrInvalidConfig)

		_, err = New(nil, Config{}, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{
		"b.md",
		"a/z.MDX",
		"a/y.md",
		"_hidden/x.md",
		"_skip.md",
		".git/config.md",
		"node_modules/pkg/readme.md",
		"static/img.md",
		"custom/c.md",
		"readme.txt",
	} {
		writeFile(t, filepath.Join(root, p), "# x\n")
	}

	files, err := Discover(root, append(DefaultIgnoreDirs, "custom"))
	require.NoError(t, err)

	var rel []string
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"a/y.md", "a/z.MDX", "b.md"}, rel)

	_, err = Discover(filepath.Join(root, "missing"), nil)
	assert.Error(t, err)
}

func TestIndexLock(t *testing.T) {
	var l IndexLock
	assert.False(t, l.Held())
	assert.True(t, l.TryAcquire())
	assert.True(t, l.Held())
	assert.False(t, l.TryAcquire())
	l.Release()
	assert.False(t, l.Held())
	assert.True(t, l.TryAcquire())
}
