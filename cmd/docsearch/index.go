package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docsearch/internal/indexer"
)

func indexCMD(a *app) *cobra.Command {
	var (
		contentRoot string
		outDir      string
		repo        string
		clone       bool
		maxFiles    int
		urlStyle    string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the search index from the content tree",
		Long: `Build the search index from the content tree.

By default the portal's own content/ directory is indexed. With --repo or
--clone the upstream docs repository is indexed instead; --clone checks it
out (or fast-forwards an existing checkout) first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ic := &a.cfg.Index
			if contentRoot != "" {
				ic.ContentRoot = contentRoot
			}
			if outDir != "" {
				ic.OutDir = outDir
			}
			if urlStyle != "" {
				if _, err := indexer.ParseURLStyle(urlStyle); err != nil {
					return err
				}
				ic.URLStyle = urlStyle
			}
			if repo != "" {
				ic.DocsRepoPath = repo
			}
			if clone {
				if ic.DocsRepoPath == "" {
					ic.DocsRepoPath = a.cfg.DefaultDocsRepoPath()
				}
				a.logger.Info("syncing docs repository", "remote", ic.RepoURL, "path", ic.DocsRepoPath)
				if err := indexer.SyncRepo(ctx, ic.RepoURL, ic.DocsRepoPath, os.Stderr); err != nil {
					return err
				}
			}

			emb, err := a.newEmbedder(nil)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			b, err := a.newBuilder(emb, maxFiles)
			if err != nil {
				return err
			}
			stats, err := b.Build(ctx)
			if err != nil {
				if stats != nil && stats.ChunksCreated > 0 {
					a.logger.Warn("build aborted, partial index kept",
						"chunks_written", stats.ChunksCreated, "index", stats.IndexPath)
				}
				return fmt.Errorf("index build: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d chunks from %d files (%d with content) in %v\n",
				stats.ChunksCreated, stats.FilesSeen, stats.FilesIndexed, stats.Duration.Round(time.Millisecond))
			fmt.Fprintf(out, "Index:    %s\n", stats.IndexPath)
			fmt.Fprintf(out, "Metadata: %s\n", stats.MetadataPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&contentRoot, "content-root", "", "directory to index (default <project>/content or <repo>/content)")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "output directory (default <project>/search/index)")
	cmd.Flags().StringVar(&repo, "repo", "", "path to a checkout of the upstream docs repository")
	cmd.Flags().BoolVar(&clone, "clone", false, "clone or fast-forward the upstream docs repository before indexing")
	cmd.Flags().IntVar(&maxFiles, "max-files", 0, "index at most this many files (0 for all)")
	cmd.Flags().StringVar(&urlStyle, "url-style", "", "canonical or pretty")
	return cmd
}
