package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/docsearch/internal/mcp"
)

func mcpCMD(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve search tools to MCP clients over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			srch, store, err := a.newSearcher(nil)
			if err != nil {
				return err
			}
			emb, err := a.newEmbedder(nil)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			srv, err := mcp.NewServer(mcp.Deps{
				Searcher: srch,
				Store:    store,
				NewBuilder: func(maxFiles int) (mcp.BuildRunner, error) {
					return a.newBuilder(emb, maxFiles)
				},
				Logger: a.logger,
			}, version)
			if err != nil {
				return err
			}

			a.logger.Info("MCP server ready, listening on stdio", "version", version)
			if err := srv.Serve(ctx); err != nil {
				return err
			}
			a.logger.Info("MCP server stopped")
			return nil
		},
	}
}
