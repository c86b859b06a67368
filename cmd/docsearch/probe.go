package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docsearch/internal/storage"
)

func probeCMD(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [text]",
		Short: "Embed one text to check provider credentials and dimension",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := "docsearch connectivity probe"
			if len(args) == 1 {
				text = args[0]
			}

			emb, err := a.newEmbedder(nil)
			if err != nil {
				return err
			}
			defer func() { _ = emb.Close() }()

			started := time.Now()
			v, err := emb.EmbedOne(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("probe %s: %w", emb.Provider(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider:  %s\n", emb.Provider())
			fmt.Fprintf(out, "Model:     %s\n", emb.Model())
			fmt.Fprintf(out, "Dimension: %d\n", len(v))
			fmt.Fprintf(out, "Norm:      %.4f\n", storage.L2Norm(v))
			fmt.Fprintf(out, "Latency:   %v\n", time.Since(started).Round(time.Millisecond))
			return nil
		},
	}
}
