package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/docsearch/internal/highlight"
	"github.com/dshills/docsearch/internal/searcher"
)

const (
	ansiBold  = "\x1b[1m"
	ansiMark  = "\x1b[33;1m"
	ansiReset = "\x1b[0m"
)

func searchCMD(a *app) *cobra.Command {
	var (
		k       int
		asJSON  bool
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query the index from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srch, store, err := a.newSearcher(nil)
			if err != nil {
				return err
			}
			q := strings.Join(args, " ")
			resp, err := srch.Search(cmd.Context(), q, searcher.NormalizeK(k))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			cfg, err := store.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			tokens := highlight.Tokens(q, cfg.Highlight.MinTokenLength)
			mark := func(s string) string {
				if noColor {
					return highlight.Highlight(s, tokens, "[", "]")
				}
				return highlight.Highlight(s, tokens, ansiMark, ansiReset)
			}

			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "Ingen treff.")
				return nil
			}
			fmt.Fprintf(out, "specificity %.2f  wLex %.2f  wVec %.2f\n\n",
				resp.Ranking.Specificity, resp.Ranking.WLex, resp.Ranking.WVec)
			for _, g := range highlight.GroupResults(resp.Results) {
				if noColor {
					fmt.Fprintf(out, "%s (%d)\n", g.Label, len(g.Results))
				} else {
					fmt.Fprintf(out, "%s%s (%d)%s\n", ansiBold, g.Label, len(g.Results), ansiReset)
				}
				for _, r := range g.Results {
					title := r.Title
					if title == "" {
						title = r.URL
					}
					fmt.Fprintf(out, "  %s  %.3f\n", mark(title), r.Score)
					fmt.Fprintf(out, "    %s\n", r.URL)
					if r.Snippet != "" {
						fmt.Fprintf(out, "    %s\n", mark(strings.Join(strings.Fields(r.Snippet), " ")))
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", searcher.DefaultK, "number of results (1-50)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw response as JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "mark matches with brackets instead of ANSI colour")
	return cmd
}
