package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/docsearch/internal/metrics"
	"github.com/dshills/docsearch/internal/server"
)

func serveCMD(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := a.cfg.Server
			if addr != "" {
				sc.Address = addr
			}

			m := metrics.New()
			srch, _, err := a.newSearcher(m)
			if err != nil {
				return err
			}

			srv := server.New(srch, server.Config{
				Address:         sc.Address,
				AllowedOrigins:  sc.AllowedOrigins,
				ReadTimeout:     sc.ReadTimeout,
				WriteTimeout:    sc.WriteTimeout,
				ShutdownTimeout: sc.ShutdownTimeout,
			}, m, a.logger)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.address, :8000)")
	return cmd
}
