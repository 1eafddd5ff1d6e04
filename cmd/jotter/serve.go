package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local store over HTTP",
		Long: `Serve exposes the configured fs or memory store to remote clients:
document writes, collection listings, a websocket live feed per collection,
/healthz and Prometheus /metrics. It stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store.Adapter == platform.AdapterRemote {
				return fmt.Errorf("serve needs a local store (fs or memory), not remote")
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTP.Addr = addr
			}

			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			backing, ok := store.(server.Store)
			if !ok {
				return fmt.Errorf("store %T cannot be served", store)
			}

			srv := server.New(backing, server.WithLogger(a.logger))
			return srv.Run(ctx, a.cfg.HTTP.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from JOTTER_HTTP_ADDR, :8080)")
	return cmd
}
