package main

import (
	"encoding/json"
	"strings"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
)

type statusReport struct {
	Version    string `json:"version"`
	Collection string `json:"collection"`
	URI        string `json:"uri"`
	Component  string `json:"component,omitempty"`
	State      any    `json:"state,omitempty"`
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved store and its internal state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			report := statusReport{
				Version:    strings.TrimSpace(jotter.Version),
				Collection: a.cfg.Store.Collection,
				URI:        a.cfg.URI(),
			}
			if c, ok := store.(introspection.Component); ok {
				report.Component = c.ComponentType()
			}
			if in, ok := store.(introspection.Introspectable); ok {
				report.State = in.State()
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		},
	}
}
