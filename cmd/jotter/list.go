package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notelist"
)

func newListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.openClient(ctx)
			if err != nil {
				return err
			}

			view, err := a.loadNotes(ctx, client)
			if err != nil {
				return err
			}

			if asJSON {
				out := view.Notes
				if out == nil {
					out = []core.Note{}
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(out)
			}
			return notelist.RenderList(cmd.OutOrStdout(), view, a.now(), nil)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
