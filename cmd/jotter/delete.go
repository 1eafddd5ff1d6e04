package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notelist"
)

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Long:  `Delete removes a note after asking for confirmation. Deleting an unknown id succeeds.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := core.ValidateID(id); err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := a.openClient(ctx)
			if err != nil {
				return err
			}

			target := core.Note{ID: id}
			if !yes {
				view, err := a.loadNotes(ctx, client)
				if err != nil {
					return err
				}
				for _, n := range view.Notes {
					if n.ID == id {
						target = n
						break
					}
				}
			}

			confirm := func(core.Note) bool { return true }
			if !yes {
				confirm = prompter(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			item := notelist.NewItem(target, client, notelist.WithConfirm(confirm))
			if err := item.Delete(ctx); err != nil {
				return err
			}

			if item.State().Status != notelist.ItemDeleted {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note %s deleted.\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// prompter asks on out and reads a yes/no answer from in. Anything but y/yes declines.
func prompter(in io.Reader, out io.Writer) notelist.Confirmer {
	reader := bufio.NewReader(in)
	return func(n core.Note) bool {
		label := n.ID
		if n.Title != "" {
			label = fmt.Sprintf("%q (%s)", n.Title, n.ID)
		}
		fmt.Fprintf(out, "Delete note %s? [y/N] ", label)

		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
