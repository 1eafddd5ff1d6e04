package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/editor"
)

func newWriteCmd(a *app) *cobra.Command {
	var (
		title   string
		content string
		id      string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Create a note, or update one with --id",
		Long: `Write creates a new note from --title and --content.
With --id naming an existing note, that note is updated instead; with an unknown
--id, a new note is created under that id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := a.openClient(ctx)
			if err != nil {
				return err
			}

			opts := []editor.Option{
				editor.WithLogger(a.logger),
				editor.WithClock(a.now),
			}
			if id != "" {
				if err := core.ValidateID(id); err != nil {
					return err
				}
				view, err := a.loadNotes(ctx, client)
				if err != nil {
					return err
				}
				var target *core.Note
				for _, n := range view.Notes {
					if n.ID == id {
						target = &n
						break
					}
				}
				if target != nil {
					opts = append(opts, editor.WithNote(target))
				} else {
					opts = append(opts, editor.WithIDGenerator(func() string { return id }))
				}
			}

			var saved *core.Note
			opts = append(opts, editor.WithOnSave(func(n core.Note) { saved = &n }))

			ed := editor.New(client, opts...)
			defer ed.Close()

			if cmd.Flags().Changed("title") {
				ed.SetTitle(title)
			}
			if cmd.Flags().Changed("content") {
				ed.SetContent(content)
			}
			if !ed.CanSubmit() {
				return errors.New("a note needs a non-blank title and content")
			}

			if err := ed.Submit(ctx); err != nil {
				return err
			}
			if saved == nil {
				return errors.New("note was not saved")
			}

			verb := "created"
			if ed.State().Editing {
				verb = "updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note %s %s.\n", saved.ID, verb)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note content")
	cmd.Flags().StringVar(&id, "id", "", "id of the note to update")
	return cmd
}
