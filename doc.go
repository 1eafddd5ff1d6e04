// Package jotter is the composition root of the jotter note-taking system.
//
// It wires the note logic (pkg/notes, pkg/editor, pkg/notelist) to a
// document store adapter chosen at runtime:
//
//   - fs: one file per note under <root>/<collection>/, Markdown with YAML
//     frontmatter by default, live updates through fsnotify.
//   - memory: process-local, for tests and demos.
//   - remote: a jotter store server reached over HTTP, live updates over a websocket.
//
// Usage:
//
//	client, err := jotter.New(ctx, "./notes-root", jotter.WithCollection("notes"))
//	if err != nil {
//		return err
//	}
//
//	stop := client.Subscribe(ctx, func(ns jotter.Notes) {
//		for _, n := range ns.Sorted() {
//			fmt.Println(n.Title)
//		}
//	}, nil)
//	defer stop()
//
//	err = client.Save(ctx, jotter.NewNote(time.Now()))
package jotter
