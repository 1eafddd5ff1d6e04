package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notelist"
	"github.com/aretw0/jotter/pkg/notes"
)

// app carries what every command shares: global flags, resolved config and logger.
type app struct {
	store      string
	path       string
	remote     string
	collection string
	verbose    bool
	pretty     bool

	cfg    platform.Config
	logger *slog.Logger
	now    func() time.Time
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "jotter",
		Short: "A small note-taking tool with live updates",
		Long: `Jotter keeps notes (title, content, last-updated time) in a document store
and keeps every open view in sync with it.

The store is a directory of Markdown files by default. It can also live in memory,
or on a jotter server started with "jotter serve" and reached with --remote.

Environment variables (flags win):
` + platform.ConfigUsage(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.store, "store", "", "storage adapter: fs, memory or remote")
	pf.StringVar(&a.path, "path", "", "root directory of the fs store")
	pf.StringVar(&a.remote, "remote", "", "store server URL (implies --store remote)")
	pf.StringVar(&a.collection, "collection", "", "collection the notes live in")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&a.pretty, "pretty", false, "human-friendly colored logs")

	rootCmd.AddCommand(
		newServeCmd(a),
		newWriteCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newWatchCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// setup resolves the configuration: environment first, then flags.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := platform.LoadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("remote") {
		cfg.Store.RemoteURL = a.remote
		cfg.Store.Adapter = platform.AdapterRemote
	}
	if flags.Changed("store") {
		cfg.Store.Adapter = a.store
	}
	if flags.Changed("path") {
		cfg.Store.Path = a.path
	}
	if flags.Changed("collection") {
		cfg.Store.Collection = a.collection
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if a.pretty {
		cfg.Log.Pretty = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := platform.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Pretty)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) options() []platform.Option {
	return append(a.cfg.Options(), platform.WithLogger(a.logger))
}

func (a *app) openStore(ctx context.Context) (core.DocumentStore, error) {
	return platform.OpenStore(ctx, a.cfg.URI(), a.options()...)
}

func (a *app) openClient(ctx context.Context) (*notes.Client, error) {
	return platform.New(ctx, a.cfg.URI(), a.options()...)
}

// loadNotes mounts a list, waits for its first delivery and unmounts it.
func (a *app) loadNotes(ctx context.Context, client *notes.Client) (notelist.View, error) {
	updated := make(chan struct{}, 1)
	list := notelist.NewList(client, notelist.WithOnUpdate(func() {
		select {
		case updated <- struct{}{}:
		default:
		}
	}))
	list.Mount(ctx)
	defer list.Unmount()

	for {
		if v := list.View(); v.Status != notelist.StatusLoading {
			if v.Status == notelist.StatusError {
				return v, fmt.Errorf("load notes: %s", v.Error)
			}
			return v, nil
		}
		select {
		case <-ctx.Done():
			return notelist.View{}, ctx.Err()
		case <-updated:
		}
	}
}
