package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/remote"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notes"
)

// OpenStore builds and initializes the configured DocumentStore.
// The uri is adapter-specific: a directory for "fs", a base URL for "remote",
// ignored for "memory".
func OpenStore(ctx context.Context, uri string, opts ...Option) (core.DocumentStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return openStore(ctx, uri, o)
}

// New opens the configured store and wraps it in a note client.
func New(ctx context.Context, uri string, opts ...Option) (*notes.Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	store, err := openStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	clientOpts := []notes.Option{notes.WithCollection(o.collection)}
	if o.logger != nil {
		clientOpts = append(clientOpts, notes.WithLogger(o.logger))
	}
	return notes.New(store, clientOpts...), nil
}

func openStore(ctx context.Context, uri string, o *options) (core.DocumentStore, error) {
	if o.store != nil {
		return o.store, nil
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	switch o.adapter {
	case AdapterFS:
		if uri == "" {
			uri = "."
		}
		store := fs.New(fs.Config{
			Path:         uri,
			Extension:    o.extension,
			MustExist:    o.mustExist,
			ReadOnly:     o.readOnly,
			Strict:       o.strict,
			Logger:       logger,
			ErrorHandler: o.errorHandler,
		})
		if err := store.Initialize(ctx); err != nil {
			return nil, err
		}
		logger.Debug("fs store opened", "path", uri, "extension", o.extension, "read_only", o.readOnly)
		return store, nil

	case AdapterMemory:
		return memory.New(memory.WithLogger(logger)), nil

	case AdapterRemote:
		if uri == "" {
			return nil, fmt.Errorf("remote adapter requires a server url")
		}
		remoteOpts := []remote.Option{remote.WithLogger(logger)}
		if o.httpClient != nil {
			remoteOpts = append(remoteOpts, remote.WithHTTPClient(o.httpClient))
		}
		client, err := remote.New(uri, remoteOpts...)
		if err != nil {
			return nil, err
		}
		logger.Debug("remote store configured", "url", uri)
		return client, nil

	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}
