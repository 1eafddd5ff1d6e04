package jotter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/jotter/internal/platform"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notes"
)

// --- Types ---

// Note is a public alias for the note entity.
type Note = core.Note

// Notes is a public alias for the ID-keyed note mapping.
type Notes = core.Notes

// Client is a public alias for the note store client.
type Client = notes.Client

// DocumentStore is a public alias for the storage contract.
type DocumentStore = core.DocumentStore

// Config is a public alias for the environment configuration.
type Config = platform.Config

// NewNote returns a blank note with a fresh ID stamped at now.
func NewNote(now time.Time) Note {
	return core.NewNote(now)
}

// --- Configuration ---

// Option defines a functional option for configuring jotter.
type Option = platform.Option

// WithLogger sets the logger for the store and the client.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom storage adapter.
func WithStore(store DocumentStore) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs", "memory", "remote").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithCollection sets the collection notes are stored in.
func WithCollection(name string) Option {
	return platform.WithCollection(name)
}

// WithExtension sets the file format of new fs documents.
func WithExtension(ext string) Option {
	return platform.WithExtension(ext)
}

// WithReadOnly makes the fs adapter refuse writes.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithMustExist ensures the fs root directory already exists.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithStrict keeps numbers as json.Number in every fs format.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithWatcherErrorHandler receives fs watcher errors no listener could be told about.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithHTTPClient sets the HTTP client of the remote adapter.
func WithHTTPClient(hc *http.Client) Option {
	return platform.WithHTTPClient(hc)
}

// --- Factory ---

// New opens the configured store and returns a note client on it.
// The uri is a directory for "fs" and a base URL for "remote".
func New(ctx context.Context, uri string, opts ...Option) (*Client, error) {
	return platform.New(ctx, uri, opts...)
}

// OpenStore opens the configured store without wrapping it.
func OpenStore(ctx context.Context, uri string, opts ...Option) (DocumentStore, error) {
	return platform.OpenStore(ctx, uri, opts...)
}

// LoadConfig reads JOTTER_* variables (and jotter.env / .env files).
func LoadConfig() (Config, error) {
	return platform.LoadConfig()
}

// FindWorkspaceRoot looks upwards for a directory holding .jotter or jotter.env.
func FindWorkspaceRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
