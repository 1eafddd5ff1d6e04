package platform

import (
	"log/slog"
	"net/http"

	"github.com/aretw0/jotter/pkg/core"
)

// Adapter names accepted by WithAdapter.
const (
	AdapterFS     = "fs"
	AdapterMemory = "memory"
	AdapterRemote = "remote"
)

// options holds the internal configuration for opening a store.
type options struct {
	store        core.DocumentStore
	logger       *slog.Logger
	adapter      string
	collection   string
	extension    string
	readOnly     bool
	mustExist    bool
	strict       bool
	errorHandler func(error)
	httpClient   *http.Client
}

// Option defines a functional option for configuring jotter.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter:    AdapterFS,
		collection: "notes",
		extension:  ".md",
		strict:     true,
	}
}

// WithLogger sets the logger for the store and the note client.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom DocumentStore (e.g. a test double).
// The adapter and its settings are then ignored.
func WithStore(store core.DocumentStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "memory" or "remote".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithCollection sets the collection notes are stored in. Defaults to "notes".
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// WithExtension sets the file format new fs documents are written in (".md", ".json", ".yaml").
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithReadOnly makes the fs adapter refuse writes with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithMustExist ensures the fs root directory already exists.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithStrict keeps numbers as json.Number in every fs format. Enabled by default
// so that millisecond timestamps survive YAML and Markdown round trips.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithWatcherErrorHandler receives fs watcher errors that no listener could be told about.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.errorHandler = fn
	}
}

// WithHTTPClient sets the HTTP client of the remote adapter.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}
