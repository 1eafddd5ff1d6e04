// Package notes is the note store client: it saves, deletes and streams notes
// over any core.DocumentStore.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

// DefaultCollection is the collection notes are stored in.
const DefaultCollection = "notes"

// Client wraps a DocumentStore with note semantics.
// Operations are never retried; the caller owns any retry policy.
type Client struct {
	store      core.DocumentStore
	collection string
	logger     *slog.Logger
	unhandled  func(error)
}

// Option configures a Client.
type Option func(*Client)

// WithCollection overrides the collection name.
func WithCollection(name string) Option {
	return func(c *Client) {
		c.collection = name
	}
}

// WithLogger sets the logger used for skipped documents and unhandled errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUnhandledErrorHandler receives subscription errors when the subscriber
// supplied no error callback of its own. The default logs them at ERROR level.
func WithUnhandledErrorHandler(fn func(error)) Option {
	return func(c *Client) {
		c.unhandled = fn
	}
}

// New creates a note store client.
func New(store core.DocumentStore, opts ...Option) *Client {
	c := &Client{
		store:      store,
		collection: DefaultCollection,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.unhandled == nil {
		c.unhandled = func(err error) {
			c.logger.Error("unhandled subscription error", "collection", c.collection, "error", err)
		}
	}
	return c
}

// Collection returns the collection the client operates on.
func (c *Client) Collection() string {
	return c.collection
}

// Save upserts the note by ID, overwriting every field.
func (c *Client) Save(ctx context.Context, n core.Note) error {
	if err := core.ValidateID(n.ID); err != nil {
		return fmt.Errorf("save note: %w", err)
	}

	if err := c.store.Upsert(ctx, c.collection, n.ID, ToDocument(n)); err != nil {
		return fmt.Errorf("save note %s: %w", n.ID, err)
	}

	c.logger.Debug("note saved", "id", n.ID)
	return nil
}

// Delete removes the note. Deleting an unknown ID succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := core.ValidateID(id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if err := c.store.Delete(ctx, c.collection, id); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}

	c.logger.Debug("note deleted", "id", id)
	return nil
}

// Subscribe streams the complete notes mapping on every change, starting with
// the initial load. Errors go to onError, or to the unhandled error handler when
// onError is nil. If the subscription cannot be established the returned
// function does nothing.
//
// The returned function stops the stream and releases the connection; only
// its first call has any effect.
func (c *Client) Subscribe(ctx context.Context, onChange func(core.Notes), onError func(error)) core.Unsubscribe {
	report := onError
	if report == nil {
		report = c.unhandled
	}

	stop, err := c.store.Listen(ctx, c.collection,
		func(snap core.Snapshot) {
			onChange(c.toNotes(snap))
		},
		func(err error) {
			report(fmt.Errorf("notes subscription: %w", err))
		},
	)
	if err != nil {
		report(fmt.Errorf("subscribe to notes: %w", err))
		return core.NoopUnsubscribe
	}

	var once sync.Once
	return func() {
		once.Do(stop)
	}
}

func (c *Client) toNotes(snap core.Snapshot) core.Notes {
	out := make(core.Notes, len(snap))
	for id, doc := range snap {
		n, err := FromDocument(id, doc)
		if err != nil {
			c.logger.Warn("skipping malformed note", "id", id, "error", err)
			continue
		}
		out[id] = n
	}
	return out
}
