// Package memory provides an in-process DocumentStore with live listeners.
// It backs tests and the embedded mode of the CLI.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/jotter/pkg/core"
)

// Op names a store operation for fault injection.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
	OpListen Op = "listen"
	OpList   Op = "list"
)

type listener struct {
	feed *core.Feed[core.Snapshot]
}

// Store keeps collections in memory.
type Store struct {
	mu          sync.Mutex
	collections map[string]core.Snapshot
	listeners   map[string]map[uint64]*listener
	nextID      uint64
	failures    map[Op]error
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]core.Snapshot),
		listeners:   make(map[string]map[uint64]*listener),
		failures:    make(map[Op]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next call of op return err.
func (s *Store) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// InjectError reports err to every listener of the collection, as a broken
// stream would. It is queued behind snapshots not yet delivered.
func (s *Store) InjectError(collection string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.listeners[collection] {
		l.feed.Fail(err)
	}
}

// Upsert implements core.DocumentStore.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc core.Document) error {
	if err := validate(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpUpsert); err != nil {
		return err
	}

	docs, ok := s.collections[collection]
	if !ok {
		docs = make(core.Snapshot)
		s.collections[collection] = docs
	}
	doc = doc.Clone()
	doc.ID = id
	docs[id] = doc

	s.debug("document upserted", "collection", collection, "id", id)
	s.notifyLocked(collection)
	return nil
}

// Delete implements core.DocumentStore.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpDelete); err != nil {
		return err
	}

	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)

	s.debug("document deleted", "collection", collection, "id", id)
	s.notifyLocked(collection)
	return nil
}

// List returns a copy of the collection.
func (s *Store) List(ctx context.Context, collection string) (core.Snapshot, error) {
	if err := core.ValidateID(collection); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(OpList); err != nil {
		return nil, err
	}
	return s.collections[collection].Clone(), nil
}

// Listen implements core.DocumentStore.
func (s *Store) Listen(ctx context.Context, collection string, onSnapshot func(core.Snapshot), onError func(error)) (core.Unsubscribe, error) {
	if err := core.ValidateID(collection); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.takeFailure(OpListen); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.nextID++
	key := s.nextID
	l := &listener{
		feed: core.NewFeed(onSnapshot, onError),
	}
	if s.listeners[collection] == nil {
		s.listeners[collection] = make(map[uint64]*listener)
	}
	s.listeners[collection][key] = l
	l.feed.Publish(s.collections[collection].Clone())
	s.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners[collection], key)
			s.mu.Unlock()
			l.feed.Close()
		})
	}
	stopWatch := context.AfterFunc(ctx, unsubscribe)

	return func() {
		stopWatch()
		unsubscribe()
	}, nil
}

func (s *Store) notifyLocked(collection string) {
	for _, l := range s.listeners[collection] {
		l.feed.Publish(s.collections[collection].Clone())
	}
}

func (s *Store) takeFailure(op Op) error {
	err, ok := s.failures[op]
	if !ok {
		return nil
	}
	delete(s.failures, op)
	return err
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func validate(collection, id string) error {
	if err := core.ValidateID(collection); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	if err := core.ValidateID(id); err != nil {
		return fmt.Errorf("document: %w", err)
	}
	return nil
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Collections map[string]int `json:"collections"`
	Listeners   int            `json:"listeners"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StoreState{Collections: make(map[string]int, len(s.collections))}
	for name, docs := range s.collections {
		state.Collections[name] = len(docs)
	}
	for _, ls := range s.listeners {
		state.Listeners += len(ls)
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ core.DocumentStore = (*Store)(nil)
var _ core.Lister = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
