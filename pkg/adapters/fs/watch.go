package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jotter/pkg/core"
)

// DebounceInterval is how long the watcher waits for a burst of filesystem
// events to settle before re-reading the collection.
const DebounceInterval = 50 * time.Millisecond

// Listen delivers the collection now and again whenever its directory changes.
// The collection directory is created if missing, unless the store is read-only.
func (s *Store) Listen(ctx context.Context, collection string, onSnapshot func(core.Snapshot), onError func(error)) (core.Unsubscribe, error) {
	dir, err := s.collectionDir(collection)
	if err != nil {
		return nil, err
	}
	if !s.config.ReadOnly {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create collection directory: %w", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	initial, err := s.List(ctx, collection)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	report := onError
	if report == nil {
		report = s.reportError
	}
	feed := core.NewFeed(onSnapshot, report)
	feed.Publish(initial)

	watchCtx, cancel := context.WithCancel(ctx)
	w := &collectionWatcher{
		store:      s,
		collection: collection,
		watcher:    watcher,
		feed:       feed,
	}

	s.setWatching(1)
	lifecycle.Go(watchCtx, func(ctx context.Context) error {
		w.run(ctx)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher panic: %w", err))
	}))

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			cancel()
			feed.Close()
			s.setWatching(-1)
		})
	}
	stopWatch := context.AfterFunc(ctx, unsubscribe)

	return func() {
		stopWatch()
		unsubscribe()
	}, nil
}

type collectionWatcher struct {
	store      *Store
	collection string
	watcher    *fsnotify.Watcher
	feed       *core.Feed[core.Snapshot]
}

// run is the event loop: filesystem events arm the debounce timer, and the
// timer firing re-lists the collection.
func (w *collectionWatcher) run(ctx context.Context) {
	defer w.watcher.Close()

	logger := w.store.config.Logger
	// Disarmed until the first relevant event.
	debounce := time.NewTimer(DebounceInterval)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() == nil {
					w.feed.Fail(fmt.Errorf("watcher events channel closed"))
				}
				return
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("collection changed", "collection", w.collection, "name", event.Name, "op", event.Op.String())
			debounce.Reset(DebounceInterval)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() == nil {
					w.feed.Fail(fmt.Errorf("watcher errors channel closed"))
				}
				return
			}
			w.feed.Fail(fmt.Errorf("watch %s: %w", w.collection, err))

		case <-debounce.C:
			snap, err := w.store.List(ctx, w.collection)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				w.feed.Fail(err)
				continue
			}
			w.feed.Publish(snap)
		}
	}
}

// relevant drops temp files, directories and foreign extensions.
func (w *collectionWatcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	ok, err := doublestar.Match(w.store.pattern, filepath.Base(event.Name))
	return err == nil && ok
}
