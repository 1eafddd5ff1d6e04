package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/core"
)

// setupStore creates an initialized store rooted in a temp directory.
func setupStore(t *testing.T, opts ...func(*fs.Config)) (*fs.Store, string) {
	t.Helper()

	root := filepath.Join(t.TempDir(), "vault")
	cfg := fs.Config{Path: root}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := fs.New(cfg)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store, root
}

func note(title, content string, ts int64) core.Document {
	return core.Document{
		Content:  content,
		Metadata: core.Metadata{"title": title, "lastUpdated": ts},
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		_, root := setupStore(t)
		if _, err := os.Stat(root); err != nil {
			t.Errorf("expected directory at %s: %v", root, err)
		}
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		store := fs.New(fs.Config{Path: filepath.Join(t.TempDir(), "missing"), MustExist: true})
		if err := store.Initialize(context.Background()); err == nil {
			t.Error("expected Initialize to fail")
		}
	})

	t.Run("Rejects Unknown Extension", func(t *testing.T) {
		store := fs.New(fs.Config{Path: t.TempDir(), Extension: "csv"})
		if err := store.Initialize(context.Background()); err == nil {
			t.Error("expected Initialize to fail for .csv")
		}
	})
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()

	for _, ext := range []string{".md", ".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			store, root := setupStore(t, func(c *fs.Config) { c.Extension = ext })

			if err := store.Upsert(ctx, "notes", "n1", note("Hi", "there", 42)); err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
			if _, err := os.Stat(filepath.Join(root, "notes", "n1"+ext)); err != nil {
				t.Fatalf("expected file on disk: %v", err)
			}

			doc, err := store.Get(ctx, "notes", "n1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if doc.ID != "n1" || doc.Content != "there" || doc.Metadata["title"] != "Hi" {
				t.Errorf("unexpected document: %+v", doc)
			}
		})
	}
}

func TestUpsertReplacesOtherFormats(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)

	dir := filepath.Join(root, "notes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "n1.json"), []byte(`{"content":"old"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := store.Upsert(ctx, "notes", "n1", note("New", "new", 1)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "n1.json")); !errors.Is(err, os.ErrNotExist) {
		t.Error("expected stale json file to be removed")
	}
}

func TestGetMissing(t *testing.T) {
	store, _ := setupStore(t)
	_, err := store.Get(context.Background(), "notes", "nope")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)

	t.Run("Removes File", func(t *testing.T) {
		if err := store.Upsert(ctx, "notes", "n1", note("a", "b", 1)); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, "notes", "n1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(root, "notes", "n1.md")); !errors.Is(err, os.ErrNotExist) {
			t.Error("expected file to be gone")
		}
	})

	t.Run("Missing Document Succeeds", func(t *testing.T) {
		if err := store.Delete(ctx, "notes", "never-existed"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
		if err := store.Delete(ctx, "empty-collection", "x"); err != nil {
			t.Errorf("expected nil for missing collection, got %v", err)
		}
	})
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	cases := []struct{ collection, id string }{
		{"notes", ""},
		{"notes", "../escape"},
		{"notes", ".hidden"},
		{"../notes", "n1"},
	}
	for _, c := range cases {
		if err := store.Upsert(ctx, c.collection, c.id, note("a", "b", 1)); !errors.Is(err, core.ErrInvalidID) {
			t.Errorf("Upsert(%q, %q): expected ErrInvalidID, got %v", c.collection, c.id, err)
		}
		if err := store.Delete(ctx, c.collection, c.id); !errors.Is(err, core.ErrInvalidID) {
			t.Errorf("Delete(%q, %q): expected ErrInvalidID, got %v", c.collection, c.id, err)
		}
	}
}

func TestReadOnly(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	store := fs.New(fs.Config{Path: root, ReadOnly: true})
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := store.Upsert(ctx, "notes", "n1", note("a", "b", 1)); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := store.Delete(ctx, "notes", "n1"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)
	dir := filepath.Join(root, "notes")

	t.Run("Missing Collection Is Empty", func(t *testing.T) {
		snap, err := store.List(ctx, "notes")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(snap) != 0 {
			t.Errorf("expected empty snapshot, got %d", len(snap))
		}
	})

	t.Run("Mixed Formats And Junk", func(t *testing.T) {
		if err := store.Upsert(ctx, "notes", "a", note("A", "x", 1)); err != nil {
			t.Fatal(err)
		}
		files := map[string]string{
			"b.json":          `{"title":"B","content":"y","lastUpdated":2}`,
			"c.yml":           "title: C\ncontent: z\nlastUpdated: 3\n",
			"broken.json":     `{`,
			"readme.txt":      "ignored",
			"jotter-tmp-1234": "in flight",
		}
		for name, body := range files {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
		}

		snap, err := store.List(ctx, "notes")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(snap) != 3 {
			t.Fatalf("expected 3 documents, got %d: %v", len(snap), snap)
		}
		for _, id := range []string{"a", "b", "c"} {
			if snap[id].ID != id {
				t.Errorf("document %s missing or mislabelled: %+v", id, snap[id])
			}
		}
	})
}

type listener struct {
	snapshots chan core.Snapshot
	errors    chan error
}

func newListener() *listener {
	return &listener{
		snapshots: make(chan core.Snapshot, 32),
		errors:    make(chan error, 32),
	}
}

func (l *listener) onSnapshot(s core.Snapshot) { l.snapshots <- s }
func (l *listener) onError(err error)          { l.errors <- err }

// waitFor reads snapshots until one satisfies cond.
func (l *listener) waitFor(t *testing.T, cond func(core.Snapshot) bool) core.Snapshot {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s := <-l.snapshots:
			if cond(s) {
				return s
			}
		case err := <-l.errors:
			t.Fatalf("unexpected error: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for snapshot")
		}
	}
}

func TestListen(t *testing.T) {
	ctx := context.Background()
	store, root := setupStore(t)

	if err := store.Upsert(ctx, "notes", "first", note("First", "one", 1)); err != nil {
		t.Fatal(err)
	}

	l := newListener()
	stop, err := store.Listen(ctx, "notes", l.onSnapshot, l.onError)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer stop()

	initial := l.waitFor(t, func(core.Snapshot) bool { return true })
	if _, ok := initial["first"]; !ok {
		t.Fatalf("initial snapshot missing document: %v", initial)
	}

	t.Run("Sees Upsert", func(t *testing.T) {
		if err := store.Upsert(ctx, "notes", "second", note("Second", "two", 2)); err != nil {
			t.Fatal(err)
		}
		l.waitFor(t, func(s core.Snapshot) bool {
			return s["second"].Content == "two"
		})
	})

	t.Run("Sees External Edit", func(t *testing.T) {
		path := filepath.Join(root, "notes", "third.json")
		if err := os.WriteFile(path, []byte(`{"title":"T","content":"three","lastUpdated":3}`), 0644); err != nil {
			t.Fatal(err)
		}
		l.waitFor(t, func(s core.Snapshot) bool {
			return s["third"].Content == "three"
		})
	})

	t.Run("Sees Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "notes", "first"); err != nil {
			t.Fatal(err)
		}
		l.waitFor(t, func(s core.Snapshot) bool {
			_, ok := s["first"]
			return !ok
		})
	})

	t.Run("Introspection Counts Watchers", func(t *testing.T) {
		state := store.State().(fs.StoreState)
		if state.Watchers != 1 {
			t.Errorf("expected 1 watcher, got %d", state.Watchers)
		}
	})
}

func TestListen_StopIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := setupStore(t)

	l := newListener()
	stop, err := store.Listen(ctx, "notes", l.onSnapshot, l.onError)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	l.waitFor(t, func(core.Snapshot) bool { return true })

	stop()
	stop()

	if got := store.State().(fs.StoreState).Watchers; got != 0 {
		t.Errorf("expected 0 watchers after stop, got %d", got)
	}

	if err := store.Upsert(ctx, "notes", "late", note("L", "late", 1)); err != nil {
		t.Fatal(err)
	}
	select {
	case s := <-l.snapshots:
		t.Errorf("unexpected delivery after stop: %v", s)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestListen_InvalidCollection(t *testing.T) {
	store, _ := setupStore(t)
	l := newListener()
	if _, err := store.Listen(context.Background(), "..", l.onSnapshot, l.onError); !errors.Is(err, core.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestListen_StopsWithContext(t *testing.T) {
	store, _ := setupStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	l := newListener()
	if _, err := store.Listen(ctx, "notes", l.onSnapshot, l.onError); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	l.waitFor(t, func(core.Snapshot) bool { return true })

	cancel()

	deadline := time.Now().Add(time.Second)
	for store.State().(fs.StoreState).Watchers != 0 {
		if time.Now().After(deadline) {
			t.Fatal("watcher still registered after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
