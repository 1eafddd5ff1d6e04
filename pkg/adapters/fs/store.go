// Package fs implements core.DocumentStore on the local filesystem.
//
// Each collection is a directory under the root and each document a file named
// after its ID. The extension picks the format (Markdown with YAML frontmatter,
// JSON or YAML).
package fs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/jotter/pkg/core"
)

// Config holds the configuration for the filesystem store.
type Config struct {
	Path      string
	Extension string // Extension used for new documents (default ".md").
	MustExist bool
	ReadOnly  bool
	// Strict keeps numbers as json.Number in every format.
	Strict       bool
	Logger       *slog.Logger
	ErrorHandler func(error) // Receives watcher errors no listener could be told about.
}

// Store implements core.DocumentStore using the filesystem.
type Store struct {
	Path        string
	config      Config
	serializers map[string]Serializer
	pattern     string

	mu            sync.RWMutex
	watchers      int
	lastRefreshed map[string]int
}

// New creates a filesystem-backed store.
func New(config Config) *Store {
	if config.Extension == "" {
		config.Extension = ".md"
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	serializers := DefaultSerializers(config.Strict)
	return &Store{
		Path:          config.Path,
		config:        config,
		serializers:   serializers,
		pattern:       extensionPattern(serializers),
		lastRefreshed: make(map[string]int),
	}
}

// Initialize prepares the root directory.
func (s *Store) Initialize(ctx context.Context) error {
	if _, ok := s.serializers[s.config.Extension]; !ok {
		return fmt.Errorf("unsupported extension %q", s.config.Extension)
	}

	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("store path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("store path is not a directory: %s", s.Path)
		}
		return nil
	}

	if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	return nil
}

// Upsert writes the document to <collection>/<id><ext>, replacing any previous version.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc core.Document) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	dir, err := s.collectionDir(collection)
	if err != nil {
		return err
	}
	if err := core.ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}

	doc = doc.Clone()
	doc.ID = id
	data, err := s.serializers[s.config.Extension].Serialize(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, id+s.config.Extension), data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	// The same ID stored under another format would shadow or duplicate this one.
	for ext := range s.serializers {
		if ext == s.config.Extension {
			continue
		}
		if err := os.Remove(filepath.Join(dir, id+ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale document: %w", err)
		}
	}
	return nil
}

// Delete removes every file holding the document. A missing document is not an error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	dir, err := s.collectionDir(collection)
	if err != nil {
		return err
	}
	if err := core.ValidateID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for ext := range s.serializers {
		if err := os.Remove(filepath.Join(dir, id+ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete document: %w", err)
		}
	}
	return nil
}

// Get reads a single document.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	dir, err := s.collectionDir(collection)
	if err != nil {
		return core.Document{}, err
	}
	if err := core.ValidateID(id); err != nil {
		return core.Document{}, err
	}

	exts := append([]string{s.config.Extension}, s.otherExtensions()...)
	for _, ext := range exts {
		doc, err := s.readFile(filepath.Join(dir, id+ext), ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return core.Document{}, fmt.Errorf("failed to read document %s: %w", id, err)
		}
		doc.ID = id
		return doc, nil
	}
	return core.Document{}, fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
}

// List reads the whole collection. A missing collection directory is an empty collection.
// Files that cannot be parsed are skipped.
func (s *Store) List(ctx context.Context, collection string) (core.Snapshot, error) {
	dir, err := s.collectionDir(collection)
	if err != nil {
		return nil, err
	}

	matches, err := doublestar.Glob(os.DirFS(dir), s.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection %s: %w", collection, err)
	}

	snap := make(core.Snapshot, len(matches))
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ext := filepath.Ext(name)
		id := strings.TrimSuffix(name, ext)
		if core.ValidateID(id) != nil {
			continue
		}
		if _, seen := snap[id]; seen && ext != s.config.Extension {
			continue
		}

		doc, err := s.readFile(filepath.Join(dir, name), ext)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.config.Logger.Warn("skipping unreadable document", "collection", collection, "file", name, "error", err)
			}
			continue
		}
		doc.ID = id
		snap[id] = doc
	}

	s.mu.Lock()
	s.lastRefreshed[collection] = len(snap)
	s.mu.Unlock()

	return snap, nil
}

func (s *Store) readFile(path, ext string) (core.Document, error) {
	serializer, ok := s.serializers[ext]
	if !ok {
		return core.Document{}, fmt.Errorf("no serializer for %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return core.Document{}, err
	}
	defer f.Close()

	return serializer.Parse(f)
}

func (s *Store) collectionDir(collection string) (string, error) {
	if err := core.ValidateID(collection); err != nil {
		return "", fmt.Errorf("collection: %w", err)
	}
	return filepath.Join(s.Path, collection), nil
}

func (s *Store) otherExtensions() []string {
	var out []string
	for _, ext := range slices.Sorted(maps.Keys(s.serializers)) {
		if ext != s.config.Extension {
			out = append(out, ext)
		}
	}
	return out
}

func (s *Store) reportError(err error) {
	s.config.Logger.Error("fs store error", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

var (
	_ core.DocumentStore = (*Store)(nil)
	_ core.Lister        = (*Store)(nil)
)
