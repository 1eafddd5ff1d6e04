package platform

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/fs"
	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/remote"
	"github.com/aretw0/jotter/pkg/core"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("fs by default", func(t *testing.T) {
		store, err := OpenStore(ctx, filepath.Join(t.TempDir(), "vault"))
		require.NoError(t, err)
		assert.IsType(t, &fs.Store{}, store)
	})

	t.Run("memory", func(t *testing.T) {
		store, err := OpenStore(ctx, "", WithAdapter(AdapterMemory))
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("remote", func(t *testing.T) {
		store, err := OpenStore(ctx, "http://localhost:8080", WithAdapter(AdapterRemote))
		require.NoError(t, err)
		assert.IsType(t, &remote.Client{}, store)
	})

	t.Run("remote without url", func(t *testing.T) {
		_, err := OpenStore(ctx, "", WithAdapter(AdapterRemote))
		assert.Error(t, err)
	})

	t.Run("unknown adapter", func(t *testing.T) {
		_, err := OpenStore(ctx, "", WithAdapter("s3"))
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("injected store wins", func(t *testing.T) {
		injected := memory.New()
		store, err := OpenStore(ctx, "", WithAdapter("s3"), WithStore(injected))
		require.NoError(t, err)
		assert.Same(t, injected, store)
	})

	t.Run("read only fs", func(t *testing.T) {
		store, err := OpenStore(ctx, t.TempDir(), WithReadOnly(true))
		require.NoError(t, err)
		err = store.Upsert(ctx, "notes", "n1", core.Document{})
		assert.True(t, errors.Is(err, core.ErrReadOnly))
	})
}

func TestNew_UsesCollection(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	client, err := New(ctx, "", WithStore(store), WithCollection("journal"))
	require.NoError(t, err)
	assert.Equal(t, "journal", client.Collection())

	require.NoError(t, client.Save(ctx, core.Note{ID: "n1", Title: "a", Content: "b"}))
	snap, err := store.List(ctx, "journal")
	require.NoError(t, err)
	assert.Contains(t, snap, "n1")
}
