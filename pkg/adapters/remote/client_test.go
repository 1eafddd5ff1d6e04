package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jotter/pkg/adapters/memory"
	"github.com/aretw0/jotter/pkg/adapters/remote"
	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
	"github.com/aretw0/jotter/pkg/notes"
	"github.com/aretw0/jotter/pkg/server"
)

func setup(t *testing.T) (*memory.Store, *httptest.Server, *remote.Client) {
	t.Helper()
	store := memory.New()
	ts := httptest.NewServer(server.New(store).Handler())
	t.Cleanup(ts.Close)

	client, err := remote.New(ts.URL)
	require.NoError(t, err)
	return store, ts, client
}

type recorder struct {
	snapshots chan core.Snapshot
	errors    chan error
}

func newRecorder() *recorder {
	return &recorder{
		snapshots: make(chan core.Snapshot, 16),
		errors:    make(chan error, 16),
	}
}

func (r *recorder) onSnapshot(s core.Snapshot) { r.snapshots <- s }
func (r *recorder) onError(err error)          { r.errors <- err }

func (r *recorder) next(t *testing.T) core.Snapshot {
	t.Helper()
	select {
	case s := <-r.snapshots:
		return s
	case err := <-r.errors:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func (r *recorder) nextError(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errors:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error")
	}
	return nil
}

func TestNew_RejectsBadURLs(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "http://", "://nope"} {
		_, err := remote.New(u)
		assert.Error(t, err, u)
	}
}

func TestUpsertListDelete(t *testing.T) {
	ctx := context.Background()
	store, _, client := setup(t)

	doc := core.Document{Content: "body", Metadata: core.Metadata{"title": "T"}}
	require.NoError(t, client.Upsert(ctx, "notes", "n1", doc))

	local, err := store.List(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "body", local["n1"].Content)

	snap, err := client.List(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "T", snap["n1"].Metadata["title"])

	require.NoError(t, client.Delete(ctx, "notes", "n1"))
	require.NoError(t, client.Delete(ctx, "notes", "n1"))

	snap, err = client.List(ctx, "notes")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestStatusErrors(t *testing.T) {
	ctx := context.Background()
	store, _, client := setup(t)

	store.FailNext(memory.OpUpsert, errors.New("write refused"))
	err := client.Upsert(ctx, "notes", "n1", core.Document{Content: "x"})

	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
	assert.Equal(t, "write refused", statusErr.Message)

	store.FailNext(memory.OpDelete, core.ErrReadOnly)
	err = client.Delete(ctx, "notes", "n1")
	assert.ErrorIs(t, err, core.ErrReadOnly)
}

func TestInvalidIDsNeverLeaveTheClient(t *testing.T) {
	_, _, client := setup(t)
	err := client.Upsert(context.Background(), "notes", "../x", core.Document{})
	assert.ErrorIs(t, err, core.ErrInvalidID)
	assert.Zero(t, client.State().(remote.ClientState).Requests)
}

func TestListen(t *testing.T) {
	ctx := context.Background()
	store, _, client := setup(t)
	require.NoError(t, store.Upsert(ctx, "notes", "a", core.Document{Content: "first"}))

	rec := newRecorder()
	stop, err := client.Listen(ctx, "notes", rec.onSnapshot, rec.onError)
	require.NoError(t, err)

	assert.Equal(t, "first", rec.next(t)["a"].Content)

	require.NoError(t, store.Upsert(ctx, "notes", "b", core.Document{Content: "second"}))
	assert.Len(t, rec.next(t), 2)

	store.InjectError("notes", errors.New("stream broke"))
	assert.EqualError(t, rec.nextError(t), "stream broke")

	assert.Equal(t, 1, client.State().(remote.ClientState).Live)
	stop()
	stop()
	assert.Zero(t, client.State().(remote.ClientState).Live)

	require.NoError(t, store.Upsert(ctx, "notes", "c", core.Document{Content: "late"}))
	select {
	case s := <-rec.snapshots:
		t.Fatalf("delivery after unsubscribe: %v", s)
	case err := <-rec.errors:
		t.Fatalf("error after unsubscribe: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestListen_SetupFailure(t *testing.T) {
	store, _, client := setup(t)
	store.FailNext(memory.OpListen, errors.New("quota exceeded"))

	rec := newRecorder()
	_, err := client.Listen(context.Background(), "notes", rec.onSnapshot, rec.onError)

	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "quota exceeded", statusErr.Message)
}

func TestListen_ConnectionDropped(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteJSON(api.Frame{Type: api.FrameSnapshot})
		// Drop the connection without a close frame.
		_ = conn.Close()
	}))
	defer ts.Close()

	client, err := remote.New(ts.URL)
	require.NoError(t, err)

	rec := newRecorder()
	stop, err := client.Listen(context.Background(), "notes", rec.onSnapshot, rec.onError)
	require.NoError(t, err)
	defer stop()

	assert.Empty(t, rec.next(t))
	assert.ErrorContains(t, rec.nextError(t), "live connection lost")
}

func TestListen_SlowConsumerGetsSnapshotsAndErrors(t *testing.T) {
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(api.Frame{Type: api.FrameSnapshot, Documents: core.Snapshot{"a": {Content: "first"}}})
		_ = conn.WriteJSON(api.Frame{Type: api.FrameError, Error: "stream broke"})
		_ = conn.WriteJSON(api.Frame{Type: api.FrameSnapshot, Documents: core.Snapshot{"a": {Content: "third"}}})
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	client, err := remote.New(ts.URL)
	require.NoError(t, err)

	release := make(chan struct{})
	rec := newRecorder()
	first := true
	stop, err := client.Listen(context.Background(), "notes",
		func(s core.Snapshot) {
			if first {
				first = false
				<-release
			}
			rec.onSnapshot(s)
		},
		rec.onError,
	)
	require.NoError(t, err)
	defer stop()

	// Give the read loop time to queue every frame behind the blocked delivery.
	time.Sleep(100 * time.Millisecond)
	close(release)

	assert.Equal(t, "first", rec.next(t)["a"].Content)
	assert.EqualError(t, rec.nextError(t), "stream broke")
	assert.Equal(t, "third", rec.next(t)["a"].Content)
}

func TestNotesClientOverRemote(t *testing.T) {
	ctx := context.Background()
	_, _, client := setup(t)
	n := notes.New(client)

	changes := make(chan core.Notes, 8)
	stop := n.Subscribe(ctx, func(ns core.Notes) { changes <- ns }, func(err error) { t.Errorf("unexpected: %v", err) })
	defer stop()

	<-changes
	want := core.Note{ID: "n1", Title: "Hello", Content: "World", LastUpdated: 1700000000123}
	require.NoError(t, n.Save(ctx, want))

	select {
	case got := <-changes:
		assert.Equal(t, want, got["n1"])
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}
