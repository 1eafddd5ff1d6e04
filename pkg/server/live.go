package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

// handleLive streams snapshots of a collection over a websocket.
//
// The first frame is either the initial snapshot or an error frame followed by
// a close, which the client treats as a failed subscription.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if err := core.ValidateID(collection); err != nil {
		respondError(w, http.StatusBadRequest, "collection: "+err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	lw := &liveWriter{conn: conn, timeout: s.writeTimeout}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stopClose := context.AfterFunc(ctx, func() {
		lw.close(websocket.CloseGoingAway, "subscription ended")
		_ = conn.Close()
	})
	defer stopClose()

	stop, err := s.store.Listen(ctx, collection,
		func(snap core.Snapshot) {
			if err := lw.write(api.Frame{Type: api.FrameSnapshot, Documents: snap}); err != nil {
				cancel()
			}
		},
		func(err error) {
			s.logger.Warn("live feed error", "collection", collection, "error", err)
			if err := lw.write(api.Frame{Type: api.FrameError, Error: err.Error()}); err != nil {
				cancel()
			}
		},
	)
	s.metrics.observeOp("listen", err)
	if err != nil {
		s.logger.Warn("live subscription failed", "collection", collection, "error", err)
		_ = lw.write(api.Frame{Type: api.FrameError, Error: err.Error()})
		lw.close(websocket.CloseInternalServerErr, "subscription failed")
		return
	}
	defer stop()

	s.trackLive(collection, 1)
	defer s.trackLive(collection, -1)
	s.logger.Debug("live subscription opened", "collection", collection, "remote", r.RemoteAddr)

	// The client sends nothing; reading only surfaces its close frame or a dead connection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) && ctx.Err() == nil {
				s.logger.Debug("live connection lost", "collection", collection, "error", err)
			}
			break
		}
	}
	s.logger.Debug("live subscription closed", "collection", collection)
}

// liveWriter serializes writes; store callbacks may arrive on more than one goroutine.
type liveWriter struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func (lw *liveWriter) write(f api.Frame) error {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_ = lw.conn.SetWriteDeadline(time.Now().Add(lw.timeout))
	return lw.conn.WriteJSON(f)
}

func (lw *liveWriter) close(code int, reason string) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_ = lw.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(time.Second))
}
