package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/gorilla/websocket"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

// Listen opens the collection's live websocket. It returns once the server has
// sent the initial snapshot, or with the server's error if it could not
// subscribe. Later errors, including a dropped connection, go to onError and
// end the subscription.
func (c *Client) Listen(ctx context.Context, collection string, onSnapshot func(core.Snapshot), onError func(error)) (core.Unsubscribe, error) {
	if err := core.ValidateID(collection); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	target := c.endpoint(wsScheme(c.baseURL.Scheme), api.LivePath(collection))
	conn, resp, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if errors.Is(err, websocket.ErrBadHandshake) {
				return nil, statusError(resp)
			}
		}
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	initial, err := readInitial(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	report := onError
	if report == nil {
		report = func(err error) {
			c.logger.Error("remote live feed error", "collection", collection, "error", err)
		}
	}
	feed := core.NewFeed(onSnapshot, report)
	feed.Publish(initial)

	sub := &subscription{conn: conn, feed: feed}
	c.setLive(1)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		sub.readLoop()
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		c.logger.Error("remote live reader panic", "collection", collection, "error", err)
	}))

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			sub.close()
			c.setLive(-1)
		})
	}
	stopWatch := context.AfterFunc(ctx, unsubscribe)

	return func() {
		stopWatch()
		unsubscribe()
	}, nil
}

// readInitial waits for the first frame, honouring ctx.
func readInitial(ctx context.Context, conn *websocket.Conn) (core.Snapshot, error) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var frame api.Frame
	if err := conn.ReadJSON(&frame); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read initial snapshot: %w", err)
	}

	switch frame.Type {
	case api.FrameSnapshot:
		if frame.Documents == nil {
			frame.Documents = core.Snapshot{}
		}
		return frame.Documents, nil
	case api.FrameError:
		return nil, &StatusError{Code: http.StatusInternalServerError, Message: frame.Error}
	default:
		return nil, fmt.Errorf("unexpected frame type %q", frame.Type)
	}
}

type subscription struct {
	conn    *websocket.Conn
	feed    *core.Feed[core.Snapshot]
	closing atomic.Bool
}

func (s *subscription) readLoop() {
	for {
		var frame api.Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if !s.closing.Load() {
				s.feed.Fail(fmt.Errorf("live connection lost: %w", err))
			}
			return
		}

		switch frame.Type {
		case api.FrameSnapshot:
			if frame.Documents == nil {
				frame.Documents = core.Snapshot{}
			}
			s.feed.Publish(frame.Documents)
		case api.FrameError:
			s.feed.Fail(errors.New(frame.Error))
		}
	}
}

func (s *subscription) close() {
	s.closing.Store(true)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = s.conn.Close()
	s.feed.Close()
}

func wsScheme(httpScheme string) string {
	if httpScheme == "https" {
		return "wss"
	}
	return "ws"
}
