// Package remote implements core.DocumentStore against a jotter store server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aretw0/jotter/pkg/api"
	"github.com/aretw0/jotter/pkg/core"
)

// Client talks to a store server over HTTP and websockets.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	dialer  *websocket.Dialer
	logger  *slog.Logger

	mu       sync.Mutex
	live     int
	requests int
	failures int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for document requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithDialer replaces the websocket dialer used by Listen.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the server at baseURL (http or https).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid remote url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q: missing host", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Upsert sends the whole document; the server replaces what it had.
func (c *Client) Upsert(ctx context.Context, collection, id string, doc core.Document) error {
	if err := validate(collection, id); err != nil {
		return err
	}

	doc = doc.Clone()
	doc.ID = id
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	return c.do(ctx, http.MethodPut, api.DocumentPath(collection, id), bytes.NewReader(body), nil)
}

// Delete removes the document. The server treats a missing document as success.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if err := validate(collection, id); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, api.DocumentPath(collection, id), nil, nil)
}

// List fetches the whole collection once.
func (c *Client) List(ctx context.Context, collection string) (core.Snapshot, error) {
	if err := core.ValidateID(collection); err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}

	var out api.DocumentsResponse
	if err := c.do(ctx, http.MethodGet, api.DocumentsPath(collection), nil, &out); err != nil {
		return nil, err
	}
	if out.Documents == nil {
		out.Documents = core.Snapshot{}
	}
	return out.Documents, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint("", path), body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.count(false)
	resp, err := c.http.Do(req)
	if err != nil {
		c.count(true)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.count(true)
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.count(true)
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// endpoint resolves path against the base URL, switching scheme when set.
func (c *Client) endpoint(scheme, path string) string {
	u := *c.baseURL
	if scheme != "" {
		u.Scheme = scheme
	}
	u.RawPath = ""
	unescaped, err := url.PathUnescape(path)
	if err != nil {
		unescaped = path
	}
	u.Path = strings.TrimRight(u.Path, "/") + unescaped
	u.RawPath = strings.TrimRight(c.baseURL.EscapedPath(), "/") + path
	return u.String()
}

func (c *Client) count(failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if failed {
		c.failures++
		return
	}
	c.requests++
}

func validate(collection, id string) error {
	if err := core.ValidateID(collection); err != nil {
		return fmt.Errorf("collection: %w", err)
	}
	return core.ValidateID(id)
}

var (
	_ core.DocumentStore = (*Client)(nil)
	_ core.Lister        = (*Client)(nil)
)
