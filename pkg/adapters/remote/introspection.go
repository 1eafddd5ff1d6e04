package remote

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability.
type ClientState struct {
	BaseURL  string `json:"base_url"`
	Live     int    `json:"live_subscriptions"`
	Requests int    `json:"requests"`
	Failures int    `json:"failures"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ClientState{
		BaseURL:  c.baseURL.String(),
		Live:     c.live,
		Requests: c.requests,
		Failures: c.failures,
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "remote-store"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)

func (c *Client) setLive(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live += delta
}
