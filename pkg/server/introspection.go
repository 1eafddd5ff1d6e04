package server

import (
	"maps"
	"time"

	"github.com/aretw0/introspection"
)

// ServerState exposes internal state for observability.
type ServerState struct {
	Addr      string         `json:"addr,omitempty"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	Live      map[string]int `json:"live_subscriptions"`
	Store     any            `json:"store,omitempty"`
}

// State implements introspection.Introspectable.
// The store's own state is included when it is introspectable.
func (s *Server) State() any {
	s.mu.Lock()
	state := ServerState{
		Addr: s.addr,
		Live: maps.Clone(s.live),
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		state.StartedAt = &started
	}
	s.mu.Unlock()

	if in, ok := s.store.(introspection.Introspectable); ok {
		state.Store = in.State()
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Server) ComponentType() string {
	return "store-server"
}

var _ introspection.Introspectable = (*Server)(nil)
var _ introspection.Component = (*Server)(nil)
