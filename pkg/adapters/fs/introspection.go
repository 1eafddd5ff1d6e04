package fs

import (
	"maps"
	"slices"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path        string         `json:"path"`
	Extension   string         `json:"extension"`
	ReadOnly    bool           `json:"read_only"`
	Strict      bool           `json:"strict"`
	Serializers []string       `json:"serializers"`
	Watchers    int            `json:"watchers"`
	Collections map[string]int `json:"collections,omitempty"` // Document count at the last listing.
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:        s.Path,
		Extension:   s.config.Extension,
		ReadOnly:    s.config.ReadOnly,
		Strict:      s.config.Strict,
		Serializers: slices.Sorted(maps.Keys(s.serializers)),
		Watchers:    s.watchers,
		Collections: maps.Clone(s.lastRefreshed),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatching(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers += delta
}
