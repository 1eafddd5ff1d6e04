package core

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is the central entity of the domain.
// ID is assigned once at creation and never changes.
// LastUpdated is expressed in milliseconds since the Unix epoch.
type Note struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	LastUpdated int64  `json:"lastUpdated"`
}

// NewNote returns a blank note with a fresh UUID stamped at now.
func NewNote(now time.Time) Note {
	return Note{
		ID:          uuid.NewString(),
		LastUpdated: now.UnixMilli(),
	}
}

// Touch returns a copy of n with LastUpdated set to now.
func (n Note) Touch(now time.Time) Note {
	n.LastUpdated = now.UnixMilli()
	return n
}

// Complete reports whether both required fields are non-blank after trimming.
func (n Note) Complete() bool {
	return strings.TrimSpace(n.Title) != "" && strings.TrimSpace(n.Content) != ""
}

// Notes maps note IDs to notes. It carries no ordering.
type Notes map[string]Note

// Sorted returns the notes ordered by LastUpdated, most recent first.
// The relative order of notes with equal timestamps is unspecified.
func (ns Notes) Sorted() []Note {
	out := slices.Collect(maps.Values(ns))
	slices.SortFunc(out, func(a, b Note) int {
		return cmp.Compare(b.LastUpdated, a.LastUpdated)
	})
	return out
}

// Clone returns a shallow copy of the mapping.
func (ns Notes) Clone() Notes {
	if ns == nil {
		return Notes{}
	}
	return maps.Clone(ns)
}
