package core

import (
	"context"
	"fmt"
	"strings"
)

// Unsubscribe cancels a live subscription.
// Implementations must tolerate repeated calls.
type Unsubscribe func()

// NoopUnsubscribe is returned when a subscription never started.
func NoopUnsubscribe() {}

// DocumentStore defines the contract of the document database the notes live in.
// Adhering to this interface keeps the note logic independent of the
// underlying storage mechanism (filesystem, memory, remote server).
type DocumentStore interface {
	// Upsert creates the document if absent or overwrites it entirely.
	Upsert(ctx context.Context, collection, id string, doc Document) error

	// Delete removes the document. Deleting a missing document succeeds.
	Delete(ctx context.Context, collection, id string) error

	// Listen delivers the full collection once and again after every change,
	// until the returned Unsubscribe is called or ctx is done.
	// Setup failures are returned; failures while streaming go to onError.
	Listen(ctx context.Context, collection string, onSnapshot func(Snapshot), onError func(error)) (Unsubscribe, error)
}

// Lister is implemented by stores able to return a collection without subscribing.
type Lister interface {
	List(ctx context.Context, collection string) (Snapshot, error)
}

// ValidateID checks that id can be used as a collection or document key.
// Keys end up as file names and URL segments, so separators and dot names are rejected.
func ValidateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case id == "." || id == "..":
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	}
	return nil
}
