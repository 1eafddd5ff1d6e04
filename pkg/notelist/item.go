package notelist

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

// ErrBusy is returned by Item.Delete while a delete is already in flight.
var ErrBusy = errors.New("note is already being deleted")

const fallbackDeleteError = "Failed to delete note."

// Deleter removes a note by ID.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user whether n may be deleted.
type Confirmer func(n core.Note) bool

// ItemStatus is the lifecycle of a displayed note.
type ItemStatus int

const (
	ItemIdle ItemStatus = iota
	ItemDeleting
	// ItemDeleted is terminal: the delete call succeeded, whether or not the
	// list has caught up yet.
	ItemDeleted
)

// ItemState is a point-in-time copy of an item.
type ItemState struct {
	Note        core.Note
	Status      ItemStatus
	Error       string
	CanDelete   bool
	CanEdit     bool
	DeleteLabel string
}

// Item is one note in the list with its delete/edit actions.
type Item struct {
	store   Deleter
	confirm Confirmer
	onEdit  func(core.Note)

	mu     sync.Mutex
	note   core.Note
	status ItemStatus
	err    string
}

// ItemOption configures an Item.
type ItemOption func(*Item)

// WithConfirm sets the confirmation step run before every delete.
// Without one, deletes are declined.
func WithConfirm(fn Confirmer) ItemOption {
	return func(i *Item) {
		i.confirm = fn
	}
}

// WithOnEdit registers the parent's edit handler.
func WithOnEdit(fn func(core.Note)) ItemOption {
	return func(i *Item) {
		i.onEdit = fn
	}
}

// NewItem creates an item for n.
func NewItem(n core.Note, store Deleter, opts ...ItemOption) *Item {
	i := &Item{
		store: store,
		note:  n,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetNote refreshes the displayed note, e.g. after a list delivery.
func (i *Item) SetNote(n core.Note) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.note = n
}

// Delete asks for confirmation and removes the note.
//
// A declined confirmation does nothing. A failed delete keeps the message and
// returns the item to idle so the user can try again; there is no automatic
// retry. A successful delete leaves the item in ItemDeleted for good.
func (i *Item) Delete(ctx context.Context) error {
	i.mu.Lock()
	switch i.status {
	case ItemDeleting:
		i.mu.Unlock()
		return ErrBusy
	case ItemDeleted:
		i.mu.Unlock()
		return nil
	}
	note := i.note
	i.mu.Unlock()

	if i.confirm == nil || !i.confirm(note) {
		return nil
	}

	i.mu.Lock()
	if i.status != ItemIdle {
		i.mu.Unlock()
		return ErrBusy
	}
	i.status = ItemDeleting
	i.err = ""
	i.mu.Unlock()

	err := i.store.Delete(ctx, note.ID)

	i.mu.Lock()
	defer i.mu.Unlock()
	if err != nil {
		i.status = ItemIdle
		i.err = err.Error()
		if i.err == "" {
			i.err = fallbackDeleteError
		}
		return err
	}
	i.status = ItemDeleted
	return nil
}

// Edit tells the parent the user wants to edit this note. It has no local effect.
func (i *Item) Edit() {
	i.mu.Lock()
	note, status, onEdit := i.note, i.status, i.onEdit
	i.mu.Unlock()

	if status != ItemIdle || onEdit == nil {
		return
	}
	onEdit(note)
}

// State returns a copy of the current state.
func (i *Item) State() ItemState {
	i.mu.Lock()
	defer i.mu.Unlock()

	label := "Delete"
	if i.status != ItemIdle {
		label = "Deleting..."
	}

	return ItemState{
		Note:        i.note,
		Status:      i.status,
		Error:       i.err,
		CanDelete:   i.status == ItemIdle,
		CanEdit:     i.status == ItemIdle && i.onEdit != nil,
		DeleteLabel: label,
	}
}
