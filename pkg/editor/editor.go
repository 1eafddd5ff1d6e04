// Package editor holds the form state of a note being created or edited.
//
// An Editor starts in creation mode with a blank draft, or in editing mode
// with a copy of an existing note. Field edits are local until Submit hands
// the draft to the store.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/jotter/pkg/core"
)

// ErrBusy is returned by Submit while a previous submission is still saving.
var ErrBusy = errors.New("note is already being saved")

const fallbackSaveError = "Failed to save note"

// Saver persists a note.
type Saver interface {
	Save(ctx context.Context, n core.Note) error
}

// State is a point-in-time copy of the editor state.
type State struct {
	Draft       core.Note
	Saving      bool
	Error       string
	Editing     bool
	CanSubmit   bool
	SubmitLabel string
}

// Editor is the note form state machine. It is safe for concurrent use.
type Editor struct {
	store  Saver
	onSave func(core.Note)
	now    func() time.Time
	newID  func() string
	logger *slog.Logger

	mu     sync.Mutex
	target *core.Note
	draft  core.Note
	saving bool
	err    string
	closed bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithNote starts the editor in editing mode for n.
func WithNote(n *core.Note) Option {
	return func(e *Editor) {
		e.target = n
	}
}

// WithOnSave registers a callback invoked with each successfully saved note.
func WithOnSave(fn func(core.Note)) Option {
	return func(e *Editor) {
		e.onSave = fn
	}
}

// WithClock overrides the time source (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithIDGenerator overrides how fresh note IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) {
		e.newID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// New creates an editor that saves through store.
func New(store Saver, opts ...Option) *Editor {
	e := &Editor{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.draft = e.initialDraft(e.target)
	return e
}

// SetTarget switches the note being edited. A nil target means creation mode.
// Passing the current target again is a no-op; any other value discards the
// draft and starts over from the new target.
func (e *Editor) SetTarget(n *core.Note) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n == e.target {
		return
	}
	e.target = n
	e.draft = e.initialDraft(n)
	e.err = ""
}

// SetTitle updates the draft title. Edits are ignored while a save is in flight,
// as the form inputs are disabled then.
func (e *Editor) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.saving {
		return
	}
	e.draft.Title = title
	e.draft = e.draft.Touch(e.now())
}

// SetContent updates the draft content. Like SetTitle, it does nothing while saving.
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.saving {
		return
	}
	e.draft.Content = content
	e.draft = e.draft.Touch(e.now())
}

// CanSubmit reports whether Submit would reach the store.
func (e *Editor) CanSubmit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.saving && e.draft.Complete()
}

// Submit saves the draft.
//
// A draft with a blank title or content is silently ignored. On success the
// onSave callback runs and, in creation mode, the draft resets to a new blank
// note. On failure the message is kept for display and the error returned.
func (e *Editor) Submit(ctx context.Context) error {
	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return ErrBusy
	}
	if !e.draft.Complete() {
		e.mu.Unlock()
		return nil
	}
	e.saving = true
	e.err = ""
	note := e.draft
	creating := e.target == nil
	e.mu.Unlock()

	err := e.store.Save(ctx, note)

	e.mu.Lock()
	e.saving = false
	if e.closed {
		e.mu.Unlock()
		e.logger.Debug("editor closed before save finished", "id", note.ID, "error", err)
		return err
	}
	if err != nil {
		e.err = err.Error()
		if e.err == "" {
			e.err = fallbackSaveError
		}
		e.mu.Unlock()
		return err
	}
	if creating && e.target == nil && e.draft.ID == note.ID {
		e.draft = e.initialDraft(nil)
	}
	onSave := e.onSave
	e.mu.Unlock()

	if onSave != nil {
		onSave(note)
	}
	return nil
}

// Close detaches the editor. A save still in flight completes at the store,
// but its outcome is no longer applied to the editor nor reported to onSave.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}

// State returns a copy of the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	editing := e.target != nil
	label := "Save Note"
	switch {
	case e.saving:
		label = "Saving..."
	case editing:
		label = "Update Note"
	}

	return State{
		Draft:       e.draft,
		Saving:      e.saving,
		Error:       e.err,
		Editing:     editing,
		CanSubmit:   !e.saving && e.draft.Complete(),
		SubmitLabel: label,
	}
}

func (e *Editor) initialDraft(n *core.Note) core.Note {
	if n != nil {
		return *n
	}
	return core.Note{
		ID:          e.newID(),
		LastUpdated: e.now().UnixMilli(),
	}
}
