// Package notelist holds the state of the live notes list and of each note
// item shown in it, plus a plain-text renderer for both.
package notelist

import (
	"context"
	"sync"

	"github.com/aretw0/jotter/pkg/core"
)

const fallbackLoadError = "Failed to load notes"

// Subscriber streams the full notes mapping.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func(core.Notes), onError func(error)) core.Unsubscribe
}

// Status is what the list currently shows.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusEmpty
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	case StatusReady:
		return "ready"
	default:
		return "unknown"
	}
}

// View is the render-ready state of a List.
type View struct {
	Status Status
	Error  string
	// Notes are ordered by LastUpdated, most recent first.
	Notes []core.Note
}

// List is the notes list state machine, driven by a subscription.
// It is safe for concurrent use.
type List struct {
	source   Subscriber
	onUpdate func()

	mu          sync.Mutex
	notes       core.Notes
	loading     bool
	err         string
	generation  uint64
	unsubscribe core.Unsubscribe
}

// ListOption configures a List.
type ListOption func(*List)

// WithOnUpdate registers a hook called after every state change.
// It runs on whichever goroutine caused the change and must not block for long.
func WithOnUpdate(fn func()) ListOption {
	return func(l *List) {
		l.onUpdate = fn
	}
}

// NewList creates a list fed by source. It shows the loading state until mounted
// and the first delivery arrives.
func NewList(source Subscriber, opts ...ListOption) *List {
	l := &List{
		source:  source,
		notes:   core.Notes{},
		loading: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Mount subscribes to the source. A previous subscription is cancelled first.
func (l *List) Mount(ctx context.Context) {
	l.Unmount()

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.loading = true
	l.err = ""
	l.mu.Unlock()
	l.changed()

	stop := l.source.Subscribe(ctx,
		func(notes core.Notes) {
			l.apply(gen, func() {
				l.notes = notes
				l.loading = false
				l.err = ""
			})
		},
		func(err error) {
			l.apply(gen, func() {
				l.err = fallbackLoadError
				if err != nil && err.Error() != "" {
					l.err = err.Error()
				}
				l.loading = false
			})
		},
	)

	l.mu.Lock()
	if l.generation != gen {
		// Unmounted while subscribing.
		l.mu.Unlock()
		stop()
		return
	}
	l.unsubscribe = stop
	l.mu.Unlock()
}

// Unmount cancels the subscription. Deliveries still in flight are discarded.
// It is safe to call at any time and more than once.
func (l *List) Unmount() {
	l.mu.Lock()
	stop := l.unsubscribe
	l.unsubscribe = nil
	l.generation++
	l.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// View returns the state to render. Loading wins over error, error over content.
func (l *List) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.loading:
		return View{Status: StatusLoading}
	case l.err != "":
		return View{Status: StatusError, Error: l.err}
	case len(l.notes) == 0:
		return View{Status: StatusEmpty}
	default:
		return View{Status: StatusReady, Notes: l.notes.Sorted()}
	}
}

// Notes returns a copy of the last delivered mapping.
func (l *List) Notes() core.Notes {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.notes.Clone()
}

func (l *List) apply(gen uint64, mutate func()) {
	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		return
	}
	mutate()
	l.mu.Unlock()
	l.changed()
}

func (l *List) changed() {
	if l.onUpdate != nil {
		l.onUpdate()
	}
}
