package core

import "sync"

// Feed delivers values and errors to a single consumer on its own goroutine,
// in the order they were published.
//
// Publishing never blocks. Consecutive values published while the consumer is
// busy collapse into the most recent one, so a slow consumer sees fewer,
// fresher snapshots rather than a backlog. Errors are never collapsed: each one
// is delivered, and it neither replaces nor is replaced by a value.
type Feed[T any] struct {
	deliver func(T)
	fail    func(error)

	mu     sync.Mutex
	queue  []feedItem[T]
	closed bool

	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

type feedItem[T any] struct {
	value T
	err   error
}

// NewFeed starts a feed that hands published values to deliver and published
// errors to fail. A nil fail drops errors.
func NewFeed[T any](deliver func(T), fail func(error)) *Feed[T] {
	f := &Feed[T]{
		deliver: deliver,
		fail:    fail,
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go f.run()
	return f
}

// Publish queues v. If the newest undelivered entry is a value, v replaces it.
// It reports false once the feed is closed.
func (f *Feed[T]) Publish(v T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	if n := len(f.queue); n > 0 && f.queue[n-1].err == nil {
		f.queue[n-1].value = v
	} else {
		f.queue = append(f.queue, feedItem[T]{value: v})
	}
	f.signal()
	return true
}

// Fail queues err behind everything already published.
// It reports false once the feed is closed or when err is nil.
func (f *Feed[T]) Fail(err error) bool {
	if err == nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.queue = append(f.queue, feedItem[T]{err: err})
	f.signal()
	return true
}

// signal wakes the consumer. Callers hold mu.
func (f *Feed[T]) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Close stops the feed and drops everything undelivered. A delivery already
// handed to the consumer may still finish; use Wait to block until it has.
// Close is safe to call from inside a callback and more than once.
func (f *Feed[T]) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.queue = nil
		close(f.wake)
		f.mu.Unlock()
	})
}

// Wait blocks until the delivery goroutine has exited.
// It must not be called from inside a callback.
func (f *Feed[T]) Wait() {
	<-f.stopped
}

func (f *Feed[T]) run() {
	defer close(f.stopped)

	for range f.wake {
		for {
			item, ok := f.next()
			if !ok {
				break
			}
			if item.err != nil {
				if f.fail != nil {
					f.fail(item.err)
				}
				continue
			}
			f.deliver(item.value)
		}
	}
}

// next pops the oldest entry. It reports false when the queue is empty or the
// feed is closed.
func (f *Feed[T]) next() (feedItem[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || len(f.queue) == 0 {
		return feedItem[T]{}, false
	}
	item := f.queue[0]
	f.queue[0] = feedItem[T]{}
	f.queue = f.queue[1:]
	return item, true
}
