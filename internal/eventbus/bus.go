// Package eventbus carries build events from the API to the notifiers.
// Events are queued on a buffered channel and handed to listeners by a
// worker pool. With the default single worker, listeners see events in
// publish order.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers    = 1
	defaultBufferSize = 100
)

// Option configures a Bus.
type Option func(*Bus)

// WithWorkers sets the number of dispatch goroutines. More than one worker
// gives up publish-order delivery.
func WithWorkers(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithBufferSize sets how many events may wait for a worker before Publish
// starts dropping.
func WithBufferSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.bufferSize = n
		}
	}
}

// WithLogger sets the logger for dropped events and listener panics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// Bus is an in-memory, asynchronous event bus. Every listener receives
// every event.
type Bus struct {
	workers    int
	bufferSize int
	logger     *slog.Logger

	ch chan Event
	wg sync.WaitGroup

	listenersMu sync.RWMutex
	listeners   []Listener

	// stateMu guards closed and the send on ch against a concurrent Close.
	stateMu   sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New starts a Bus. Without options it runs one worker over a 100 event
// buffer and logs through slog.Default.
func New(opts ...Option) *Bus {
	b := &Bus{
		workers:    defaultWorkers,
		bufferSize: defaultBufferSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.ch = make(chan Event, b.bufferSize)

	b.wg.Add(b.workers)
	for range b.workers {
		go func() {
			defer b.wg.Done()
			for e := range b.ch {
				b.dispatch(e)
			}
		}()
	}
	return b
}

func (b *Bus) dispatch(e Event) {
	b.listenersMu.RLock()
	listeners := append([]Listener(nil), b.listeners...)
	b.listenersMu.RUnlock()

	for _, l := range listeners {
		b.call(l, e)
	}
}

// call runs one listener; a panic is logged and does not reach the others.
func (b *Bus) call(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("eventbus: listener panicked",
				"kind", e.Kind, "build", e.describe(), "panic", r)
		}
	}()
	l(e)
}

// Publish enqueues e without blocking. It returns false, and the event is
// lost, when the buffer is full or the bus is closed. A zero Timestamp is
// set to the current time.
func (b *Bus) Publish(e Event) bool {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.stateMu.RLock()
	defer b.stateMu.RUnlock()
	if b.closed {
		b.logger.Warn("eventbus: closed, dropping event", "kind", e.Kind, "build", e.describe())
		return false
	}

	select {
	case b.ch <- e:
		return true
	default:
		b.logger.Warn("eventbus: buffer full, dropping event", "kind", e.Kind, "build", e.describe())
		return false
	}
}

// Subscribe registers a listener for every event published from now on.
func (b *Bus) Subscribe(l Listener) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Pending returns the number of queued events not yet picked up by a worker.
func (b *Bus) Pending() int {
	return len(b.ch)
}

// Close stops accepting events and blocks until every queued event has been
// dispatched. It is safe to call more than once.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.stateMu.Lock()
		b.closed = true
		close(b.ch)
		b.stateMu.Unlock()
	})
	b.wg.Wait()
}
