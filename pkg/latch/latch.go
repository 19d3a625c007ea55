// Package latch hands canonical links to a single consumer. Links that arrive
// while nobody listens are held in a one-slot buffer and replayed on attach.
package latch

import (
	"errors"
	"sync"
)

var (
	// ErrConsumerAttached is raised when Attach is called while a consumer is set.
	ErrConsumerAttached = errors.New("latch: consumer already attached")
	// ErrDetachMismatch is raised when a stale Detach is invoked.
	ErrDetachMismatch = errors.New("latch: detach does not match the attached consumer")
)

// InvariantError is the panic value for misuse of the latch. These are
// programming errors, not runtime conditions.
type InvariantError struct {
	Err error
}

func (e *InvariantError) Error() string {
	return e.Err.Error()
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Consumer receives canonical links.
type Consumer func(link string)

// Detach removes the consumer registered by the Attach call that returned it.
type Detach func()

type registration struct {
	fn Consumer
}

// Latch holds at most one consumer and at most one undelivered link.
//
// Links bound for the consumer are handed over one at a time, in the order
// they were accepted. A Deliver that arrives while another hand-off is in
// progress, including one made from inside the consumer, is queued and
// handed over by the goroutine already delivering.
type Latch struct {
	mu       sync.Mutex
	consumer *registration
	pending  string
	buffered bool
	queue    []string
	draining bool
}

// New returns an empty latch.
func New() *Latch {
	return &Latch{}
}

// Deliver passes link to the consumer, or buffers it when none is attached.
// A buffered link replaces any previous one. It reports whether the link was
// accepted for the consumer rather than buffered.
func (l *Latch) Deliver(link string) bool {
	l.mu.Lock()
	if l.consumer == nil {
		l.pending = link
		l.buffered = true
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, link)
	if l.draining {
		l.mu.Unlock()
		return true
	}
	l.draining = true
	l.mu.Unlock()

	l.drain()
	return true
}

// Attach registers fn as the consumer. A buffered link is handed to fn before
// Attach returns. Attaching while another consumer is set panics with an
// *InvariantError wrapping ErrConsumerAttached.
func (l *Latch) Attach(fn Consumer) Detach {
	if fn == nil {
		panic(&InvariantError{Err: errors.New("latch: consumer is required")})
	}
	reg := &registration{fn: fn}

	l.mu.Lock()
	if l.consumer != nil {
		l.mu.Unlock()
		panic(&InvariantError{Err: ErrConsumerAttached})
	}
	l.consumer = reg
	if l.buffered {
		l.queue = append(l.queue, l.pending)
		l.pending, l.buffered = "", false
	}
	if l.draining || len(l.queue) == 0 {
		l.mu.Unlock()
		return func() { l.detach(reg) }
	}
	l.draining = true
	l.mu.Unlock()

	l.drain()
	return func() { l.detach(reg) }
}

// drain hands queued links to the current consumer until the queue is empty.
// If the consumer detaches midway, the newest queued link is buffered.
func (l *Latch) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.draining = false
			l.mu.Unlock()
			return
		}
		reg := l.consumer
		if reg == nil {
			l.pending = l.queue[len(l.queue)-1]
			l.buffered = true
			l.queue = nil
			l.draining = false
			l.mu.Unlock()
			return
		}
		link := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.hand(reg, link)
	}
}

func (l *Latch) hand(reg *registration, link string) {
	defer func() {
		if r := recover(); r != nil {
			l.mu.Lock()
			l.draining = false
			l.mu.Unlock()
			panic(r)
		}
	}()
	reg.fn(link)
}

func (l *Latch) detach(reg *registration) {
	l.mu.Lock()
	if l.consumer != reg {
		l.mu.Unlock()
		panic(&InvariantError{Err: ErrDetachMismatch})
	}
	l.consumer = nil
	l.mu.Unlock()
}

// Pending returns the buffered link, if any.
func (l *Latch) Pending() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending, l.buffered
}

// Attached reports whether a consumer is registered.
func (l *Latch) Attached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consumer != nil
}
