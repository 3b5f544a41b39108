// Package mailbox provides a single-slot buffer where the latest job wins.
package mailbox

import (
	"context"
	"sync"
)

// Mailbox is NOT a queue. It holds at most one pending job and Put
// overwrites whatever is waiting.
type Mailbox[T any] struct {
	mu     sync.Mutex
	job    *T
	notify chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores a job, replacing any existing one. It never blocks.
func (m *Mailbox[T]) Put(j T) {
	m.mu.Lock()
	m.job = &j
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Ready fires after Put. A receive does not guarantee a job is still
// waiting; follow it with TryTake.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.notify
}

// Take blocks until a job is available or ctx is done.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		if j := m.TryTake(); j != nil {
			return *j, true
		}
		select {
		case <-m.notify:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// TryTake returns the job if present, or nil if empty. It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.job == nil {
		return nil
	}

	j := m.job
	m.job = nil
	return j
}

// HasJob reports whether a job is currently waiting.
func (m *Mailbox[T]) HasJob() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.job != nil
}
