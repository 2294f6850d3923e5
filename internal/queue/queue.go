// Package queue buffers records between the producer that ticks the
// simulation and the storage writer that flushes them in batches.
package queue

import (
	"sync"
)

// Batch is a thread-safe buffer that reports when it holds a full batch.
// A size of zero or less never reports full.
type Batch[T any] struct {
	mu    sync.Mutex
	items []T
	size  int
}

// New creates an empty batch buffer of the given size.
func New[T any](size int) *Batch[T] {
	c := size
	if c < 0 {
		c = 0
	}
	return &Batch[T]{
		items: make([]T, 0, c),
		size:  size,
	}
}

// Push appends items and reports whether the buffer reached its batch size.
func (b *Batch[T]) Push(items ...T) (full bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, items...)
	return b.size > 0 && len(b.items) >= b.size
}

// Len returns the number of buffered items.
func (b *Batch[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Empty returns true if nothing is buffered.
func (b *Batch[T]) Empty() bool {
	return b.Len() == 0
}

// Drain returns all buffered items and empties the buffer.
// The returned slice is owned by the caller.
func (b *Batch[T]) Drain() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	result := b.items
	b.items = make([]T, 0, cap(result))
	return result
}

// Requeue puts items back at the front, ahead of anything pushed since the
// drain that returned them. Used when a flush fails.
func (b *Batch[T]) Requeue(items []T) {
	if len(items) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(append(make([]T, 0, len(items)+len(b.items)), items...), b.items...)
}
