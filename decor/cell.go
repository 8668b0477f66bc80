package decor

import "sync/atomic"

// AtomicCell is a reference cell whose content can be exchanged atomically.
//
// Hosts that want to support the AtomicSwap strategy keep their shared register
// in an AtomicCell and expose it through CellHost.
//
// The zero value holds the zero T.
type AtomicCell[T any] struct {
	p atomic.Pointer[T]
}

// NewAtomicCell returns a cell holding v.
func NewAtomicCell[T any](v T) *AtomicCell[T] {
	c := &AtomicCell[T]{}
	c.Store(v)
	return c
}

// Load returns the current value.
func (c *AtomicCell[T]) Load() T {
	if p := c.p.Load(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Store replaces the current value.
func (c *AtomicCell[T]) Store(v T) {
	c.p.Store(&v)
}

// Exchange stores v and returns the previous value in one atomic step.
func (c *AtomicCell[T]) Exchange(v T) T {
	if old := c.p.Swap(&v); old != nil {
		return *old
	}
	var zero T
	return zero
}
