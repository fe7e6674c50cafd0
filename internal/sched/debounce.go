package sched

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of values into a single trailing delivery.
// The last triggered value always wins, and a trailing flush is guaranteed
// after activity stops; the final state is never dropped. Used for resize
// and scroll bursts that would otherwise each schedule a pass.
type Debouncer[T any] struct {
	mu sync.Mutex

	interval time.Duration
	fn       func(T)

	timer   *time.Timer
	pending T
	armed   bool
	stopped bool
}

// NewDebouncer creates a debouncer that delivers the most recent value to fn
// once no Trigger has arrived for the given interval.
func NewDebouncer[T any](interval time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{interval: interval, fn: fn}
}

// Trigger records a value and (re)arms the trailing timer.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = v
	d.armed = true

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.fire)
}

// fire delivers the pending value outside the lock.
func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return
	}
	v := d.pending
	d.armed = false
	d.mu.Unlock()

	d.fn(v)
}

// Flush delivers the pending value immediately, if one is armed.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.fire()
}

// Stop halts the debouncer. An armed final value is delivered before the
// debouncer goes quiet, honoring the trailing-flush guarantee.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.fire()
}
