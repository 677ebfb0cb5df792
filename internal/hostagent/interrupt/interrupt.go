// Package interrupt carries the module's event-line signal from its
// producer context to the agent's main loop.
package interrupt

import "sync/atomic"

// Flag is the single shared pending-event indicator. It has exactly one
// producer (the event-line source) and one consumer (the event machine):
// Set is only called from the producer side, Pending/Clear only from the
// consumer after a completed classification pass. The module's event queue
// stays authoritative; the flag only wakes the loop.
type Flag struct {
	pending atomic.Bool
	notify  chan struct{}
}

// NewFlag creates a cleared flag.
func NewFlag() *Flag {
	return &Flag{notify: make(chan struct{}, 1)}
}

// Set marks an event pending and wakes the consumer. Multiple edges before
// the consumer runs collapse into one wakeup; the consumer re-polls the
// module's queue anyway.
func (f *Flag) Set() {
	f.pending.Store(true)
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Pending reports whether an event edge arrived since the last Clear.
func (f *Flag) Pending() bool {
	return f.pending.Load()
}

// Clear resets the flag. Consumer side only, once a polling pass finished.
func (f *Flag) Clear() {
	f.pending.Store(false)
}

// Notify returns the wakeup channel the consumer selects on.
func (f *Flag) Notify() <-chan struct{} {
	return f.notify
}
