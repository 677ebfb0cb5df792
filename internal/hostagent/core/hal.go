package core

// HAL is the host hardware surface the agent touches in response to module
// events. Kept minimal so tests can intercept the irreversible parts.
type HAL interface {
	// Reset restarts the host unconditionally. On real hardware it does not
	// return; it only returns when the reset could not be issued.
	Reset() error
}
