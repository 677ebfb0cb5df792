package at

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"
)

// ErrTimeout is returned by Transport.ReadLine when no complete line arrives
// within the allotted time.
var ErrTimeout = errors.New("at: reply timeout")

// ErrClosed is returned once the underlying byte channel is gone.
var ErrClosed = errors.New("at: transport closed")

// Transport is the byte channel to the module: write command text, read one
// terminator-delimited reply. Implementations are supplied by the UART or
// TCP wiring; the engine is their only consumer after initialization.
type Transport interface {
	// WriteString sends raw command text to the module.
	WriteString(s string) error

	// ReadLine returns the next '\n'-terminated line including its
	// terminator, ErrTimeout if none arrives in time, or ErrClosed.
	ReadLine(ctx context.Context, timeout time.Duration) (string, error)

	// Drain discards any lines already received but not yet consumed and
	// reports how many were dropped. Used before sending a command so a
	// stale late reply cannot be correlated with the wrong request.
	Drain() int
}

// lineTransport adapts an io.ReadWriter into a line-oriented Transport. A
// background goroutine owns the read side; ReadLine only selects on its
// output, so the implementation needs no deadline support from rw.
type lineTransport struct {
	w     io.Writer
	lines chan string
	errCh chan error
	err   error
}

// NewTransport wraps rw into a line-oriented Transport and starts the
// reader goroutine, which exits when rw's Read fails (e.g. the port or
// socket is closed).
func NewTransport(rw io.ReadWriter) Transport {
	t := &lineTransport{
		w:     rw,
		lines: make(chan string, 8),
		errCh: make(chan error, 1),
	}
	go t.readLoop(rw)
	return t
}

func (t *lineTransport) readLoop(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			t.lines <- line
		}
		if err != nil {
			t.errCh <- err
			return
		}
	}
}

func (t *lineTransport) WriteString(s string) error {
	if t.err != nil {
		return ErrClosed
	}
	_, err := io.WriteString(t.w, s)
	return err
}

func (t *lineTransport) ReadLine(ctx context.Context, timeout time.Duration) (string, error) {
	if t.err != nil {
		return "", ErrClosed
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case line := <-t.lines:
		return line, nil
	case err := <-t.errCh:
		t.err = err
		return "", ErrClosed
	case <-timer.C:
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *lineTransport) pendingLines() int {
	return len(t.lines)
}

func (t *lineTransport) Drain() (n int) {
	for {
		select {
		case <-t.lines:
			n++
		default:
			return n
		}
	}
}
