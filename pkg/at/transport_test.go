package at

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestLineTransportReadLine(t *testing.T) {
	host, module := net.Pipe()
	defer host.Close()
	defer module.Close()

	tr := NewTransport(host)

	go func() {
		module.Write([]byte("OK 1 1 MSG\r\n"))
	}()

	line, err := tr.ReadLine(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("ReadLine() error: %v", err)
	}
	if line != "OK 1 1 MSG\r\n" {
		t.Errorf("ReadLine() = %q, want terminator preserved", line)
	}
}

func TestLineTransportTimeout(t *testing.T) {
	host, module := net.Pipe()
	defer host.Close()
	defer module.Close()

	tr := NewTransport(host)

	if _, err := tr.ReadLine(context.Background(), 20*time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("ReadLine() error = %v, want ErrTimeout", err)
	}
}

func TestLineTransportDrain(t *testing.T) {
	host, module := net.Pipe()
	defer host.Close()

	tr := NewTransport(host)

	go func() {
		module.Write([]byte("OK\r\nOK 5 1 OTA\r\n"))
		module.Close()
	}()

	// Wait for both lines to land in the buffer.
	deadline := time.Now().Add(time.Second)
	for tr.(*lineTransport).pendingLines() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("lines never buffered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if n := tr.Drain(); n != 2 {
		t.Errorf("Drain() = %d, want 2", n)
	}
	if n := tr.Drain(); n != 0 {
		t.Errorf("second Drain() = %d, want 0", n)
	}
}

func TestLineTransportClosed(t *testing.T) {
	host, module := net.Pipe()

	tr := NewTransport(host)
	module.Close()
	host.Close()

	if _, err := tr.ReadLine(context.Background(), time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadLine() after close = %v, want ErrClosed", err)
	}
	if err := tr.WriteString("AT+CONNECT\n"); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteString() after close = %v, want ErrClosed", err)
	}
}
