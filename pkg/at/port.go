package at

import (
	"fmt"
	"net"

	"go.bug.st/serial"
)

// OpenSerial opens the UART connected to the module and wraps it into a
// line-oriented Transport.
func OpenSerial(device string, baudRate int) (Transport, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial device %s: %w", device, err)
	}
	return NewTransport(port), nil
}

// DialTCP connects to an AT endpoint over TCP (ccm-sim in development) and
// wraps it into a line-oriented Transport.
func DialTCP(addr string) (Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial AT endpoint %s: %w", addr, err)
	}
	return NewTransport(conn), nil
}
