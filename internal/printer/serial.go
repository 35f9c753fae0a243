package printer

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// DefaultReadTimeout bounds a single status read
const DefaultReadTimeout = 3 * time.Second

// SerialTransport talks to the printer over a serial port, which is how an
// RFCOMM binding (/dev/rfcommN, or a COM port on Windows) shows up.
type SerialTransport struct {
	port     serial.Port
	portName string
}

// OpenSerial opens a connection to the printer on the given serial port
func OpenSerial(portName string, readTimeout time.Duration) (*SerialTransport, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}

	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &SerialTransport{port: port, portName: portName}, nil
}

// Send writes data, continuing after short writes
func (s *SerialTransport) Send(data []byte) error {
	if s.port == nil {
		return ErrNotConnected
	}

	for len(data) > 0 {
		n, err := s.port.Write(data)
		if err != nil {
			return fmt.Errorf("write %s: %w", s.portName, err)
		}
		data = data[n:]
	}
	return nil
}

// Receive performs one read. A read that times out with no data yields ErrTimeout.
func (s *SerialTransport) Receive(n int) ([]byte, error) {
	if s.port == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, n)
	got, err := s.port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.portName, err)
	}
	if got == 0 {
		return nil, ErrTimeout
	}
	return buf[:got], nil
}

// Close closes the serial port
func (s *SerialTransport) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
