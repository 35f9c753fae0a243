package printer

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("printer not connected")
	ErrTimeout      = errors.New("operation timed out")
)

// Transport is a byte-stream connection to a printer
type Transport interface {
	// Send writes all of data or fails
	Send(data []byte) error

	// Receive performs a single read of at most n bytes. It may return fewer
	// bytes than requested; it returns ErrTimeout when nothing arrived.
	Receive(n int) ([]byte, error)

	// Close releases the connection
	Close() error
}

// OpenFunc opens a transport
type OpenFunc func() (Transport, error)

// TransportError wraps a failure reported by a transport
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// WithTransport opens a transport, runs fn with it and closes it on every
// exit path, panics included. A close error is joined to fn's error.
func WithTransport(open OpenFunc, fn func(Transport) error) (err error) {
	t, err := open()
	if err != nil {
		return &TransportError{Op: "open", Err: err}
	}
	defer func() {
		if cerr := t.Close(); cerr != nil {
			err = errors.Join(err, &TransportError{Op: "close", Err: cerr})
		}
	}()

	return fn(t)
}
