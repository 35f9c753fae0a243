//go:build !linux && !windows

package printer

import (
	"errors"
	"time"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

// OpenBluetooth always fails; use the serial transport with a port the
// operating system created for the paired printer.
func OpenBluetooth(mac string, channel int, readTimeout time.Duration) (*SerialTransport, error) {
	return nil, ErrNotSupported
}
