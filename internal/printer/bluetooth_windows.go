//go:build windows

package printer

import (
	"fmt"
	"strings"
	"time"
)

// OpenBluetooth opens the COM port (e.g. "COM3") Windows created when the
// printer was paired. The channel is chosen by the Bluetooth stack.
func OpenBluetooth(port string, channel int, readTimeout time.Duration) (*SerialTransport, error) {
	if !strings.HasPrefix(strings.ToUpper(port), "COM") {
		return nil, fmt.Errorf("%w: %q is not a COM port", ErrInvalidAddress, port)
	}

	// For COM ports > 9, need to use \\.\COM10 format
	if len(port) > 4 {
		port = `\\.\` + port
	}
	return OpenSerial(port, readTimeout)
}
