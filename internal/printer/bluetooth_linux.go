//go:build linux

package printer

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// RFCOMMSocket is a connected Bluetooth RFCOMM stream socket. Unlike an
// /dev/rfcommN binding it needs no privileges.
type RFCOMMSocket struct {
	mu   sync.Mutex
	fd   int
	addr string
}

// OpenBluetooth connects to the printer's serial port profile on the given
// channel. A read that sees nothing for readTimeout yields ErrTimeout.
func OpenBluetooth(mac string, channel int, readTimeout time.Duration) (*RFCOMMSocket, error) {
	bdaddr, err := parseBDAddr(mac)
	if err != nil {
		return nil, err
	}
	if channel < 1 || channel > 30 {
		return nil, fmt.Errorf("%w: channel %d out of range", ErrRFCOMMFailed, channel)
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("%w: socket: %w", ErrRFCOMMFailed, err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: bdaddr, Channel: uint8(channel)}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: connect %s channel %d: %w", ErrRFCOMMFailed, mac, channel, err)
	}

	s, err := newRFCOMMSocket(fd, mac, readTimeout)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return s, nil
}

func newRFCOMMSocket(fd int, addr string, readTimeout time.Duration) (*RFCOMMSocket, error) {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	tv := unix.NsecToTimeval(readTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", addr, err)
	}
	return &RFCOMMSocket{fd: fd, addr: addr}, nil
}

// parseBDAddr turns AA:BB:CC:DD:EE:FF into the little-endian bdaddr the
// kernel expects.
func parseBDAddr(mac string) ([6]uint8, error) {
	var addr [6]uint8
	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != len(addr) {
		return addr, fmt.Errorf("%w: %q", ErrInvalidAddress, mac)
	}
	for i := range addr {
		addr[i] = hw[len(hw)-1-i]
	}
	return addr, nil
}

// Send writes data, continuing after short writes
func (s *RFCOMMSocket) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return ErrNotConnected
	}

	for len(data) > 0 {
		n, err := unix.Write(s.fd, data)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", s.addr, err)
		}
		data = data[n:]
	}
	return nil
}

// Receive performs one read. A read that times out with no data yields ErrTimeout.
func (s *RFCOMMSocket) Receive(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return nil, ErrNotConnected
	}

	buf := make([]byte, n)
	for {
		got, err := unix.Read(s.fd, buf)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return nil, ErrTimeout
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", s.addr, err)
		case got == 0:
			return nil, fmt.Errorf("read %s: %w", s.addr, io.EOF)
		}
		return buf[:got], nil
	}
}

// Close closes the socket. Closing twice is a no-op.
func (s *RFCOMMSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd < 0 {
		return nil
	}
	err := unix.Close(s.fd)
	s.fd = -1
	return err
}
