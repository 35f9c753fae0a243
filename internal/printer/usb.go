package printer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/gousb"
)

// USB identifiers of the PT-P710BT
const (
	BrotherVendorID   = 0x04F9
	PTP710BTProductID = 0x20AF
)

// ifaceClassPrinter is the USB printer interface class
const ifaceClassPrinter = gousb.ClassPrinter

var ErrNoPrinterInterface = errors.New("no printer interface found")

// USBTransport talks to the printer over the bulk endpoints of its USB
// printer-class interface.
type USBTransport struct {
	ctx         *gousb.Context
	device      *gousb.Device
	config      *gousb.Config
	iface       *gousb.Interface
	outEndpoint *gousb.OutEndpoint
	inEndpoint  *gousb.InEndpoint
	readTimeout time.Duration
}

// OpenUSB opens the device with the given vendor and product ID and claims
// its printer interface.
func OpenUSB(vid, pid uint16, readTimeout time.Duration) (*USBTransport, error) {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	u := &USBTransport{ctx: gousb.NewContext(), readTimeout: readTimeout}

	if err := u.open(vid, pid); err != nil {
		u.Close()
		return nil, err
	}
	return u, nil
}

func (u *USBTransport) open(vid, pid uint16) error {
	device, err := u.ctx.OpenDeviceWithVIDPID(gousb.ID(vid), gousb.ID(pid))
	if err != nil {
		return fmt.Errorf("open device %04x:%04x: %w", vid, pid, err)
	}
	if device == nil {
		return fmt.Errorf("device %04x:%04x not found", vid, pid)
	}
	u.device = device

	// Set auto-detach kernel driver on Linux
	if runtime.GOOS == "linux" {
		if err := device.SetAutoDetach(true); err != nil {
			return fmt.Errorf("failed to set auto-detach: %w", err)
		}
	}

	cfgNum, err := device.ActiveConfigNum()
	if err != nil {
		return fmt.Errorf("failed to get active config: %w", err)
	}
	cfg, err := device.Config(cfgNum)
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	u.config = cfg

	ifaceNum, altNum := -1, 0
	for _, iface := range cfg.Desc.Interfaces {
		for _, alt := range iface.AltSettings {
			if alt.Class == ifaceClassPrinter {
				ifaceNum, altNum = iface.Number, alt.Alternate
				break
			}
		}
		if ifaceNum >= 0 {
			break
		}
	}
	if ifaceNum < 0 {
		return ErrNoPrinterInterface
	}

	iface, err := cfg.Interface(ifaceNum, altNum)
	if err != nil {
		return fmt.Errorf("failed to claim interface: %w", err)
	}
	u.iface = iface

	for _, ep := range iface.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeBulk {
			continue
		}
		switch {
		case ep.Direction == gousb.EndpointDirectionOut && u.outEndpoint == nil:
			if u.outEndpoint, err = iface.OutEndpoint(ep.Number); err != nil {
				return fmt.Errorf("open output endpoint: %w", err)
			}
		case ep.Direction == gousb.EndpointDirectionIn && u.inEndpoint == nil:
			if u.inEndpoint, err = iface.InEndpoint(ep.Number); err != nil {
				return fmt.Errorf("open input endpoint: %w", err)
			}
		}
	}

	if u.outEndpoint == nil || u.inEndpoint == nil {
		return errors.New("printer interface lacks bulk endpoints")
	}
	return nil
}

// Send writes data to the bulk OUT endpoint
func (u *USBTransport) Send(data []byte) error {
	if u.outEndpoint == nil {
		return ErrNotConnected
	}

	for len(data) > 0 {
		n, err := u.outEndpoint.Write(data)
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// Receive reads one transfer from the bulk IN endpoint
func (u *USBTransport) Receive(n int) ([]byte, error) {
	if u.inEndpoint == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), u.readTimeout)
	defer cancel()

	buf := make([]byte, n)
	got, err := u.inEndpoint.ReadContext(ctx, buf)
	if err != nil {
		if ctx.Err() != nil && got == 0 {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("read failed: %w", err)
	}
	if got == 0 {
		return nil, ErrTimeout
	}
	return buf[:got], nil
}

// Close releases the interface, the device and the libusb context
func (u *USBTransport) Close() error {
	var errs []error

	if u.iface != nil {
		u.iface.Close()
		u.iface = nil
	}
	if u.config != nil {
		if err := u.config.Close(); err != nil {
			errs = append(errs, err)
		}
		u.config = nil
	}
	if u.device != nil {
		if err := u.device.Close(); err != nil {
			errs = append(errs, err)
		}
		u.device = nil
	}
	if u.ctx != nil {
		if err := u.ctx.Close(); err != nil {
			errs = append(errs, err)
		}
		u.ctx = nil
	}
	u.outEndpoint, u.inEndpoint = nil, nil

	return errors.Join(errs...)
}
