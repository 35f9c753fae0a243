package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ptouch-print/internal/media"
	"ptouch-print/internal/printer"
)

// Transports
const (
	TransportBluetooth = "bluetooth"
	TransportSerial    = "serial"
	TransportUSB       = "usb"
)

// Config holds CLI configuration for ptouch-print.
type Config struct {
	Transport string

	// Bluetooth address (or COM port on Windows) and RFCOMM channel
	Address string
	Channel int

	// Serial port, e.g. /dev/rfcomm0 bound by hand
	Port string

	USBVendorID  uint16
	USBProductID uint16

	TapeMM  float64
	Copies  int
	AutoCut bool

	ReadTimeout       time.Duration
	CompletionTimeout time.Duration
	MaxStatusPolls    int

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Transport:         TransportBluetooth,
		Channel:           printer.DefaultRFCOMMChannel,
		USBVendorID:       printer.BrotherVendorID,
		USBProductID:      printer.PTP710BTProductID,
		TapeMM:            24,
		Copies:            1,
		AutoCut:           true,
		ReadTimeout:       printer.DefaultReadTimeout,
		CompletionTimeout: printer.DefaultCompletionTimeout,
		MaxStatusPolls:    printer.DefaultMaxStatusPolls,
		LogLevel:          "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case TransportBluetooth:
		if c.Address == "" {
			return fmt.Errorf("address is required for the bluetooth transport")
		}
		if c.Channel < 1 || c.Channel > 30 {
			return fmt.Errorf("rfcomm channel %d out of range 1-30", c.Channel)
		}
	case TransportSerial:
		if c.Port == "" {
			return fmt.Errorf("port is required for the serial transport")
		}
	case TransportUSB:
		if c.USBVendorID == 0 || c.USBProductID == 0 {
			return fmt.Errorf("usb vendor and product id are required for the usb transport")
		}
	default:
		return fmt.Errorf("unknown transport %q (want bluetooth, serial or usb)", c.Transport)
	}

	if _, err := c.Tape(); err != nil {
		return err
	}
	if c.Copies < 1 {
		return fmt.Errorf("copies must be at least 1")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.CompletionTimeout <= 0 {
		return fmt.Errorf("completion timeout must be positive")
	}
	if c.MaxStatusPolls <= 0 {
		return fmt.Errorf("max status polls must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

// Tape returns the tape profile for TapeMM
func (c *Config) Tape() (media.Tape, error) {
	return media.Lookup(c.TapeMM)
}

// SessionOptions returns the print session settings
func (c *Config) SessionOptions() printer.Options {
	return printer.Options{
		MaxStatusPolls:    c.MaxStatusPolls,
		CompletionTimeout: c.CompletionTimeout,
		AutoCut:           c.AutoCut,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setUint16 rejects values that do not fit a USB id
func (s *configSetter) setUint16(flag string, value int64, dst *uint16) error {
	if value == 0 || s.changed[flag] {
		return nil
	}
	if value < 0 || value > 0xFFFF {
		return fmt.Errorf("%s: %d out of range", flag, value)
	}
	*dst = uint16(value)
	return nil
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setUint16FromString accepts decimal or 0x-prefixed hex
func (s *configSetter) setUint16FromString(flag, value string, dst *uint16) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	u, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = uint16(u)
	return nil
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
