package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Transport         string  `toml:"transport"`
	Address           string  `toml:"address"`
	Channel           int     `toml:"channel"`
	Port              string  `toml:"port"`
	USBVendorID       int64   `toml:"usb_vendor_id"`
	USBProductID      int64   `toml:"usb_product_id"`
	TapeMM            float64 `toml:"tape_mm"`
	Copies            int     `toml:"copies"`
	AutoCut           *bool   `toml:"auto_cut"`
	ReadTimeout       string  `toml:"read_timeout"`
	CompletionTimeout string  `toml:"completion_timeout"`
	MaxStatusPolls    int     `toml:"max_status_polls"`
	LogLevel          string  `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.ptouch-print/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".ptouch-print", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("transport", fc.Transport, &cfg.Transport)
	s.setString("address", fc.Address, &cfg.Address)
	s.setString("port", fc.Port, &cfg.Port)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("channel", fc.Channel, &cfg.Channel)
	s.setInt("copies", fc.Copies, &cfg.Copies)
	s.setInt("max-status-polls", fc.MaxStatusPolls, &cfg.MaxStatusPolls)
	s.setFloat("tape", fc.TapeMM, &cfg.TapeMM)

	if err := s.setUint16("usb-vendor-id", fc.USBVendorID, &cfg.USBVendorID); err != nil {
		return err
	}
	if err := s.setUint16("usb-product-id", fc.USBProductID, &cfg.USBProductID); err != nil {
		return err
	}

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("completion-timeout", fc.CompletionTimeout, &cfg.CompletionTimeout); err != nil {
		return err
	}

	s.setBool("auto-cut", fc.AutoCut, &cfg.AutoCut)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
