package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PTOUCH_TAPE
const EnvPrefix = "PTOUCH"

func envReader() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnvConfig applies configuration from environment variables (PTOUCH_*).
// Keys are the flag names upper-cased with dashes turned into underscores;
// PTOUCH_TAPE_MM is also read, after the tape_mm file key.
// It respects flags that have been explicitly set (changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	v := envReader()
	s := newConfigSetter(changed)

	s.setString("transport", v.GetString("transport"), &cfg.Transport)
	s.setString("address", v.GetString("address"), &cfg.Address)
	s.setString("port", v.GetString("port"), &cfg.Port)
	s.setString("log-level", v.GetString("log-level"), &cfg.LogLevel)

	for flag, dst := range map[string]*int{
		"channel":          &cfg.Channel,
		"copies":           &cfg.Copies,
		"max-status-polls": &cfg.MaxStatusPolls,
	} {
		if err := s.setIntFromString(flag, v.GetString(flag), dst); err != nil {
			return err
		}
	}

	tape := v.GetString("tape")
	if tape == "" {
		tape = v.GetString("tape-mm")
	}
	if err := s.setFloatFromString("tape", tape, &cfg.TapeMM); err != nil {
		return err
	}
	if err := s.setUint16FromString("usb-vendor-id", v.GetString("usb-vendor-id"), &cfg.USBVendorID); err != nil {
		return err
	}
	if err := s.setUint16FromString("usb-product-id", v.GetString("usb-product-id"), &cfg.USBProductID); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", v.GetString("read-timeout"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("completion-timeout", v.GetString("completion-timeout"), &cfg.CompletionTimeout); err != nil {
		return err
	}

	s.setBoolFromString("auto-cut", v.GetString("auto-cut"), &cfg.AutoCut)

	return nil
}
