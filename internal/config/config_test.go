package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptouch-print/internal/media"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, TransportBluetooth, cfg.Transport)
	assert.Equal(t, 1, cfg.Channel)
	assert.Equal(t, uint16(0x04F9), cfg.USBVendorID)
	assert.Equal(t, uint16(0x20AF), cfg.USBProductID)
	assert.Equal(t, 24.0, cfg.TapeMM)
	assert.True(t, cfg.AutoCut)
	assert.Equal(t, 60*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 64, cfg.MaxStatusPolls)

	opts := cfg.SessionOptions()
	assert.Equal(t, 64, opts.MaxStatusPolls)
	assert.True(t, opts.AutoCut)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.Address = "AA:BB:CC:DD:EE:FF"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "bluetooth", mutate: func(c *Config) {}},
		{name: "transport is case insensitive", mutate: func(c *Config) { c.Transport = " USB " }},
		{name: "serial", mutate: func(c *Config) { c.Transport = "serial"; c.Port = "/dev/rfcomm0" }},
		{name: "3.5mm alias", mutate: func(c *Config) { c.TapeMM = 4 }},
		{name: "missing address", mutate: func(c *Config) { c.Address = "" }, wantErr: "address is required"},
		{name: "bad channel", mutate: func(c *Config) { c.Channel = 31 }, wantErr: "out of range"},
		{name: "missing port", mutate: func(c *Config) { c.Transport = "serial" }, wantErr: "port is required"},
		{name: "missing usb id", mutate: func(c *Config) { c.Transport = "usb"; c.USBProductID = 0 }, wantErr: "usb vendor and product id"},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "wifi" }, wantErr: "unknown transport"},
		{name: "unsupported tape", mutate: func(c *Config) { c.TapeMM = 36 }, wantErr: "36"},
		{name: "zero copies", mutate: func(c *Config) { c.Copies = 0 }, wantErr: "copies"},
		{name: "zero read timeout", mutate: func(c *Config) { c.ReadTimeout = 0 }, wantErr: "read timeout"},
		{name: "zero completion timeout", mutate: func(c *Config) { c.CompletionTimeout = 0 }, wantErr: "completion timeout"},
		{name: "zero polls", mutate: func(c *Config) { c.MaxStatusPolls = 0 }, wantErr: "max status polls"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTape(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TapeMM = 12

	tape, err := cfg.Tape()
	require.NoError(t, err)
	assert.Equal(t, media.Tape12mm, tape)

	cfg.TapeMM = 5
	_, err = cfg.Tape()
	assert.ErrorIs(t, err, media.ErrUnsupportedTape)
}

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Transport:         "usb",
				Address:           "AA:BB:CC:DD:EE:FF",
				Channel:           2,
				Port:              "/dev/ttyUSB0",
				USBVendorID:       0x04F9,
				USBProductID:      0x2061,
				TapeMM:            12,
				Copies:            3,
				AutoCut:           &falseVal,
				ReadTimeout:       "2s",
				CompletionTimeout: "90s",
				MaxStatusPolls:    10,
				LogLevel:          "debug",
			},
			changed: map[string]bool{},
			initial: Config{AutoCut: true},
			expected: Config{
				Transport:         "usb",
				Address:           "AA:BB:CC:DD:EE:FF",
				Channel:           2,
				Port:              "/dev/ttyUSB0",
				USBVendorID:       0x04F9,
				USBProductID:      0x2061,
				TapeMM:            12,
				Copies:            3,
				AutoCut:           false,
				ReadTimeout:       2 * time.Second,
				CompletionTimeout: 90 * time.Second,
				MaxStatusPolls:    10,
				LogLevel:          "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Address: "AA:BB:CC:DD:EE:FF",
				TapeMM:  12,
				AutoCut: &trueVal,
			},
			changed:  map[string]bool{"address": true, "tape": true, "auto-cut": true},
			initial:  Config{Address: "11:22:33:44:55:66", TapeMM: 24},
			expected: Config{Address: "11:22:33:44:55:66", TapeMM: 24},
		},
		{
			name:       "empty values keep defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{ReadTimeout: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for usb id out of range",
			fileConfig: FileConfig{USBVendorID: 0x10000},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
transport = "serial"
port = "/dev/rfcomm0"
tape_mm = 3.5
usb_product_id = 0x20AF
auto_cut = false
completion_timeout = "2m"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	assert.True(t, FileExists(path))

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "serial", fc.Transport)
	assert.Equal(t, "/dev/rfcomm0", fc.Port)
	assert.Equal(t, 3.5, fc.TapeMM)
	assert.Equal(t, int64(0x20AF), fc.USBProductID)
	require.NotNil(t, fc.AutoCut)
	assert.False(t, *fc.AutoCut)

	cfg := DefaultConfig()
	require.NoError(t, ApplyFileConfig(&cfg, fc, map[string]bool{}))
	assert.Equal(t, 2*time.Minute, cfg.CompletionTimeout)
	require.NoError(t, cfg.Validate())

	tape, err := cfg.Tape()
	require.NoError(t, err)
	assert.Equal(t, media.Tape3_5mm, tape)
}

func TestLoadFileConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFileConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, FileExists(filepath.Join(dir, "missing.toml")))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("transport = \n"), 0o600))
	_, err = LoadFileConfig(bad)
	assert.Error(t, err)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/labels")
	assert.Equal(t, filepath.Join("/home/labels", ".ptouch-print", "config.toml"), DefaultConfigPath())
}

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"PTOUCH_TRANSPORT":          "usb",
				"PTOUCH_ADDRESS":            "AA:BB:CC:DD:EE:FF",
				"PTOUCH_CHANNEL":            "3",
				"PTOUCH_PORT":               "COM4",
				"PTOUCH_USB_VENDOR_ID":      "0x04f9",
				"PTOUCH_USB_PRODUCT_ID":     "8367",
				"PTOUCH_TAPE":               "9",
				"PTOUCH_COPIES":             "2",
				"PTOUCH_AUTO_CUT":           "1",
				"PTOUCH_READ_TIMEOUT":       "500ms",
				"PTOUCH_COMPLETION_TIMEOUT": "1m",
				"PTOUCH_MAX_STATUS_POLLS":   "8",
				"PTOUCH_LOG_LEVEL":          "warn",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Transport:         "usb",
				Address:           "AA:BB:CC:DD:EE:FF",
				Channel:           3,
				Port:              "COM4",
				USBVendorID:       0x04F9,
				USBProductID:      8367,
				TapeMM:            9,
				Copies:            2,
				AutoCut:           true,
				ReadTimeout:       500 * time.Millisecond,
				CompletionTimeout: time.Minute,
				MaxStatusPolls:    8,
				LogLevel:          "warn",
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"PTOUCH_ADDRESS": "AA:BB:CC:DD:EE:FF",
				"PTOUCH_COPIES":  "5",
			},
			changed:  map[string]bool{"address": true},
			initial:  Config{Address: "flag"},
			expected: Config{Address: "flag", Copies: 5},
		},
		{
			name:     "reads tape_mm alias",
			envVars:  map[string]string{"PTOUCH_TAPE_MM": "12"},
			changed:  map[string]bool{},
			initial:  Config{TapeMM: 24},
			expected: Config{TapeMM: 12},
		},
		{
			name:     "tape wins over tape_mm",
			envVars:  map[string]string{"PTOUCH_TAPE": "6", "PTOUCH_TAPE_MM": "12"},
			changed:  map[string]bool{},
			initial:  Config{TapeMM: 24},
			expected: Config{TapeMM: 6},
		},
		{
			name:     "tape_mm respects the tape flag",
			envVars:  map[string]string{"PTOUCH_TAPE_MM": "12"},
			changed:  map[string]bool{"tape": true},
			initial:  Config{TapeMM: 18},
			expected: Config{TapeMM: 18},
		},
		{
			name:     "handles bool 'false' as false",
			envVars:  map[string]string{"PTOUCH_AUTO_CUT": "false"},
			changed:  map[string]bool{},
			initial:  Config{AutoCut: true},
			expected: Config{AutoCut: false},
		},
		{
			name:    "returns error for invalid duration",
			envVars: map[string]string{"PTOUCH_COMPLETION_TIMEOUT": "forever"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid int",
			envVars: map[string]string{"PTOUCH_COPIES": "many"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for invalid float",
			envVars: map[string]string{"PTOUCH_TAPE": "wide"},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name:    "returns error for usb id overflow",
			envVars: map[string]string{"PTOUCH_USB_VENDOR_ID": "0x10000"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, Logger("debug").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Logger("").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Logger("nonsense").GetLevel())
}
