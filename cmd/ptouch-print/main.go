package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"ptouch-print/internal/config"
	"ptouch-print/internal/printer"
)

const longHelp = `Print labels on a Brother PT-P710BT over Bluetooth, serial or USB.

Images are printed along the tape: their height must match the printable
height of the loaded tape (128 dots on 24mm tape) unless --fit is given.
Every pixel that is not fully transparent is printed; use --threshold for
images without transparency.

Settings come from defaults, then $HOME/.ptouch-print/config.toml, then
PTOUCH_* environment variables, then flags.`

var exampleUsage = strings.TrimSpace(`
  ptouch-print --address AA:BB:CC:DD:EE:FF print label.png
  ptouch-print --transport usb --tape 12 text "Hello"
  ptouch-print --tape 9 preview --text "Cable 7" -o cable.png
  ptouch-print --tape 18 barcode --symbology code39 SHELF-3 SHELF-4
  PTOUCH_TRANSPORT=serial PTOUCH_PORT=/dev/rfcomm0 ptouch-print status
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration between cobra hooks and commands
type app struct {
	cfg     config.Config
	cfgPath string
	verbose bool
	log     zerolog.Logger
}

func main() {
	a := &app{cfg: config.DefaultConfig(), log: config.Logger("info")}

	root := &cobra.Command{
		Use:           "ptouch-print",
		Short:         "Print labels on a Brother PT-P710BT",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.ptouch-print/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every command and status frame")
	flags.StringVar(&a.cfg.Transport, "transport", a.cfg.Transport, "printer connection: bluetooth, serial or usb")
	flags.StringVar(&a.cfg.Address, "address", a.cfg.Address, "bluetooth address of the printer (COM port on Windows)")
	flags.IntVar(&a.cfg.Channel, "channel", a.cfg.Channel, "RFCOMM channel")
	flags.StringVar(&a.cfg.Port, "port", a.cfg.Port, "serial port for the serial transport")
	flags.Uint16Var(&a.cfg.USBVendorID, "usb-vendor-id", a.cfg.USBVendorID, "USB vendor id")
	flags.Uint16Var(&a.cfg.USBProductID, "usb-product-id", a.cfg.USBProductID, "USB product id")
	flags.Float64Var(&a.cfg.TapeMM, "tape", a.cfg.TapeMM, "tape width in mm: 24, 18, 12, 9, 6 or 3.5")
	flags.IntVar(&a.cfg.Copies, "copies", a.cfg.Copies, "number of copies")
	flags.BoolVar(&a.cfg.AutoCut, "auto-cut", a.cfg.AutoCut, "cut the tape after every copy")
	flags.DurationVar(&a.cfg.ReadTimeout, "read-timeout", a.cfg.ReadTimeout, "timeout of a single status read")
	flags.DurationVar(&a.cfg.CompletionTimeout, "completion-timeout", a.cfg.CompletionTimeout, "how long to wait for a copy to finish")
	flags.IntVar(&a.cfg.MaxStatusPolls, "max-status-polls", a.cfg.MaxStatusPolls, "status reads allowed while waiting for a copy")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		a.printCommand(),
		a.textCommand(),
		a.barcodeCommand(),
		a.previewCommand(),
		a.statusCommand(),
	)

	if err := root.Execute(); err != nil {
		a.log.Error().Err(err).Msg("ptouch-print")
		os.Exit(1)
	}
}

// load layers the config file, environment and flags, in that order of
// precedence from lowest to highest. Commands that talk to the printer
// need a fully valid config; the others only need a known tape.
func (a *app) load(cmd *cobra.Command, needPrinter bool) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := config.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if a.verbose {
		a.cfg.LogLevel = zerolog.LevelDebugValue
	}
	a.log = config.Logger(a.cfg.LogLevel)

	if needPrinter {
		if err := a.cfg.Validate(); err != nil {
			return err
		}
	} else if _, err := a.cfg.Tape(); err != nil {
		return err
	}

	a.log.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

// open connects to the printer with the configured transport
func (a *app) open() (printer.Transport, error) {
	switch a.cfg.Transport {
	case config.TransportBluetooth:
		a.log.Info().Str("address", a.cfg.Address).Int("channel", a.cfg.Channel).Msg("connecting")
		t, err := printer.OpenBluetooth(a.cfg.Address, a.cfg.Channel, a.cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportSerial:
		t, err := printer.OpenSerial(a.cfg.Port, a.cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportUSB:
		t, err := printer.OpenUSB(a.cfg.USBVendorID, a.cfg.USBProductID, a.cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown transport %q", a.cfg.Transport)
}

// printJobs prints every job over one connection, one session per job
func (a *app) printJobs(jobs []*printer.Job) error {
	return printer.WithTransport(a.open, func(t printer.Transport) error {
		for i, job := range jobs {
			log := a.log.With().Int("job", i+1).Int("jobs", len(jobs)).Logger()
			log.Info().
				Str("tape", job.Tape().Name).
				Int("lines", job.Lines()).
				Int("copies", job.Copies()).
				Msg("printing")

			s := printer.NewSession(t, log, a.cfg.SessionOptions())
			if err := s.Print(job); err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
		}
		return nil
	})
}
