package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ptouch-print/internal/imaging"
	"ptouch-print/internal/media"
	"ptouch-print/internal/printer"
)

// imageOptions are the flags shared by commands that take image files
type imageOptions struct {
	threshold uint8
	invert    bool
	fit       bool
}

func (o *imageOptions) register(cmd *cobra.Command) {
	cmd.Flags().Uint8Var(&o.threshold, "threshold", 0, "flatten opaque images: pixels darker than this (1-255) are printed")
	cmd.Flags().BoolVar(&o.invert, "invert", false, "print the light pixels instead of the dark ones (with --threshold)")
	cmd.Flags().BoolVar(&o.fit, "fit", false, "scale images to the printable height of the tape")
}

// encodeFile loads an image and packs it for the tape
func (o *imageOptions) encodeFile(path string, tape media.Tape) ([]byte, error) {
	img, err := imaging.LoadImage(path)
	if err != nil {
		return nil, err
	}
	if o.fit {
		img = imaging.FitHeight(img, tape.Pixels)
	}
	if o.threshold > 0 {
		img = imaging.Flatten(img, o.threshold, o.invert)
	}

	data, err := imaging.Encode(img, tape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// textOptions are the flags of commands that render text
type textOptions struct {
	fontSize float64
	fontPath string
	maxWidth int
	padding  int
	invert   bool
}

func (o *textOptions) register(cmd *cobra.Command, prefix string) {
	cmd.Flags().Float64Var(&o.fontSize, prefix+"font-size", 0, "font size in points (default: largest that fits)")
	cmd.Flags().StringVar(&o.fontPath, prefix+"font", "", "TrueType font file (default: Go Regular)")
	cmd.Flags().IntVar(&o.maxWidth, prefix+"max-width", 0, "wrap text to this many dots")
	cmd.Flags().IntVar(&o.padding, prefix+"padding", 8, "blank dots before and after the text")
	cmd.Flags().BoolVar(&o.invert, prefix+"invert", false, "print the background and leave the text blank")
}

// encodeText renders text at the tape's printable height and packs it
func (o *textOptions) encodeText(text string, tape media.Tape) ([]byte, error) {
	opts := imaging.TextOptions{
		FontSize: o.fontSize,
		MaxWidth: o.maxWidth,
		Padding:  o.padding,
		Invert:   o.invert,
	}
	ttf, err := readFont(o.fontPath)
	if err != nil {
		return nil, err
	}
	opts.Font = ttf

	img, err := imaging.RenderText(text, tape.Pixels, opts)
	if err != nil {
		return nil, err
	}
	return imaging.Encode(img, tape)
}

// barcodeOptions are the flags of commands that render barcodes
type barcodeOptions struct {
	symbology   string
	noText      bool
	fontPath    string
	moduleWidth int
	maxPx       int
	maxMM       float64
	maxIn       float64
}

func (o *barcodeOptions) register(cmd *cobra.Command, prefix string) {
	cmd.Flags().StringVar(&o.symbology, prefix+"symbology", imaging.SymbologyCode128,
		"barcode type: "+strings.Join(imaging.Symbologies, ", "))
	cmd.Flags().BoolVar(&o.noText, prefix+"no-text", false, "leave out the value under the bars")
	cmd.Flags().StringVar(&o.fontPath, prefix+"font", "", "TrueType font file for the value (default: Go Regular)")
	cmd.Flags().IntVar(&o.moduleWidth, prefix+"module-width", 2, "dots per narrow bar")
	cmd.Flags().IntVar(&o.maxPx, prefix+"max-length", 0, "maximum label length in dots")
	cmd.Flags().Float64Var(&o.maxMM, prefix+"max-length-mm", 0, "maximum label length in millimetres")
	cmd.Flags().Float64Var(&o.maxIn, prefix+"max-length-in", 0, "maximum label length in inches")
	cmd.MarkFlagsMutuallyExclusive(prefix+"max-length", prefix+"max-length-mm", prefix+"max-length-in")
}

// maxWidth converts the length limit to dots
func (o *barcodeOptions) maxWidth() int {
	switch {
	case o.maxMM > 0:
		return int(o.maxMM / 25.4 * imaging.DPI)
	case o.maxIn > 0:
		return int(o.maxIn * imaging.DPI)
	}
	return o.maxPx
}

// encodeBarcode renders a barcode at the tape's printable height and packs it
func (o *barcodeOptions) encodeBarcode(value string, tape media.Tape) ([]byte, error) {
	ttf, err := readFont(o.fontPath)
	if err != nil {
		return nil, err
	}

	img, err := imaging.RenderBarcode(value, tape.Pixels, imaging.BarcodeOptions{
		Symbology:   o.symbology,
		ShowText:    !o.noText,
		Font:        ttf,
		ModuleWidth: o.moduleWidth,
		MaxWidth:    o.maxWidth(),
	})
	if err != nil {
		return nil, err
	}
	return imaging.Encode(img, tape)
}

func (a *app) printCommand() *cobra.Command {
	var opts imageOptions

	cmd := &cobra.Command{
		Use:   "print IMAGE...",
		Short: "Print image files, one label per image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			tape, err := a.cfg.Tape()
			if err != nil {
				return err
			}

			// encode everything before connecting
			jobs := make([]*printer.Job, 0, len(args))
			for _, path := range args {
				data, err := opts.encodeFile(path, tape)
				if err != nil {
					return err
				}
				job, err := printer.NewJob(data, tape, a.cfg.Copies)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				jobs = append(jobs, job)
			}

			return a.printJobs(jobs)
		},
	}
	opts.register(cmd)
	return cmd
}

func (a *app) textCommand() *cobra.Command {
	var opts textOptions

	cmd := &cobra.Command{
		Use:   "text TEXT...",
		Short: "Render text to fit the tape and print it",
		Long:  "Render text to fit the tape and print it. Arguments are joined with spaces; \\n starts a new line.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			tape, err := a.cfg.Tape()
			if err != nil {
				return err
			}

			data, err := opts.encodeText(joinText(args), tape)
			if err != nil {
				return err
			}
			job, err := printer.NewJob(data, tape, a.cfg.Copies)
			if err != nil {
				return err
			}

			return a.printJobs([]*printer.Job{job})
		},
	}
	opts.register(cmd, "")
	return cmd
}

func (a *app) barcodeCommand() *cobra.Command {
	var opts barcodeOptions

	cmd := &cobra.Command{
		Use:   "barcode VALUE...",
		Short: "Print barcodes, one label per value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			tape, err := a.cfg.Tape()
			if err != nil {
				return err
			}

			jobs := make([]*printer.Job, 0, len(args))
			for _, value := range args {
				data, err := opts.encodeBarcode(value, tape)
				if err != nil {
					return err
				}
				job, err := printer.NewJob(data, tape, a.cfg.Copies)
				if err != nil {
					return fmt.Errorf("%s: %w", value, err)
				}
				jobs = append(jobs, job)
			}

			return a.printJobs(jobs)
		},
	}
	opts.register(cmd, "")
	return cmd
}

func (a *app) previewCommand() *cobra.Command {
	var (
		imgOpts     imageOptions
		textOpts    textOptions
		barcodeOpts barcodeOptions
		text        string
		value       string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "preview (IMAGE | --text TEXT | --barcode VALUE) -o OUT.png",
		Short: "Write the bitmap that would be printed to a PNG file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, false); err != nil {
				return err
			}
			tape, err := a.cfg.Tape()
			if err != nil {
				return err
			}

			sources := len(args)
			for _, s := range []string{text, value} {
				if s != "" {
					sources++
				}
			}

			var data []byte
			switch {
			case sources > 1:
				return errors.New("give only one of an image, --text or --barcode")
			case len(args) == 1:
				data, err = imgOpts.encodeFile(args[0], tape)
			case text != "":
				data, err = textOpts.encodeText(joinText([]string{text}), tape)
			case value != "":
				data, err = barcodeOpts.encodeBarcode(value, tape)
			default:
				return errors.New("nothing to preview: give an image, --text or --barcode")
			}
			if err != nil {
				return err
			}

			if err := writePNG(output, imaging.Preview(data, tape)); err != nil {
				return err
			}
			a.log.Info().
				Str("file", output).
				Str("tape", tape.Name).
				Int("lines", len(data)/tape.LineBytes()).
				Msg("preview written")
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "render this text instead of an image")
	cmd.Flags().StringVar(&value, "barcode", "", "render a barcode of this value instead of an image")
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	_ = cmd.MarkFlagRequired("output")
	imgOpts.register(cmd)
	textOpts.register(cmd, "text-")
	barcodeOpts.register(cmd, "barcode-")
	return cmd
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Ask the printer for its status and show the loaded tape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}

			return printer.WithTransport(a.open, func(t printer.Transport) error {
				reply, err := printer.NewSession(t, a.log, a.cfg.SessionOptions()).Status()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Media width: %dmm\n", reply.MediaWidth)
				if tape, ok := media.ByMediaWidth(reply.MediaWidth); ok {
					fmt.Fprintf(out, "Tape:        %s (%d dots)\n", tape.Name, tape.Pixels)
				}
				fmt.Fprintf(out, "Media type:  %s\n", reply.MediaType)
				fmt.Fprintf(out, "Tape color:  %s\n", reply.TapeColor)
				fmt.Fprintf(out, "Text color:  %s\n", reply.TextColor)
				return nil
			})
		},
	}
}

// readFont reads a TrueType file; an empty path means the default font
func readFont(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	ttf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return ttf, nil
}

// joinText joins arguments with spaces and turns a literal \n into a line break
func joinText(args []string) string {
	return strings.ReplaceAll(strings.Join(args, " "), `\n`, "\n")
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
