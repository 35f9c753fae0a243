package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	xdraw "golang.org/x/image/draw"
)

// Barcode symbologies
const (
	SymbologyCode128 = "code128"
	SymbologyCode39  = "code39"
	SymbologyCode93  = "code93"
	SymbologyEAN     = "ean"
	SymbologyCodabar = "codabar"
)

// Symbologies lists the accepted symbology names
var Symbologies = []string{SymbologyCode128, SymbologyCode39, SymbologyCode93, SymbologyEAN, SymbologyCodabar}

const (
	defaultModuleWidth = 2
	defaultQuietZone   = 10

	// the outermost millimetre on each edge of the tape scans poorly
	barcodeMarginMM = 1.0
)

var (
	ErrUnknownSymbology = errors.New("unknown barcode symbology")
	ErrBarcodeFit       = errors.New("barcode does not fit in the maximum width")
)

// BarcodeOptions configures barcode rendering
type BarcodeOptions struct {
	Symbology   string // one of Symbologies; empty means code128
	ShowText    bool   // print the value under the bars
	Font        []byte // caption TrueType data; nil uses Go Regular
	ModuleWidth int    // dots per narrow bar; 0 means 2
	QuietZone   int    // blank modules on each side; 0 means 10
	MaxWidth    int    // narrow the modules to fit this many dots; 0 means unlimited
}

// RenderBarcode draws a one-dimensional barcode exactly height pixels high.
// The bars run across the tape, leaving 1mm blank at each edge. With
// ShowText the usable height is split in sixths: three for the bars, one
// blank and two for the caption.
func RenderBarcode(value string, height int, opts BarcodeOptions) (image.Image, error) {
	if strings.TrimSpace(value) == "" {
		return nil, ErrEmptyText
	}

	bc, err := encodeBarcode(value, opts.Symbology)
	if err != nil {
		return nil, err
	}
	modules := barcodeModules(bc)

	quiet := opts.QuietZone
	if quiet <= 0 {
		quiet = defaultQuietZone
	}
	moduleWidth := opts.ModuleWidth
	if moduleWidth <= 0 {
		moduleWidth = defaultModuleWidth
	}
	total := len(modules) + 2*quiet
	if opts.MaxWidth > 0 {
		moduleWidth = min(moduleWidth, opts.MaxWidth/total)
	}
	if moduleWidth < 1 {
		return nil, fmt.Errorf("%w: %d modules in %d dots", ErrBarcodeFit, total, opts.MaxWidth)
	}
	width := total * moduleWidth

	margin := int(math.Round(barcodeMarginMM / 25.4 * DPI))
	if height-2*margin < 1 {
		margin = 0
	}
	usable := height - 2*margin
	barHeight := usable

	var caption image.Image
	captionTop := 0
	if opts.ShowText {
		unit := float64(usable) / 6
		barHeight = int(3 * unit)
		captionTop = margin + barHeight + int(unit)

		caption, err = RenderText(bc.Content(), margin+usable-captionTop, TextOptions{Font: opts.Font, MaxWidth: width})
		if err != nil {
			return nil, fmt.Errorf("barcode caption: %w", err)
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	black := image.NewUniform(color.Black)
	for i, dark := range modules {
		if !dark {
			continue
		}
		x := (quiet + i) * moduleWidth
		xdraw.Draw(img, image.Rect(x, margin, x+moduleWidth, margin+barHeight), black, image.Point{}, xdraw.Src)
	}

	if caption != nil {
		cb := caption.Bounds()
		x := (width - cb.Dx()) / 2
		xdraw.Draw(img, image.Rect(x, captionTop, x+cb.Dx(), captionTop+cb.Dy()), caption, cb.Min, xdraw.Over)
	}

	return img, nil
}

func encodeBarcode(value, symbology string) (barcode.Barcode, error) {
	var (
		bc  barcode.Barcode
		err error
	)
	switch strings.ToLower(strings.TrimSpace(symbology)) {
	case "", SymbologyCode128:
		bc, err = code128.Encode(value)
	case SymbologyCode39:
		bc, err = code39.Encode(value, false, true)
	case SymbologyCode93:
		bc, err = code93.Encode(value, true, true)
	case SymbologyEAN:
		bc, err = ean.Encode(value)
	case SymbologyCodabar:
		bc, err = codabar.Encode(value)
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownSymbology, symbology, strings.Join(Symbologies, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", value, err)
	}
	return bc, nil
}

// barcodeModules reads the bar pattern off the first row of a 1D barcode
func barcodeModules(bc barcode.Barcode) []bool {
	b := bc.Bounds()
	modules := make([]bool, b.Dx())
	for i := range modules {
		r, _, _, _ := bc.At(b.Min.X+i, b.Min.Y).RGBA()
		modules[i] = r < 0x8000
	}
	return modules
}
