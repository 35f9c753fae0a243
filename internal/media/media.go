package media

import (
	"errors"
	"fmt"
	"strconv"
)

// LinePixels is the number of dots across the print head. Every tape profile
// pads its printable height with margins up to this width.
const LinePixels = 128

var ErrUnsupportedTape = errors.New("unsupported tape width")

// Tape describes the geometry of one tape width
type Tape struct {
	Name       string
	WidthMM    float64 // nominal tape width
	MediaWidth byte    // width as reported and accepted by the printer
	Pixels     int     // printable dots across the tape (image height)
	MarginPx   int     // blank dots on each side of the printable area
}

// Supported tape widths
var (
	Tape24mm  = Tape{"24mm", 24, 24, 128, 0}
	Tape18mm  = Tape{"18mm", 18, 18, 112, 8}
	Tape12mm  = Tape{"12mm", 12, 12, 70, 29}
	Tape9mm   = Tape{"9mm", 9, 9, 50, 39}
	Tape6mm   = Tape{"6mm", 6, 6, 32, 48}
	Tape3_5mm = Tape{"3.5mm", 3.5, 4, 24, 52}
)

var AllTapes = []Tape{Tape24mm, Tape18mm, Tape12mm, Tape9mm, Tape6mm, Tape3_5mm}

// LineBytes returns the packed size of one scan line
func (t Tape) LineBytes() int {
	return (t.Pixels + 2*t.MarginPx) / 8
}

func (t Tape) String() string {
	return t.Name
}

// Lookup returns the profile for a tape width in millimetres. The printer
// reports 3.5mm tape as 4mm, so 4 is accepted too.
func Lookup(mm float64) (Tape, error) {
	for _, t := range AllTapes {
		if t.WidthMM == mm || float64(t.MediaWidth) == mm {
			return t, nil
		}
	}
	return Tape{}, fmt.Errorf("%w: %smm", ErrUnsupportedTape, strconv.FormatFloat(mm, 'f', -1, 64))
}

// ByMediaWidth returns the profile matching a media width byte from a status frame
func ByMediaWidth(w byte) (Tape, bool) {
	for _, t := range AllTapes {
		if t.MediaWidth == w {
			return t, true
		}
	}
	return Tape{}, false
}
