package imaging

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"ptouch-print/internal/media"
)

// InvalidImageHeightError is returned when an image does not match the
// printable height of the selected tape.
type InvalidImageHeightError struct {
	Required int
	Actual   int
}

func (e *InvalidImageHeightError) Error() string {
	return fmt.Sprintf("image must be %d px high for this tape, got %d px", e.Required, e.Actual)
}

// LoadImage loads an image from file
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Encode converts an image into the printer's scan-line bitmap.
//
// Every pixel with a non-zero alpha value is printed. Each image column
// becomes one scan line: the column is padded with the tape margin on both
// sides and packed MSB first, so the top row of the image lands on the first
// printable dot. The returned buffer holds Dx() lines of tape.LineBytes() each.
func Encode(img image.Image, tape media.Tape) ([]byte, error) {
	bounds := img.Bounds()
	if bounds.Dy() != tape.Pixels {
		return nil, &InvalidImageHeightError{Required: tape.Pixels, Actual: bounds.Dy()}
	}

	lineBytes := tape.LineBytes()
	data := make([]byte, bounds.Dx()*lineBytes)

	for x := 0; x < bounds.Dx(); x++ {
		line := data[x*lineBytes : (x+1)*lineBytes]
		for y := 0; y < bounds.Dy(); y++ {
			if !isSet(img.At(bounds.Min.X+x, bounds.Min.Y+y)) {
				continue
			}
			dot := tape.MarginPx + y
			line[dot/8] |= 1 << (7 - dot%8)
		}
	}

	return data, nil
}

func isSet(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a > 0
}

// Flatten converts an image without useful transparency into an alpha mask:
// pixels darker than threshold become opaque, everything else transparent.
// Pixels that are already fully transparent stay transparent.
func Flatten(img image.Image, threshold uint8, invert bool) *image.Alpha {
	bounds := img.Bounds()
	dst := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}

			dark := rgbToGray(c) < threshold
			if invert {
				dark = !dark
			}
			if dark {
				dst.SetAlpha(x, y, color.Alpha{A: 0xFF})
			}
		}
	}

	return dst
}

// rgbToGray converts a color to grayscale value as seen on white tape.
// RGBA returns premultiplied values, so the missing coverage is white.
func rgbToGray(c color.Color) uint8 {
	r, g, b, a := c.RGBA()
	r += 0xFFFF - a
	g += 0xFFFF - a
	b += 0xFFFF - a
	// Standard luminance formula, values are 16-bit so divide by 256
	gray := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 256
	return uint8(gray)
}

// FitHeight scales an image so that it is exactly height pixels high,
// keeping the aspect ratio. Nearest-neighbor is good enough for a 180dpi head.
func FitHeight(img image.Image, height int) image.Image {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcH == height || srcW == 0 || srcH == 0 {
		return img
	}

	scale := float64(height) / float64(srcH)
	newW := int(float64(srcW)*scale + 0.5)
	if newW < 1 {
		newW = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newW, height))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// Preview renders an encoded bitmap back into a viewable image, one column
// per scan line, margins included.
func Preview(data []byte, tape media.Tape) image.Image {
	lineBytes := tape.LineBytes()
	width := len(data) / lineBytes
	height := lineBytes * 8
	img := image.NewGray(image.Rect(0, 0, width, height))

	for x := 0; x < width; x++ {
		line := data[x*lineBytes : (x+1)*lineBytes]
		for y := 0; y < height; y++ {
			bit := (line[y/8] >> (7 - y%8)) & 1

			if bit == 1 {
				img.SetGray(x, y, color.Gray{0}) // black
			} else {
				img.SetGray(x, y, color.Gray{255}) // white
			}
		}
	}

	return img
}
