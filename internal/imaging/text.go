package imaging

import (
	"errors"
	"image"
	"image/color"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// DPI of the print head
const DPI = 180

// Font sizes tried when fitting text, largest first
const (
	minFontSize  = 4
	maxFontSize  = 144
	fontSizeStep = 2
)

var (
	ErrEmptyText = errors.New("no text to render")
	ErrTextFit   = errors.New("text does not fit on the tape")
)

// TextOptions configures text rendering
type TextOptions struct {
	FontSize float64 // points; 0 picks the largest size that fits
	Font     []byte  // TrueType data; nil uses Go Regular
	MaxWidth int     // wrap lines on spaces to this width; 0 means unlimited
	Padding  int     // blank pixels before and after the text
	Invert   bool    // transparent text on a printed background
}

// RenderText draws text into an image exactly height pixels high. Glyphs are
// opaque black on a transparent background, so Encode prints the glyphs.
func RenderText(text string, height int, opts TextOptions) (image.Image, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	ttf := opts.Font
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}

	size, lines, err := fitText(f, text, height, opts)
	if err != nil {
		return nil, err
	}

	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: DPI})
	defer face.Close()
	metrics := face.Metrics()
	lineHeight := metrics.Ascent.Ceil() + metrics.Descent.Ceil()

	width := 0
	for _, line := range lines {
		width = max(width, measureString(face, line))
	}
	width += 2 * opts.Padding

	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	// Set up freetype context
	c := freetype.NewContext()
	c.SetDPI(DPI)
	c.SetFont(f)
	c.SetFontSize(size)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(color.Black))
	c.SetHinting(font.HintingFull)

	// Center the block of lines vertically
	y := (height-len(lines)*lineHeight)/2 + metrics.Ascent.Ceil()
	for _, line := range lines {
		x := opts.Padding + (width-2*opts.Padding-measureString(face, line))/2
		if _, err := c.DrawString(line, freetype.Pt(x, y)); err != nil {
			return nil, err
		}
		y += lineHeight
	}

	if opts.Invert {
		invertAlpha(img)
	}
	return img, nil
}

// fitText picks the font size and line breaks for the text
func fitText(f *truetype.Font, text string, height int, opts TextOptions) (float64, []string, error) {
	sizes := []float64{opts.FontSize}
	if opts.FontSize <= 0 {
		sizes = sizes[:0]
		for s := maxFontSize; s >= minFontSize; s -= fontSizeStep {
			sizes = append(sizes, float64(s))
		}
	}

	for _, size := range sizes {
		face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: DPI})
		metrics := face.Metrics()
		lineHeight := metrics.Ascent.Ceil() + metrics.Descent.Ceil()

		var lines []string
		if opts.MaxWidth > 0 {
			lines = wrapTextWordOnly(text, face, opts.MaxWidth-2*opts.Padding)
		} else {
			lines = strings.Split(text, "\n")
		}

		fits := len(lines)*lineHeight <= height
		if fits && opts.MaxWidth > 0 {
			for _, line := range lines {
				if measureString(face, line)+2*opts.Padding > opts.MaxWidth {
					fits = false
					break
				}
			}
		}
		face.Close()

		if fits {
			return size, lines, nil
		}
	}

	return 0, nil, ErrTextFit
}

// wrapTextWordOnly splits text into lines, only breaking at word boundaries
func wrapTextWordOnly(text string, face font.Face, maxWidth int) []string {
	var lines []string

	// First split by explicit newlines
	paragraphs := strings.Split(text, "\n")

	for _, para := range paragraphs {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		currentLine := words[0]
		for i := 1; i < len(words); i++ {
			word := words[i]
			testLine := currentLine + " " + word

			if measureString(face, testLine) > maxWidth {
				lines = append(lines, currentLine)
				currentLine = word
			} else {
				currentLine = testLine
			}
		}

		if currentLine != "" {
			lines = append(lines, currentLine)
		}
	}

	return lines
}

// measureString returns the width of a string in pixels
func measureString(face font.Face, s string) int {
	var width fixed.Int26_6
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if ok {
			width += adv
		}
	}
	return width.Ceil()
}

func invertAlpha(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF - img.Pix[i]
	}
}
