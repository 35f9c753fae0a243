package imaging

import (
	"image"
	"testing"

	"github.com/boombuler/barcode/code128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptouch-print/internal/media"
)

type run struct {
	dark bool
	n    int
}

// runs collapses one row of img into alternating opaque and transparent runs
func runs(img image.Image, y int) []run {
	var out []run
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		_, _, _, a := img.At(x, y).RGBA()
		dark := a > 0
		if len(out) > 0 && out[len(out)-1].dark == dark {
			out[len(out)-1].n++
			continue
		}
		out = append(out, run{dark: dark, n: 1})
	}
	return out
}

func opaque(img image.Image, x, y int) bool {
	_, _, _, a := img.At(x, y).RGBA()
	return a > 0
}

func TestRenderBarcodeCode128Bars(t *testing.T) {
	img, err := RenderBarcode("Hi", media.Tape24mm.Pixels, BarcodeOptions{ModuleWidth: 2, QuietZone: 10})
	require.NoError(t, err)

	// start B, 'H', 'i', checksum and the 13 module stop pattern
	require.Equal(t, (4*11+13+2*10)*2, img.Bounds().Dx())
	require.Equal(t, media.Tape24mm.Pixels, img.Bounds().Dy())

	row := runs(img, 64)
	require.Greater(t, len(row), 10)

	assert.Equal(t, run{dark: false, n: 20}, row[0], "leading quiet zone")
	assert.Equal(t, run{dark: false, n: 20}, row[len(row)-1], "trailing quiet zone")

	// lowercase selects code set B, whose start pattern is 11010010000
	assert.Equal(t, []run{{true, 4}, {false, 2}, {true, 2}, {false, 4}, {true, 2}, {false, 8}}, row[1:7])

	// stop pattern 1100011101011
	assert.Equal(t, []run{
		{true, 4}, {false, 6}, {true, 6}, {false, 2}, {true, 2}, {false, 2}, {true, 4},
	}, row[len(row)-8:len(row)-1])

	for _, r := range row {
		assert.Zero(t, r.n%2, "runs are whole modules")
	}

	// columns match the encoder module for module
	bc, err := code128.Encode("Hi")
	require.NoError(t, err)
	for i := 0; i < bc.Bounds().Dx(); i++ {
		r, _, _, _ := bc.At(i, 0).RGBA()
		want := r < 0x8000
		assert.Equal(t, want, opaque(img, 20+2*i, 64), "module %d", i)
		assert.Equal(t, want, opaque(img, 20+2*i+1, 64), "module %d", i)
	}

	// 1mm left blank at both edges
	assert.Zero(t, countOpaque(img.(*image.NRGBA).SubImage(image.Rect(0, 0, img.Bounds().Dx(), 7))))
	assert.Zero(t, countOpaque(img.(*image.NRGBA).SubImage(image.Rect(0, 121, img.Bounds().Dx(), 128))))
	assert.True(t, opaque(img, 20, 7))
	assert.True(t, opaque(img, 20, 120))
}

func TestRenderBarcodeCaption(t *testing.T) {
	img, err := RenderBarcode("Hi", media.Tape24mm.Pixels, BarcodeOptions{ShowText: true})
	require.NoError(t, err)
	width := img.Bounds().Dx()

	// 114 usable dots: 57 of bars, 19 blank, 38 of caption
	assert.True(t, opaque(img, 20, 7))
	assert.True(t, opaque(img, 20, 63))
	assert.False(t, opaque(img, 20, 64))

	nrgba := img.(*image.NRGBA)
	assert.Zero(t, countOpaque(nrgba.SubImage(image.Rect(0, 64, width, 83))))
	assert.Greater(t, countOpaque(nrgba.SubImage(image.Rect(0, 83, width, 121))), 0)

	_, err = Encode(img, media.Tape24mm)
	assert.NoError(t, err)
}

func TestRenderBarcodeMaxWidth(t *testing.T) {
	// 57 modules plus two quiet zones of 10
	img, err := RenderBarcode("Hi", media.Tape12mm.Pixels, BarcodeOptions{ModuleWidth: 3, MaxWidth: 160})
	require.NoError(t, err)
	assert.Equal(t, 77*2, img.Bounds().Dx())

	img, err = RenderBarcode("Hi", media.Tape12mm.Pixels, BarcodeOptions{MaxWidth: 100})
	require.NoError(t, err)
	assert.Equal(t, 77, img.Bounds().Dx())

	_, err = RenderBarcode("Hi", media.Tape12mm.Pixels, BarcodeOptions{MaxWidth: 76})
	assert.ErrorIs(t, err, ErrBarcodeFit)
}

func TestRenderBarcodeSymbologies(t *testing.T) {
	tests := []struct {
		symbology string
		value     string
	}{
		{SymbologyCode128, "ptouch-42"},
		{"CODE39", "CABLE 7"},
		{SymbologyCode93, "SHELF-3"},
		{SymbologyEAN, "5901234123457"},
		{SymbologyCodabar, "A40156B"},
	}

	for _, tt := range tests {
		t.Run(tt.symbology, func(t *testing.T) {
			tape := media.Tape18mm
			img, err := RenderBarcode(tt.value, tape.Pixels, BarcodeOptions{Symbology: tt.symbology, ShowText: true})
			require.NoError(t, err)
			assert.Equal(t, tape.Pixels, img.Bounds().Dy())
			assert.Greater(t, countOpaque(img), 0)

			_, err = Encode(img, tape)
			assert.NoError(t, err)
		})
	}
}

func TestRenderBarcodeErrors(t *testing.T) {
	_, err := RenderBarcode(" ", 128, BarcodeOptions{})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = RenderBarcode("123", 128, BarcodeOptions{Symbology: "qr"})
	assert.ErrorIs(t, err, ErrUnknownSymbology)

	_, err = RenderBarcode("12", 128, BarcodeOptions{Symbology: SymbologyEAN})
	assert.Error(t, err)

	// no legible caption fits in 6 dots
	_, err = RenderBarcode("Hi", media.Tape6mm.Pixels, BarcodeOptions{ShowText: true})
	assert.ErrorIs(t, err, ErrTextFit)

	img, err := RenderBarcode("Hi", media.Tape6mm.Pixels, BarcodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, media.Tape6mm.Pixels, img.Bounds().Dy())
}
