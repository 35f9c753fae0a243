package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptouch-print/internal/config"
	"ptouch-print/internal/imaging"
	"ptouch-print/internal/media"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &app{cfg: config.DefaultConfig(), log: zerolog.Nop()}
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, writePNG(path, img))
	return path
}

func TestJoinText(t *testing.T) {
	assert.Equal(t, "Hello world", joinText([]string{"Hello", "world"}))
	assert.Equal(t, "Line 1\nLine 2", joinText([]string{`Line 1\nLine 2`}))
}

func TestEncodeFileThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, media.Tape24mm.Pixels))
	for y := 0; y < media.Tape24mm.Pixels; y++ {
		img.Set(0, y, color.Black)
		img.Set(1, y, color.White)
		img.Set(2, y, color.Black)
	}
	path := writeTestPNG(t, img)

	// opaque white would print without flattening
	raw, err := (&imageOptions{}).encodeFile(path, media.Tape24mm)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), raw[16])

	opts := &imageOptions{threshold: 128}
	data, err := opts.encodeFile(path, media.Tape24mm)
	require.NoError(t, err)
	require.Len(t, data, 3*16)
	assert.Equal(t, byte(0xFF), data[0])
	assert.Equal(t, byte(0x00), data[16])
	assert.Equal(t, byte(0xFF), data[32])
}

func TestEncodeFileHeight(t *testing.T) {
	path := writeTestPNG(t, image.NewRGBA(image.Rect(0, 0, 10, 64)))

	_, err := (&imageOptions{}).encodeFile(path, media.Tape12mm)
	assert.Error(t, err)

	data, err := (&imageOptions{fit: true}).encodeFile(path, media.Tape12mm)
	require.NoError(t, err)
	assert.Equal(t, 0, len(data)%media.Tape12mm.LineBytes())
}

func TestPreviewCommandText(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "label.png")

	cmd := a.previewCommand()
	cmd.SetArgs([]string{"--text", "Hi", "-o", out})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, media.LinePixels, img.Bounds().Dy())
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestPreviewCommandArgs(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "label.png")

	cmd := a.previewCommand()
	cmd.SetArgs([]string{"-o", out})
	assert.ErrorContains(t, cmd.Execute(), "nothing to preview")

	path := writeTestPNG(t, image.NewRGBA(image.Rect(0, 0, 4, 128)))
	cmd = a.previewCommand()
	cmd.SetArgs([]string{path, "--text", "Hi", "-o", out})
	assert.ErrorContains(t, cmd.Execute(), "only one")

	cmd = a.previewCommand()
	cmd.SetArgs([]string{"--text", "Hi", "--barcode", "42", "-o", out})
	assert.ErrorContains(t, cmd.Execute(), "only one")
}

func TestPreviewCommandBarcode(t *testing.T) {
	a := newTestApp(t)
	out := filepath.Join(t.TempDir(), "barcode.png")

	cmd := a.previewCommand()
	cmd.SetArgs([]string{"--barcode", "SHELF-3", "--barcode-symbology", "code39", "-o", out})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, media.LinePixels, img.Bounds().Dy())
	assert.Greater(t, img.Bounds().Dx(), 20)

	cmd = a.previewCommand()
	cmd.SetArgs([]string{"--barcode", "SHELF-3", "--barcode-symbology", "qr", "-o", out})
	assert.ErrorIs(t, cmd.Execute(), imaging.ErrUnknownSymbology)
}

func TestBarcodeMaxWidth(t *testing.T) {
	assert.Equal(t, 0, (&barcodeOptions{}).maxWidth())
	assert.Equal(t, 300, (&barcodeOptions{maxPx: 300}).maxWidth())
	assert.Equal(t, 360, (&barcodeOptions{maxIn: 2}).maxWidth())
	assert.Equal(t, 354, (&barcodeOptions{maxMM: 50}).maxWidth())
}

func TestEncodeBarcode(t *testing.T) {
	opts := &barcodeOptions{symbology: "code128", moduleWidth: 2}
	data, err := opts.encodeBarcode("Hi", media.Tape24mm)
	require.NoError(t, err)
	// 57 modules and two quiet zones of 10, two dots each
	assert.Len(t, data, 154*media.Tape24mm.LineBytes())

	opts.maxPx = 50
	_, err = opts.encodeBarcode("Hi", media.Tape24mm)
	assert.ErrorIs(t, err, imaging.ErrBarcodeFit)

	opts = &barcodeOptions{fontPath: filepath.Join(t.TempDir(), "missing.ttf")}
	_, err = opts.encodeBarcode("Hi", media.Tape24mm)
	assert.ErrorContains(t, err, "read font")
}

func TestBarcodeCommandMaxLengthExclusive(t *testing.T) {
	a := newTestApp(t)
	cmd := a.barcodeCommand()
	cmd.SetArgs([]string{"--max-length", "100", "--max-length-mm", "20", "42"})
	assert.ErrorContains(t, cmd.Execute(), "none of the others")
}

func TestLoadRequiresAddress(t *testing.T) {
	a := newTestApp(t)
	cmd := a.statusCommand()
	assert.ErrorContains(t, a.load(cmd, true), "address is required")
}

func TestLoadExplicitMissingConfig(t *testing.T) {
	a := newTestApp(t)
	a.cfgPath = filepath.Join(t.TempDir(), "missing.toml")
	assert.ErrorContains(t, a.load(a.statusCommand(), false), "not found")
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	a := newTestApp(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("transport = \"serial\"\nport = \"/dev/rfcomm1\"\ntape_mm = 12\n"), 0o600))
	a.cfgPath = path
	t.Setenv("PTOUCH_TAPE", "9")

	require.NoError(t, a.load(a.statusCommand(), true))
	assert.Equal(t, config.TransportSerial, a.cfg.Transport)
	assert.Equal(t, "/dev/rfcomm1", a.cfg.Port)
	assert.Equal(t, 9.0, a.cfg.TapeMM)
}
