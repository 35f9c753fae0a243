package ptcmd

import (
	"bytes"
	"encoding/binary"

	"ptouch-print/internal/raster"
)

const (
	Esc = 0x1B

	// InvalidateLength is the number of NUL bytes that flush any partial command
	InvalidateLength = 100
)

// Command byte sequences
var (
	cmdInitialize       = []byte{Esc, 0x40}
	cmdRasterMode       = []byte{Esc, 0x69, 0x61, 0x01}
	cmdNotifyStatus     = []byte{Esc, 0x69, 0x21, 0x00}
	cmdPrintInformation = []byte{Esc, 0x69, 0x7A}
	cmdVariousMode      = []byte{Esc, 0x69, 0x4D}
	cmdAdvancedMode     = []byte{Esc, 0x69, 0x4B}
	cmdMargin           = []byte{Esc, 0x69, 0x64}
	cmdCompressionMode  = []byte{0x4D}
	cmdStatusRequest    = []byte{Esc, 0x69, 0x53}
)

const (
	PrintWithFeeding    = 0x1A
	PrintWithoutFeeding = 0x0C
)

// Print information validity flags
const (
	validMediaWidth  = 0x04
	validRasterCount = 0x80
)

// CompressionTIFF selects PackBits compressed raster lines
const CompressionTIFF = 0x02

// Mode is the various-mode settings byte
type Mode byte

// ModeAutoCut cuts the tape after each label
const ModeAutoCut Mode = 0x40

// AdvancedMode is the advanced-mode settings byte
type AdvancedMode byte

// AdvancedNoChainPrinting feeds and cuts the last label of a job
const AdvancedNoChainPrinting AdvancedMode = 0x08

// Command builds P-touch raster commands
type Command struct {
	buf bytes.Buffer
}

func New() *Command {
	return &Command{}
}

// Invalidate sends NUL bytes that reset a printer stuck mid-command
func (c *Command) Invalidate() *Command {
	c.buf.Write(make([]byte, InvalidateLength))
	return c
}

// Initialize clears the print buffer and settings
func (c *Command) Initialize() *Command {
	c.buf.Write(cmdInitialize)
	return c
}

// StatusRequest asks for a status frame
func (c *Command) StatusRequest() *Command {
	c.buf.Write(cmdStatusRequest)
	return c
}

// RasterMode switches the dynamic command mode to raster
func (c *Command) RasterMode() *Command {
	c.buf.Write(cmdRasterMode)
	return c
}

// NotifyStatus turns on automatic status notifications
func (c *Command) NotifyStatus() *Command {
	c.buf.Write(cmdNotifyStatus)
	return c
}

// PrintInformation announces the media width in mm and the job size.
// dataLength is the size of the packed bitmap; the printer wants the number
// of raster lines, which is dataLength / 16.
func (c *Command) PrintInformation(mediaWidth byte, dataLength int) *Command {
	c.buf.Write(cmdPrintInformation)
	c.buf.Write([]byte{validMediaWidth | validRasterCount, 0x00, mediaWidth, 0x00})
	c.buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(dataLength>>4)))
	c.buf.Write([]byte{0x00, 0x00})
	return c
}

// VariousMode sets auto-cut and mirror printing
func (c *Command) VariousMode(m Mode) *Command {
	c.buf.Write(cmdVariousMode)
	c.buf.WriteByte(byte(m))
	return c
}

// AdvancedMode sets chain printing and related options
func (c *Command) AdvancedMode(m AdvancedMode) *Command {
	c.buf.Write(cmdAdvancedMode)
	c.buf.WriteByte(byte(m))
	return c
}

// Margin sets the feed amount in dots
func (c *Command) Margin(dots uint16) *Command {
	c.buf.Write(cmdMargin)
	c.buf.Write(binary.LittleEndian.AppendUint16(nil, dots))
	return c
}

// Compression selects the raster compression mode
func (c *Command) Compression(mode byte) *Command {
	c.buf.Write(cmdCompressionMode)
	c.buf.WriteByte(mode)
	return c
}

// RasterLine adds one encoded raster line
func (c *Command) RasterLine(l raster.Line) *Command {
	c.buf.Write(l.Bytes())
	return c
}

// RasterLines adds encoded raster lines in order
func (c *Command) RasterLines(lines []raster.Line) *Command {
	for _, l := range lines {
		c.RasterLine(l)
	}
	return c
}

// Print prints the buffered page, feeding and cutting when feed is set.
// Every copy but the last is printed without feeding.
func (c *Command) Print(feed bool) *Command {
	if feed {
		c.buf.WriteByte(PrintWithFeeding)
	} else {
		c.buf.WriteByte(PrintWithoutFeeding)
	}
	return c
}

// Len returns the number of bytes built so far
func (c *Command) Len() int {
	return c.buf.Len()
}

// Bytes returns the raw command bytes to send to the printer
func (c *Command) Bytes() []byte {
	return c.buf.Bytes()
}

// Reset discards everything built so far
func (c *Command) Reset() {
	c.buf.Reset()
}
