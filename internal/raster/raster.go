package raster

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ChunkSize is the number of packed bitmap bytes carried by one raster line
const ChunkSize = 16

// Wire command bytes for raster lines
const (
	ZeroCommand   byte = 0x5A
	RasterCommand byte = 0x47
)

// MaxPayload is the longest compressed payload a single chunk can produce.
// Alternating single literals and two-byte repeats cost 4 bytes per 3 input
// bytes, which stays below this bound for 16 input bytes.
const MaxPayload = 2 * ChunkSize

var (
	ErrMalformed      = errors.New("malformed compressed stream")
	ErrChunkAlignment = errors.New("raster data is not a multiple of the chunk size")
)

// Chunk is one row of packed bitmap data
type Chunk [ChunkSize]byte

// IsZero reports whether every bit in the chunk is off
func (c Chunk) IsZero() bool {
	return c == Chunk{}
}

// Line is the wire-ready encoding of one chunk: either the zero shortcut or
// a compressed payload.
type Line struct {
	zero    bool
	payload []byte
}

// IsZero reports whether the line is the single-byte zero shortcut
func (l Line) IsZero() bool {
	return l.zero
}

// Payload returns the compressed payload, nil for a zero line
func (l Line) Payload() []byte {
	return l.payload
}

// Len returns the length of the line on the wire
func (l Line) Len() int {
	if l.zero {
		return 1
	}
	return 3 + len(l.payload)
}

// AppendTo appends the wire form of the line to dst
func (l Line) AppendTo(dst []byte) []byte {
	if l.zero {
		return append(dst, ZeroCommand)
	}
	dst = append(dst, RasterCommand)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(l.payload)))
	return append(dst, l.payload...)
}

// Bytes returns the wire form of the line
func (l Line) Bytes() []byte {
	return l.AppendTo(make([]byte, 0, l.Len()))
}

// Decode reconstructs the chunk the line was encoded from
func (l Line) Decode() (Chunk, error) {
	var c Chunk
	if l.zero {
		return c, nil
	}
	raw, err := Decompress(l.payload)
	if err != nil {
		return c, err
	}
	if len(raw) != ChunkSize {
		return c, fmt.Errorf("%w: decoded %d bytes, want %d", ErrMalformed, len(raw), ChunkSize)
	}
	copy(c[:], raw)
	return c, nil
}

// EncodeChunk compresses one chunk into a raster line
func EncodeChunk(c Chunk) Line {
	if c.IsZero() {
		return Line{zero: true}
	}
	return Line{payload: Compress(c[:])}
}

// Rasterize splits a packed bitmap buffer into chunks and encodes each one
func Rasterize(data []byte) ([]Line, error) {
	if len(data)%ChunkSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrChunkAlignment, len(data))
	}

	lines := make([]Line, 0, len(data)/ChunkSize)
	for i := 0; i < len(data); i += ChunkSize {
		var c Chunk
		copy(c[:], data[i:i+ChunkSize])
		lines = append(lines, EncodeChunk(c))
	}
	return lines, nil
}

// ParseLine reads one raster line from the front of a wire stream and
// returns it together with the number of bytes consumed.
func ParseLine(wire []byte) (Line, int, error) {
	if len(wire) == 0 {
		return Line{}, 0, fmt.Errorf("%w: empty line", ErrMalformed)
	}

	switch wire[0] {
	case ZeroCommand:
		return Line{zero: true}, 1, nil
	case RasterCommand:
		if len(wire) < 3 {
			return Line{}, 0, fmt.Errorf("%w: truncated length", ErrMalformed)
		}
		n := int(binary.LittleEndian.Uint16(wire[1:3]))
		if n == 0 || n > MaxPayload || len(wire) < 3+n {
			return Line{}, 0, fmt.Errorf("%w: payload length %d", ErrMalformed, n)
		}
		payload := make([]byte, n)
		copy(payload, wire[3:3+n])
		return Line{payload: payload}, 3 + n, nil
	default:
		return Line{}, 0, fmt.Errorf("%w: unknown line command 0x%02x", ErrMalformed, wire[0])
	}
}
