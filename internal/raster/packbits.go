package raster

import "fmt"

const maxRun = 128

// Compress encodes src with PackBits run-length encoding.
//
// A control byte n in [0,127] is followed by n+1 literal bytes. A control
// byte b in [129,255] is followed by a single byte that repeats 257-b times.
// Runs of two identical bytes are encoded as repeats.
func Compress(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/maxRun+1)

	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < maxRun && src[i+run] == src[i] {
			run++
		}
		if run >= 2 {
			out = append(out, byte(257-run), src[i])
			i += run
			continue
		}

		start := i
		i++
		for i < len(src) && i-start < maxRun {
			if i+1 < len(src) && src[i] == src[i+1] {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, src[start:i]...)
	}

	return out
}

// Decompress reverses Compress. A control byte without enough data bytes
// behind it, or the unused control value 128, is an error.
func Decompress(src []byte) ([]byte, error) {
	var out []byte

	i := 0
	for i < len(src) {
		ctrl := src[i]
		i++
		switch {
		case ctrl < 128:
			n := int(ctrl) + 1
			if i+n > len(src) {
				return nil, fmt.Errorf("%w: literal run of %d at offset %d overruns input", ErrMalformed, n, i-1)
			}
			out = append(out, src[i:i+n]...)
			i += n
		case ctrl > 128:
			if i >= len(src) {
				return nil, fmt.Errorf("%w: repeat run at offset %d has no data byte", ErrMalformed, i-1)
			}
			for j := 0; j < 257-int(ctrl); j++ {
				out = append(out, src[i])
			}
			i++
		default:
			return nil, fmt.Errorf("%w: control byte 0x80 at offset %d", ErrMalformed, i-1)
		}
	}

	return out, nil
}
