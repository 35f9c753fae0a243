package printer

import (
	"errors"
	"fmt"

	"ptouch-print/internal/media"
	"ptouch-print/internal/raster"
)

var (
	ErrEmptyJob      = errors.New("print job has no image data")
	ErrInvalidCopies = errors.New("number of copies must be at least 1")
)

// Job is an encoded bitmap ready to be printed one or more times
type Job struct {
	data   []byte
	lines  []raster.Line
	tape   media.Tape
	copies int
}

// NewJob validates an encoded bitmap and compresses it once for all copies
func NewJob(data []byte, tape media.Tape, copies int) (*Job, error) {
	if len(data) == 0 {
		return nil, ErrEmptyJob
	}
	if copies < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCopies, copies)
	}

	lines, err := raster.Rasterize(data)
	if err != nil {
		return nil, err
	}

	return &Job{
		data:   append([]byte(nil), data...),
		lines:  lines,
		tape:   tape,
		copies: copies,
	}, nil
}

// Tape returns the tape the job was encoded for
func (j *Job) Tape() media.Tape {
	return j.tape
}

// Copies returns the number of copies to print
func (j *Job) Copies() int {
	return j.copies
}

// DataLength returns the size of the encoded bitmap in bytes
func (j *Job) DataLength() int {
	return len(j.data)
}

// Lines returns the number of raster lines per copy
func (j *Job) Lines() int {
	return len(j.lines)
}
