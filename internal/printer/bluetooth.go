package printer

import "errors"

// Common errors
var (
	ErrRFCOMMFailed   = errors.New("failed to establish RFCOMM connection")
	ErrInvalidAddress = errors.New("invalid bluetooth address")
)

// DefaultRFCOMMChannel is the SPP channel the printer listens on
const DefaultRFCOMMChannel = 1
