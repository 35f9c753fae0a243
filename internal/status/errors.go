package status

import "fmt"

// ErrorKind identifies a printer fault
type ErrorKind int

const (
	UnknownStatusMessage ErrorKind = iota
	DeviceTurnedOff
	NoMedia
	CutterJam
	WeakBatteries
	HighVoltageAdapter
	WrongMedia
	CoverOpen
	Overheating
)

func (k ErrorKind) String() string {
	switch k {
	case DeviceTurnedOff:
		return "device was turned off"
	case NoMedia:
		return "no media in printer"
	case CutterJam:
		return "cutter jammed"
	case WeakBatteries:
		return "weak batteries"
	case HighVoltageAdapter:
		return "high voltage adapter"
	case WrongMedia:
		return "wrong media in printer"
	case CoverOpen:
		return "cover open"
	case Overheating:
		return "printer overheating"
	}
	return "unknown status message"
}

// PrinterError is a fault reported by the printer itself. Frame is the
// status frame that carried it, nil for the sentinel values below.
type PrinterError struct {
	Kind  ErrorKind
	Frame *Frame
}

func (e *PrinterError) Error() string {
	return "printer error: " + e.Kind.String()
}

// Is matches any PrinterError of the same kind, so
// errors.Is(err, ErrCoverOpen) holds for every cover-open frame.
func (e *PrinterError) Is(target error) bool {
	t, ok := target.(*PrinterError)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnknownStatusMessage = &PrinterError{Kind: UnknownStatusMessage}
	ErrDeviceTurnedOff      = &PrinterError{Kind: DeviceTurnedOff}
	ErrNoMedia              = &PrinterError{Kind: NoMedia}
	ErrCutterJam            = &PrinterError{Kind: CutterJam}
	ErrWeakBatteries        = &PrinterError{Kind: WeakBatteries}
	ErrHighVoltageAdapter   = &PrinterError{Kind: HighVoltageAdapter}
	ErrWrongMedia           = &PrinterError{Kind: WrongMedia}
	ErrCoverOpen            = &PrinterError{Kind: CoverOpen}
	ErrOverheating          = &PrinterError{Kind: Overheating}
)

// InvalidResponseError is returned for a frame that is not FrameSize bytes long
type InvalidResponseError struct {
	Length int
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid status response: expected %d bytes, received %d", FrameSize, e.Length)
}

// InvalidCodeError is returned for an unknown status type byte
type InvalidCodeError struct {
	Code byte
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("printer responded with unknown status type 0x%02x", e.Code)
}

// UnknownPhaseError is returned for a phase change frame whose phase type and
// number do not form a known phase.
type UnknownPhaseError struct {
	Type   PhaseType
	Number uint16
}

func (e *UnknownPhaseError) Error() string {
	return fmt.Sprintf("unknown phase 0x%04x for phase type 0x%02x", e.Number, byte(e.Type))
}

// UnknownValueError is returned when a field holds a value outside its
// documented set.
type UnknownValueError struct {
	Field string
	Value byte
}

func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s 0x%02x", e.Field, e.Value)
}
