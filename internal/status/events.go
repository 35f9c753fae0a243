package status

import "fmt"

// Event is a classified status frame. It is one of ReplyToStatus,
// PrintingCompleted, ErrorOccurred, TurnedOff, Notification or PhaseChange.
type Event interface {
	fmt.Stringer
	Type() StatusType
}

// ReplyToStatus answers an explicit status request and describes the
// loaded media.
type ReplyToStatus struct {
	MediaWidth byte // mm
	MediaType  MediaType
	TapeColor  TapeColor
	TextColor  TextColor
}

func newReplyToStatus(f *Frame) (Event, error) {
	mt, err := parseMediaType(f.MediaType)
	if err != nil {
		return nil, err
	}
	tape, err := parseTapeColor(f.TapeColor)
	if err != nil {
		return nil, err
	}
	text, err := parseTextColor(f.TextColor)
	if err != nil {
		return nil, err
	}
	return ReplyToStatus{MediaWidth: f.MediaWidth, MediaType: mt, TapeColor: tape, TextColor: text}, nil
}

func (ReplyToStatus) Type() StatusType { return TypeReplyToStatus }

func (e ReplyToStatus) String() string {
	return fmt.Sprintf("reply to status: media width=%dmm media type=%s tape color=%s text color=%s",
		e.MediaWidth, e.MediaType, e.TapeColor, e.TextColor)
}

// PrintingCompleted marks the end of one printed page
type PrintingCompleted struct {
	AutoCut        bool
	MirrorPrinting bool
}

func (PrintingCompleted) Type() StatusType { return TypePrintingCompleted }

func (e PrintingCompleted) String() string {
	return fmt.Sprintf("printing completed: auto cut=%t mirror printing=%t", e.AutoCut, e.MirrorPrinting)
}

// ErrorOccurred reports a printer fault
type ErrorOccurred struct {
	Kind  ErrorKind
	Frame *Frame
}

func (ErrorOccurred) Type() StatusType { return TypeErrorOccurred }

func (e ErrorOccurred) String() string {
	return "error occurred: " + e.Kind.String()
}

// Err returns the fault as a *PrinterError
func (e ErrorOccurred) Err() error {
	return &PrinterError{Kind: e.Kind, Frame: e.Frame}
}

// TurnedOff is sent when the printer is switched off
type TurnedOff struct {
	Frame *Frame
}

func (TurnedOff) Type() StatusType { return TypeTurnedOff }

func (TurnedOff) String() string {
	return "turned off"
}

// Err returns a *PrinterError of kind DeviceTurnedOff
func (e TurnedOff) Err() error {
	return &PrinterError{Kind: DeviceTurnedOff, Frame: e.Frame}
}

// Notification reports a cover state change
type Notification struct {
	Number NotificationNumber
}

func newNotification(f *Frame) (Event, error) {
	n, err := parseNotification(f.NotificationNumber)
	if err != nil {
		return nil, err
	}
	return Notification{Number: n}, nil
}

func (Notification) Type() StatusType { return TypeNotification }

func (e Notification) String() string {
	return "notification: " + e.Number.String()
}

// PhaseType is byte 19 of a frame
type PhaseType byte

const (
	PhaseTypeEditing  PhaseType = 0x00
	PhaseTypePrinting PhaseType = 0x01
)

func (t PhaseType) String() string {
	switch t {
	case PhaseTypeEditing:
		return "editing state"
	case PhaseTypePrinting:
		return "printing state"
	}
	return fmt.Sprintf("phase type 0x%02x", byte(t))
}

// Phase is a phase number interpreted against its phase type
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseFeed
	PhasePrinting
	PhaseCoverOpenWhileReceiving
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseFeed:
		return "feed"
	case PhasePrinting:
		return "printing"
	case PhaseCoverOpenWhileReceiving:
		return "cover open while receiving"
	}
	return fmt.Sprintf("phase %d", int(p))
}

// PhaseChange reports that the printer moved to another phase
type PhaseChange struct {
	PhaseType PhaseType
	Phase     Phase
}

func newPhaseChange(f *Frame) (Event, error) {
	var phase Phase
	switch {
	case f.PhaseType == PhaseTypeEditing && f.PhaseNumber == 0x0000:
		phase = PhaseEditing
	case f.PhaseType == PhaseTypeEditing && f.PhaseNumber == 0x0001:
		phase = PhaseFeed
	case f.PhaseType == PhaseTypePrinting && f.PhaseNumber == 0x0000:
		phase = PhasePrinting
	case f.PhaseType == PhaseTypePrinting && f.PhaseNumber == 0x0014:
		phase = PhaseCoverOpenWhileReceiving
	default:
		return nil, &UnknownPhaseError{Type: f.PhaseType, Number: f.PhaseNumber}
	}
	return PhaseChange{PhaseType: f.PhaseType, Phase: phase}, nil
}

func (PhaseChange) Type() StatusType { return TypePhaseChange }

func (e PhaseChange) String() string {
	return fmt.Sprintf("phase change: %s, %s", e.PhaseType, e.Phase)
}
