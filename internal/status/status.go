// Package status decodes the 32-byte status frames a P-touch printer sends
// in reply to a status request and, unprompted, while it prints.
package status

import (
	"encoding/binary"
	"fmt"
)

// FrameSize is the length of every status frame
const FrameSize = 32

// Field offsets within a frame
const (
	offErrorInfo1         = 8
	offErrorInfo2         = 9
	offMediaWidth         = 10
	offMediaType          = 11
	offMode               = 15
	offMediaLength        = 17
	offStatusType         = 18
	offPhaseType          = 19
	offPhaseNumber        = 20
	offNotificationNumber = 22
	offTapeColor          = 24
	offTextColor          = 25
	offHardwareSettings   = 26
)

// StatusType is the kind of frame, byte 18
type StatusType byte

const (
	TypeReplyToStatus     StatusType = 0x00
	TypePrintingCompleted StatusType = 0x01
	TypeErrorOccurred     StatusType = 0x02
	TypeTurnedOff         StatusType = 0x04
	TypeNotification      StatusType = 0x05
	TypePhaseChange       StatusType = 0x06
)

func (t StatusType) String() string {
	switch t {
	case TypeReplyToStatus:
		return "reply to status request"
	case TypePrintingCompleted:
		return "printing completed"
	case TypeErrorOccurred:
		return "error occurred"
	case TypeTurnedOff:
		return "turned off"
	case TypeNotification:
		return "notification"
	case TypePhaseChange:
		return "phase change"
	}
	return fmt.Sprintf("status type 0x%02x", byte(t))
}

// Error information 1 flags, byte 8
const (
	Err1NoMedia            byte = 0x01
	Err1CutterJam          byte = 0x04
	Err1WeakBatteries      byte = 0x08
	Err1HighVoltageAdapter byte = 0x40
)

// Error information 2 flags, byte 9
const (
	Err2WrongMedia  byte = 0x01
	Err2CoverOpen   byte = 0x10
	Err2Overheating byte = 0x20
)

// Mode is the various-mode bitmask, byte 15
type Mode byte

const (
	ModeAutoCut        Mode = 0x40
	ModeMirrorPrinting Mode = 0x80
)

// Frame holds the raw bytes of a status frame and the fields read from them.
// Fields are not validated until the frame is classified with Event.
type Frame struct {
	Raw [FrameSize]byte

	ErrorInfo1         byte
	ErrorInfo2         byte
	MediaWidth         byte
	MediaType          byte
	Mode               Mode
	MediaLength        byte
	StatusType         StatusType
	PhaseType          PhaseType
	PhaseNumber        uint16
	NotificationNumber byte
	TapeColor          byte
	TextColor          byte
	HardwareSettings   byte
}

// Parse reads the fields of a status frame. Anything other than exactly
// FrameSize bytes is rejected.
func Parse(raw []byte) (*Frame, error) {
	if len(raw) != FrameSize {
		return nil, &InvalidResponseError{Length: len(raw)}
	}

	f := &Frame{
		ErrorInfo1:         raw[offErrorInfo1],
		ErrorInfo2:         raw[offErrorInfo2],
		MediaWidth:         raw[offMediaWidth],
		MediaType:          raw[offMediaType],
		Mode:               Mode(raw[offMode]),
		MediaLength:        raw[offMediaLength],
		StatusType:         StatusType(raw[offStatusType]),
		PhaseType:          PhaseType(raw[offPhaseType]),
		PhaseNumber:        binary.BigEndian.Uint16(raw[offPhaseNumber:]),
		NotificationNumber: raw[offNotificationNumber],
		TapeColor:          raw[offTapeColor],
		TextColor:          raw[offTextColor],
		HardwareSettings:   raw[offHardwareSettings],
	}
	copy(f.Raw[:], raw)
	return f, nil
}

// Decode parses and classifies a status frame in one step
func Decode(raw []byte) (Event, error) {
	f, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return f.Event()
}

// Event classifies the frame by its status type
func (f *Frame) Event() (Event, error) {
	switch f.StatusType {
	case TypeReplyToStatus:
		return newReplyToStatus(f)
	case TypePrintingCompleted:
		return PrintingCompleted{
			AutoCut:        f.Mode&ModeAutoCut != 0,
			MirrorPrinting: f.Mode&ModeMirrorPrinting != 0,
		}, nil
	case TypeErrorOccurred:
		return ErrorOccurred{Kind: classifyError(f.ErrorInfo1, f.ErrorInfo2), Frame: f}, nil
	case TypeTurnedOff:
		return TurnedOff{Frame: f}, nil
	case TypeNotification:
		return newNotification(f)
	case TypePhaseChange:
		return newPhaseChange(f)
	}
	return nil, &InvalidCodeError{Code: byte(f.StatusType)}
}

// classifyError picks one error kind from the two error bytes. The first
// matching bit wins, error information 1 before error information 2.
func classifyError(info1, info2 byte) ErrorKind {
	switch {
	case info1&Err1NoMedia != 0:
		return NoMedia
	case info1&Err1CutterJam != 0:
		return CutterJam
	case info1&Err1WeakBatteries != 0:
		return WeakBatteries
	case info1&Err1HighVoltageAdapter != 0:
		return HighVoltageAdapter
	case info2&Err2WrongMedia != 0:
		return WrongMedia
	case info2&Err2CoverOpen != 0:
		return CoverOpen
	case info2&Err2Overheating != 0:
		return Overheating
	}
	return UnknownStatusMessage
}

func (f *Frame) String() string {
	return fmt.Sprintf("status frame [% x]: error_information1=%x error_information2=%x "+
		"media_width=%x media_type=%x mode=%x media_length=%x status_type=%x phase_type=%x "+
		"phase_number=%x notification_number=%x tape_color=%x text_color=%x hardware_settings=%x",
		f.Raw[:], f.ErrorInfo1, f.ErrorInfo2, f.MediaWidth, f.MediaType, byte(f.Mode), f.MediaLength,
		byte(f.StatusType), byte(f.PhaseType), f.PhaseNumber, f.NotificationNumber,
		f.TapeColor, f.TextColor, f.HardwareSettings)
}
