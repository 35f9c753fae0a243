package status

import "fmt"

// MediaType is byte 11 of a frame
type MediaType byte

const (
	MediaNone             MediaType = 0x00
	MediaLaminatedTape    MediaType = 0x01
	MediaNonLaminatedTape MediaType = 0x03
	MediaHeatShrinkTube   MediaType = 0x11
	MediaIncompatibleTape MediaType = 0xFF
)

var mediaTypeNames = map[MediaType]string{
	MediaNone:             "no media",
	MediaLaminatedTape:    "laminated tape",
	MediaNonLaminatedTape: "non-laminated tape",
	MediaHeatShrinkTube:   "heat-shrink tube",
	MediaIncompatibleTape: "incompatible tape",
}

func (m MediaType) String() string {
	if name, ok := mediaTypeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("media type 0x%02x", byte(m))
}

func parseMediaType(b byte) (MediaType, error) {
	if _, ok := mediaTypeNames[MediaType(b)]; !ok {
		return 0, &UnknownValueError{Field: "media type", Value: b}
	}
	return MediaType(b), nil
}

// TapeColor is byte 24 of a frame
type TapeColor byte

var tapeColorNames = map[TapeColor]string{
	0x01: "white",
	0x02: "other",
	0x03: "clear",
	0x04: "red",
	0x05: "blue",
	0x06: "yellow",
	0x07: "green",
	0x08: "black",
	0x09: "clear (white text)",
	0x20: "matte white",
	0x21: "matte clear",
	0x22: "matte silver",
	0x23: "satin gold",
	0x24: "satin silver",
	0x30: "blue (D)",
	0x31: "red (D)",
	0x40: "fluorescent orange",
	0x41: "fluorescent yellow",
	0x50: "berry pink (S)",
	0x51: "light gray (S)",
	0x52: "lime green (S)",
	0x60: "yellow (F)",
	0x61: "pink (F)",
	0x62: "blue (F)",
	0x70: "white (heat-shrink tube)",
	0x90: "white (flex ID)",
	0x91: "yellow (flex ID)",
	0xF0: "cleaning",
	0xF1: "stencil",
	0xFF: "incompatible",
}

func (c TapeColor) String() string {
	if name, ok := tapeColorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("tape color 0x%02x", byte(c))
}

func parseTapeColor(b byte) (TapeColor, error) {
	if _, ok := tapeColorNames[TapeColor(b)]; !ok {
		return 0, &UnknownValueError{Field: "tape color", Value: b}
	}
	return TapeColor(b), nil
}

// TextColor is byte 25 of a frame
type TextColor byte

var textColorNames = map[TextColor]string{
	0x01: "white",
	0x02: "other",
	0x04: "red",
	0x05: "blue",
	0x08: "black",
	0x0A: "gold",
	0x62: "blue (F)",
	0xF0: "cleaning",
	0xF1: "stencil",
	0xFF: "incompatible",
}

func (c TextColor) String() string {
	if name, ok := textColorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("text color 0x%02x", byte(c))
}

func parseTextColor(b byte) (TextColor, error) {
	if _, ok := textColorNames[TextColor(b)]; !ok {
		return 0, &UnknownValueError{Field: "text color", Value: b}
	}
	return TextColor(b), nil
}

// NotificationNumber is byte 22 of a frame
type NotificationNumber byte

const (
	NotificationNotAvailable NotificationNumber = 0x00
	NotificationCoverOpen    NotificationNumber = 0x01
	NotificationCoverClosed  NotificationNumber = 0x02
)

func (n NotificationNumber) String() string {
	switch n {
	case NotificationNotAvailable:
		return "not available"
	case NotificationCoverOpen:
		return "cover open"
	case NotificationCoverClosed:
		return "cover closed"
	}
	return fmt.Sprintf("notification 0x%02x", byte(n))
}

func parseNotification(b byte) (NotificationNumber, error) {
	if n := NotificationNumber(b); n <= NotificationCoverClosed {
		return n, nil
	}
	return 0, &UnknownValueError{Field: "notification number", Value: b}
}
