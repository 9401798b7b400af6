package input

import (
	"fmt"
	"strconv"
	"strings"

	"wtmux/internal/term"
)

// MouseButton identifies the button of a mouse event.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonMiddle
	ButtonRight
	ButtonNone // motion without a held button
	WheelUp
	WheelDown
)

// MouseEvent is one decoded host mouse report in 0-based screen
// coordinates.
type MouseEvent struct {
	Button MouseButton
	X      int
	Y      int
	Press  bool // true for press or drag, false for release
	Motion bool // motion report (with or without a held button)
	Shift  bool
	Alt    bool
	Ctrl   bool
	Raw    []byte
}

// IsWheel reports whether the event is a scroll step.
func (e *MouseEvent) IsWheel() bool {
	return e.Button == WheelUp || e.Button == WheelDown
}

// decodeSGRMouse parses the "<Cb;X;Y" body of a host SGR report. Host
// coordinates arrive 1-based.
func decodeSGRMouse(params string, press bool, raw []byte) *Event {
	parts := strings.Split(params, ";")
	if len(parts) != 3 {
		return nil
	}
	cb, err1 := strconv.Atoi(parts[0])
	x, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}

	ev := MouseEvent{
		X:     x - 1,
		Y:     y - 1,
		Press: press,
		Shift: cb&4 != 0,
		Alt:   cb&8 != 0,
		Ctrl:  cb&16 != 0,
	}
	ev.Motion = cb&32 != 0
	switch {
	case cb&64 != 0:
		if cb&1 != 0 {
			ev.Button = WheelDown
		} else {
			ev.Button = WheelUp
		}
	default:
		switch cb & 3 {
		case 0:
			ev.Button = ButtonLeft
		case 1:
			ev.Button = ButtonMiddle
		case 2:
			ev.Button = ButtonRight
		case 3:
			ev.Button = ButtonNone
		}
	}
	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)
	ev.Raw = rawCopy
	return &Event{Mouse: &ev}
}

// buttonCode builds the wire button code: 0 left, 1 middle, 2 right,
// 64/65 wheel, 35 motion without button, +32 for drag motion, +4 shift,
// +8 alt, +16 ctrl.
func buttonCode(e *MouseEvent) int {
	var cb int
	switch e.Button {
	case ButtonLeft:
		cb = 0
	case ButtonMiddle:
		cb = 1
	case ButtonRight:
		cb = 2
	case ButtonNone:
		cb = 35
	case WheelUp:
		cb = 64
	case WheelDown:
		cb = 65
	}
	if e.Motion && e.Button != ButtonNone {
		cb += 32
	}
	if e.Shift {
		cb += 4
	}
	if e.Alt {
		cb += 8
	}
	if e.Ctrl {
		cb += 16
	}
	return cb
}

// EncodeMouse translates a host mouse event to the child's wire format at
// pane-local 0-based coordinates (px, py). Returns nil when the event
// cannot be represented in the pane's encoding (X10 out of range).
func EncodeMouse(e *MouseEvent, enc term.MouseEncoding, px, py int) []byte {
	cb := buttonCode(e)
	switch enc {
	case term.MouseEncSGR:
		// Wire coordinates are 1-based; M marks press/drag, m release.
		suffix := byte('M')
		if !e.Press && !e.IsWheel() {
			suffix = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", cb, px+1, py+1, suffix))
	case term.MouseEncURXVT:
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", cb+32, px+1, py+1))
	default: // X10
		// Releases collapse to button code 3; coordinates beyond 223
		// cannot be encoded in a single byte and emit nothing.
		if !e.Press && !e.IsWheel() {
			cb = (cb &^ 3) | 3
		}
		if px+1 > 223 || py+1 > 223 {
			return nil
		}
		return []byte{0x1b, '[', 'M', byte(cb + 32), byte(px + 1 + 32), byte(py + 1 + 32)}
	}
}

// WantsEvent reports whether the child's tracking mode asks for this event
// class: clicks only (1000), click+drag (1002), or all motion (1003).
func WantsEvent(modes term.Mode, e *MouseEvent) bool {
	if !modes.MouseEnabled() {
		return false
	}
	if e.IsWheel() {
		return true
	}
	if !e.Motion {
		return true
	}
	if e.Button == ButtonNone {
		return modes.Has(term.ModeMouseMotion)
	}
	return modes.Has(term.ModeMouseDrag) || modes.Has(term.ModeMouseMotion)
}
