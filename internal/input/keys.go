// Package input decodes host terminal input and routes it: to the focused
// child, to the multiplexer's command alphabet behind the prefix key, to
// copy mode, or to modal overlays.
package input

import "unicode/utf8"

// SpecialKey names keys that arrive as escape sequences or dedicated bytes.
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyDelete
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyTab
)

// Key is one decoded keystroke.
type Key struct {
	Rune    rune
	Ctrl    bool
	Alt     bool
	Special SpecialKey
	// Raw holds the exact bytes that produced the key, for verbatim
	// forwarding to the child.
	Raw []byte
}

// Event is one decoded input event: a key or a mouse event.
type Event struct {
	Key   *Key
	Mouse *MouseEvent
}

// Decoder converts the host's raw input bytes into events. Escape
// sequences split across reads are buffered; FlushPending resolves a
// dangling ESC into an Escape key once the stream goes idle.
type Decoder struct {
	pending []byte
}

// Feed consumes a chunk and returns the completed events.
func (d *Decoder) Feed(data []byte) []Event {
	d.pending = append(d.pending, data...)
	var events []Event
	for len(d.pending) > 0 {
		ev, n := d.decodeOne(d.pending)
		if n == 0 {
			break // incomplete sequence, wait for more bytes
		}
		d.pending = d.pending[n:]
		if ev != nil {
			events = append(events, *ev)
		}
	}
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return events
}

// HasPending reports whether an incomplete sequence is buffered.
func (d *Decoder) HasPending() bool { return len(d.pending) > 0 }

// FlushPending resolves buffered bytes after an input lull: a dangling ESC
// becomes the Escape key, anything else is dropped.
func (d *Decoder) FlushPending() []Event {
	if len(d.pending) == 0 {
		return nil
	}
	var events []Event
	if d.pending[0] == 0x1b {
		events = append(events, Event{Key: &Key{Special: KeyEsc, Raw: []byte{0x1b}}})
	}
	d.pending = nil
	return events
}

// decodeOne decodes the first event in buf, returning the event and bytes
// consumed. n == 0 means the buffer holds an incomplete sequence.
func (d *Decoder) decodeOne(buf []byte) (*Event, int) {
	b := buf[0]

	if b == 0x1b {
		return d.decodeEscape(buf)
	}

	switch b {
	case 0x0d, 0x0a:
		return keyEvent(Key{Special: KeyEnter, Raw: buf[:1]}), 1
	case 0x09:
		return keyEvent(Key{Special: KeyTab, Raw: buf[:1]}), 1
	case 0x7f, 0x08:
		return keyEvent(Key{Special: KeyBackspace, Raw: buf[:1]}), 1
	}

	if b < 0x20 {
		return keyEvent(Key{Rune: rune(b + 'a' - 1), Ctrl: true, Raw: buf[:1]}), 1
	}

	// UTF-8 text.
	if !utf8.FullRune(buf) {
		if len(buf) < utf8.UTFMax {
			return nil, 0
		}
	}
	r, size := utf8.DecodeRune(buf)
	return keyEvent(Key{Rune: r, Raw: buf[:size]}), size
}

func keyEvent(k Key) *Event {
	raw := make([]byte, len(k.Raw))
	copy(raw, k.Raw)
	k.Raw = raw
	return &Event{Key: &k}
}

// decodeEscape decodes ESC-introduced sequences: CSI, SS3, and Alt-chords.
func (d *Decoder) decodeEscape(buf []byte) (*Event, int) {
	if len(buf) == 1 {
		return nil, 0 // maybe bare Esc, maybe a sequence head
	}
	switch buf[1] {
	case '[':
		return d.decodeCSI(buf)
	case 'O':
		if len(buf) < 3 {
			return nil, 0
		}
		k := Key{Raw: buf[:3]}
		switch buf[2] {
		case 'A':
			k.Special = KeyUp
		case 'B':
			k.Special = KeyDown
		case 'C':
			k.Special = KeyRight
		case 'D':
			k.Special = KeyLeft
		case 'H':
			k.Special = KeyHome
		case 'F':
			k.Special = KeyEnd
		default:
			return nil, 3
		}
		return keyEvent(k), 3
	default:
		// Alt-chord: ESC + printable.
		if buf[1] >= 0x20 {
			r, size := utf8.DecodeRune(buf[1:])
			return keyEvent(Key{Rune: r, Alt: true, Raw: buf[:1+size]}), 1 + size
		}
		// ESC + control byte: treat as bare Esc, reprocess the rest.
		return keyEvent(Key{Special: KeyEsc, Raw: buf[:1]}), 1
	}
}

// decodeCSI decodes ESC [ ... sequences, including SGR mouse reports.
func (d *Decoder) decodeCSI(buf []byte) (*Event, int) {
	// Find the final byte (0x40-0x7e).
	i := 2
	for i < len(buf) && (buf[i] < 0x40 || buf[i] > 0x7e) {
		i++
	}
	if i >= len(buf) {
		return nil, 0
	}
	final := buf[i]
	seq := buf[:i+1]
	params := string(buf[2:i])

	switch final {
	case 'M', 'm':
		if len(params) > 0 && params[0] == '<' {
			if ev := decodeSGRMouse(params[1:], final == 'M', seq); ev != nil {
				return ev, len(seq)
			}
		}
		return nil, len(seq)
	case 'A', 'B', 'C', 'D', 'H', 'F':
		k := Key{Raw: seq}
		switch final {
		case 'A':
			k.Special = KeyUp
		case 'B':
			k.Special = KeyDown
		case 'C':
			k.Special = KeyRight
		case 'D':
			k.Special = KeyLeft
		case 'H':
			k.Special = KeyHome
		case 'F':
			k.Special = KeyEnd
		}
		return keyEvent(k), len(seq)
	case '~':
		k := Key{Raw: seq}
		switch params {
		case "1", "7":
			k.Special = KeyHome
		case "3":
			k.Special = KeyDelete
		case "4", "8":
			k.Special = KeyEnd
		case "5":
			k.Special = KeyPageUp
		case "6":
			k.Special = KeyPageDown
		default:
			return nil, len(seq)
		}
		return keyEvent(k), len(seq)
	case 'Z':
		return keyEvent(Key{Special: KeyTab, Raw: seq}), len(seq)
	default:
		return nil, len(seq)
	}
}
