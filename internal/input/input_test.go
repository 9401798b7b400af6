package input

import (
	"bytes"
	"testing"
	"time"

	"wtmux/internal/layout"
	"wtmux/internal/term"
)

// --- decoder ---

func feedOne(t *testing.T, d *Decoder, data string) Event {
	t.Helper()
	events := d.Feed([]byte(data))
	if len(events) != 1 {
		t.Fatalf("expected 1 event for %q, got %d", data, len(events))
	}
	return events[0]
}

func TestDecode_PlainRune(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "a")
	if ev.Key == nil || ev.Key.Rune != 'a' || ev.Key.Ctrl {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestDecode_CtrlKey(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x02")
	if ev.Key == nil || !ev.Key.Ctrl || ev.Key.Rune != 'b' {
		t.Fatalf("expected ctrl+b, got %+v", ev.Key)
	}
}

func TestDecode_ArrowKey(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x1b[A")
	if ev.Key == nil || ev.Key.Special != KeyUp {
		t.Fatalf("expected up arrow, got %+v", ev.Key)
	}
	if !bytes.Equal(ev.Key.Raw, []byte("\x1b[A")) {
		t.Fatalf("raw bytes must be preserved for forwarding, got %q", ev.Key.Raw)
	}
}

func TestDecode_SplitEscapeSequence(t *testing.T) {
	var d Decoder
	if events := d.Feed([]byte("\x1b[")); len(events) != 0 {
		t.Fatalf("incomplete sequence must buffer, got %d events", len(events))
	}
	ev := feedOne(t, &d, "B")
	if ev.Key.Special != KeyDown {
		t.Fatalf("expected down arrow after reassembly, got %+v", ev.Key)
	}
}

func TestDecode_BareEscapeViaFlush(t *testing.T) {
	var d Decoder
	if events := d.Feed([]byte("\x1b")); len(events) != 0 {
		t.Fatalf("lone ESC must wait")
	}
	events := d.FlushPending()
	if len(events) != 1 || events[0].Key.Special != KeyEsc {
		t.Fatalf("expected Esc from flush, got %+v", events)
	}
}

func TestDecode_AltChord(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x1bf")
	if ev.Key == nil || !ev.Key.Alt || ev.Key.Rune != 'f' {
		t.Fatalf("expected alt+f, got %+v", ev.Key)
	}
}

func TestDecode_UTF8Rune(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "é")
	if ev.Key == nil || ev.Key.Rune != 'é' {
		t.Fatalf("expected é, got %+v", ev.Key)
	}
}

// --- mouse decode ---

func TestDecode_SGRMousePress(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x1b[<0;10;5M")
	m := ev.Mouse
	if m == nil || m.Button != ButtonLeft || !m.Press || m.X != 9 || m.Y != 4 {
		t.Fatalf("unexpected mouse event %+v", m)
	}
}

func TestDecode_SGRMouseShiftWheel(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x1b[<68;3;3M")
	m := ev.Mouse
	if m == nil || m.Button != WheelUp || !m.Shift {
		t.Fatalf("expected shifted wheel up, got %+v", m)
	}
}

func TestDecode_SGRMouseDrag(t *testing.T) {
	var d Decoder
	ev := feedOne(t, &d, "\x1b[<32;4;4M")
	m := ev.Mouse
	if m == nil || m.Button != ButtonLeft || !m.Motion || !m.Press {
		t.Fatalf("expected left drag, got %+v", m)
	}
}

// --- mouse encode ---

func TestEncodeMouse_SGR(t *testing.T) {
	e := &MouseEvent{Button: ButtonLeft, Press: true}
	got := EncodeMouse(e, term.MouseEncSGR, 4, 9)
	if string(got) != "\x1b[<0;5;10M" {
		t.Fatalf("unexpected SGR encoding %q", got)
	}
	e.Press = false
	got = EncodeMouse(e, term.MouseEncSGR, 4, 9)
	if string(got) != "\x1b[<0;5;10m" {
		t.Fatalf("release must use lowercase m, got %q", got)
	}
}

func TestEncodeMouse_SGRLargeCoordinates(t *testing.T) {
	e := &MouseEvent{Button: ButtonLeft, Press: true}
	got := EncodeMouse(e, term.MouseEncSGR, 299, 399)
	if string(got) != "\x1b[<0;300;400M" {
		t.Fatalf("SGR must carry coordinates beyond 223, got %q", got)
	}
}

func TestEncodeMouse_URXVT(t *testing.T) {
	e := &MouseEvent{Button: ButtonRight, Press: true}
	got := EncodeMouse(e, term.MouseEncURXVT, 0, 0)
	if string(got) != "\x1b[34;1;1M" {
		t.Fatalf("unexpected URXVT encoding %q", got)
	}
}

func TestEncodeMouse_X10OutOfRangeEmitsNothing(t *testing.T) {
	e := &MouseEvent{Button: ButtonLeft, Press: true}
	if got := EncodeMouse(e, term.MouseEncX10, 230, 10); got != nil {
		t.Fatalf("X10 beyond 223 must emit nothing, got %q", got)
	}
	got := EncodeMouse(e, term.MouseEncX10, 2, 3)
	want := []byte{0x1b, '[', 'M', 32, 35, 36}
	if !bytes.Equal(got, want) {
		t.Fatalf("unexpected X10 encoding %v, want %v", got, want)
	}
}

func TestEncodeMouse_ModifiersAndWheel(t *testing.T) {
	e := &MouseEvent{Button: WheelDown, Press: true, Ctrl: true}
	got := EncodeMouse(e, term.MouseEncSGR, 0, 0)
	if string(got) != "\x1b[<81;1;1M" {
		t.Fatalf("expected wheel-down+ctrl code 81, got %q", got)
	}
}

func TestWantsEvent(t *testing.T) {
	var m term.Mode
	click := &MouseEvent{Button: ButtonLeft, Press: true}
	motion := &MouseEvent{Button: ButtonNone, Motion: true, Press: true}
	drag := &MouseEvent{Button: ButtonLeft, Motion: true, Press: true}

	if WantsEvent(m, click) {
		t.Fatalf("no tracking mode set")
	}
	m = term.ModeMouseClick
	if !WantsEvent(m, click) || WantsEvent(m, drag) || WantsEvent(m, motion) {
		t.Fatalf("1000 wants clicks only")
	}
	m = term.ModeMouseClick | term.ModeMouseDrag
	if !WantsEvent(m, drag) || WantsEvent(m, motion) {
		t.Fatalf("1002 adds drags, not bare motion")
	}
	m = term.ModeMouseMotion
	if !WantsEvent(m, motion) {
		t.Fatalf("1003 wants all motion")
	}
}

// --- router ---

func prefixKey() *Key { return &Key{Rune: 'b', Ctrl: true, Raw: []byte{0x02}} }

func TestRouter_ForwardsInNormal(t *testing.T) {
	r := NewRouter(0x02, nil)
	cmds := r.HandleKey(&Key{Rune: 'x', Raw: []byte("x")})
	if len(cmds) != 1 || cmds[0].Kind != CmdForward || string(cmds[0].Raw) != "x" {
		t.Fatalf("unexpected commands %+v", cmds)
	}
}

func TestRouter_PrefixThenCommand(t *testing.T) {
	r := NewRouter(0x02, nil)
	if cmds := r.HandleKey(prefixKey()); cmds != nil {
		t.Fatalf("prefix alone must emit nothing")
	}
	if r.State() != StateAwaitingPrefix {
		t.Fatalf("expected AWAITING_PREFIX_ARG")
	}
	cmds := r.HandleKey(&Key{Rune: 'c'})
	if len(cmds) != 1 || cmds[0].Kind != CmdNewTab {
		t.Fatalf("expected new-tab command, got %+v", cmds)
	}
	if r.State() != StateNormal {
		t.Fatalf("expected return to NORMAL")
	}
}

func TestRouter_DoubledPrefixSendsLiteral(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	cmds := r.HandleKey(&Key{Rune: 'b'})
	if len(cmds) != 1 || cmds[0].Kind != CmdLiteralPrefix {
		t.Fatalf("expected literal prefix, got %+v", cmds)
	}
}

func TestRouter_UnrecognizedCancelsSilently(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	if cmds := r.HandleKey(&Key{Rune: '!'}); cmds != nil {
		t.Fatalf("unrecognized key must cancel silently, got %+v", cmds)
	}
	if r.State() != StateNormal {
		t.Fatalf("expected NORMAL after cancel")
	}
}

func TestRouter_EscCancelsPrefix(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	r.HandleKey(&Key{Special: KeyEsc})
	if r.State() != StateNormal {
		t.Fatalf("expected Esc to cancel")
	}
}

func TestRouter_NumberSelect(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	r.HandleKey(&Key{Rune: 'q'})
	if r.State() != StateNumberSelect {
		t.Fatalf("expected NUMBER_SELECT")
	}
	cmds := r.HandleKey(&Key{Rune: '2'})
	if len(cmds) != 1 || cmds[0].Kind != CmdSelectPane || cmds[0].N != 2 {
		t.Fatalf("expected pane 2 selection, got %+v", cmds)
	}
}

func TestRouter_NumberSelectExpires(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	r.HandleKey(&Key{Rune: 'q'})
	if !r.Expired(time.Now().Add(3 * time.Second)) {
		t.Fatalf("expected expiry after 2s")
	}
	if r.State() != StateNormal {
		t.Fatalf("expected NORMAL after expiry")
	}
}

func TestRouter_RenameFlow(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	r.HandleKey(&Key{Rune: ','})
	if r.State() != StateRenameTab {
		t.Fatalf("expected RENAME_TAB")
	}
	r.HandleKey(&Key{Rune: 'w'})
	r.HandleKey(&Key{Rune: 'q'})
	r.HandleKey(&Key{Special: KeyBackspace})
	r.HandleKey(&Key{Rune: 'k'})
	cmds := r.HandleKey(&Key{Special: KeyEnter})
	if len(cmds) != 1 || cmds[0].Kind != CmdRenameTab || cmds[0].Data != "wk" {
		t.Fatalf("expected rename to %q, got %+v", "wk", cmds)
	}
}

func TestRouter_SplitKeys(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	cmds := r.HandleKey(&Key{Rune: '"'})
	if cmds[0].Kind != CmdSplitHorizontal {
		t.Fatalf(`expected " to split top/bottom`)
	}
	r.HandleKey(prefixKey())
	cmds = r.HandleKey(&Key{Rune: '%'})
	if cmds[0].Kind != CmdSplitVertical {
		t.Fatalf("expected %% to split side by side")
	}
}

func TestRouter_ThemePicker(t *testing.T) {
	r := NewRouter(0x02, []string{"default", "monokai"})
	r.HandleKey(prefixKey())
	r.HandleKey(&Key{Rune: 'T'})
	cmds := r.HandleKey(&Key{Rune: 'j'})
	if len(cmds) != 1 || cmds[0].Kind != CmdThemePreview || cmds[0].Data != "monokai" {
		t.Fatalf("expected preview of monokai, got %+v", cmds)
	}
	cmds = r.HandleKey(&Key{Special: KeyEnter})
	if cmds[0].Kind != CmdThemeCommit || cmds[0].Data != "monokai" {
		t.Fatalf("expected commit, got %+v", cmds)
	}
}

func TestRouter_FocusArrows(t *testing.T) {
	r := NewRouter(0x02, nil)
	r.HandleKey(prefixKey())
	cmds := r.HandleKey(&Key{Special: KeyLeft})
	if cmds[0].Kind != CmdFocusDir || cmds[0].Dir != layout.Left {
		t.Fatalf("expected focus-left, got %+v", cmds)
	}
}

// --- bracketed paste ---

func TestWrapPaste(t *testing.T) {
	text := "line1\nline2"
	raw := WrapPaste(text, false)
	if string(raw) != text {
		t.Fatalf("raw paste must preserve newlines, got %q", raw)
	}
	bracketed := WrapPaste(text, true)
	want := "\x1b[200~line1\nline2\x1b[201~"
	if string(bracketed) != want {
		t.Fatalf("expected %q, got %q", want, bracketed)
	}
}
