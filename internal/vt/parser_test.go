package vt_test

import (
	"testing"

	"wtmux/internal/term"
	"wtmux/internal/vt"
)

// recorder captures dispatches for parser-level assertions.
type recorder struct {
	printed []rune
	execs   []byte
	csis    []csiCall
	oscs    []oscCall
	escs    []byte
}

type csiCall struct {
	params  [][]int
	private bool
	final   byte
}

type oscCall struct {
	command int
	payload string
}

func (r *recorder) Print(ru rune, width int) { r.printed = append(r.printed, ru) }
func (r *recorder) Execute(b byte)           { r.execs = append(r.execs, b) }
func (r *recorder) CSI(params [][]int, intermediates []byte, private bool, final byte) {
	cp := make([][]int, len(params))
	for i, p := range params {
		cp[i] = append([]int(nil), p...)
	}
	r.csis = append(r.csis, csiCall{params: cp, private: private, final: final})
}
func (r *recorder) ESC(intermediates []byte, final byte) { r.escs = append(r.escs, final) }
func (r *recorder) OSC(command int, payload []byte) {
	r.oscs = append(r.oscs, oscCall{command: command, payload: string(payload)})
}

func parse(s string) *recorder {
	rec := &recorder{}
	vt.NewParser(rec).Parse([]byte(s))
	return rec
}

// --- CSI ---

func TestParse_CSIParams(t *testing.T) {
	rec := parse("\x1b[3;7H")
	if len(rec.csis) != 1 {
		t.Fatalf("expected 1 csi, got %d", len(rec.csis))
	}
	c := rec.csis[0]
	if c.final != 'H' || len(c.params) != 2 || c.params[0][0] != 3 || c.params[1][0] != 7 {
		t.Fatalf("unexpected dispatch %+v", c)
	}
}

func TestParse_CSIPrivate(t *testing.T) {
	rec := parse("\x1b[?1049h")
	c := rec.csis[0]
	if !c.private || c.final != 'h' || c.params[0][0] != 1049 {
		t.Fatalf("unexpected dispatch %+v", c)
	}
}

func TestParse_CSISubparams(t *testing.T) {
	rec := parse("\x1b[38:2:10:20:30m")
	c := rec.csis[0]
	if len(c.params) != 1 {
		t.Fatalf("expected 1 param group, got %d", len(c.params))
	}
	want := []int{38, 2, 10, 20, 30}
	for i, v := range want {
		if c.params[0][i] != v {
			t.Fatalf("subparam %d: expected %d, got %d", i, v, c.params[0][i])
		}
	}
}

func TestParse_CSIEmptyParamsDefaultToZero(t *testing.T) {
	rec := parse("\x1b[;5H")
	c := rec.csis[0]
	if c.params[0][0] != 0 || c.params[1][0] != 5 {
		t.Fatalf("unexpected params %+v", c.params)
	}
}

func TestParse_C0ExecutesInsideCSI(t *testing.T) {
	rec := parse("\x1b[3\n;7H")
	if len(rec.execs) != 1 || rec.execs[0] != '\n' {
		t.Fatalf("expected LF executed mid-sequence, got %v", rec.execs)
	}
	if len(rec.csis) != 1 || rec.csis[0].params[0][0] != 3 {
		t.Fatalf("CSI must survive an embedded C0, got %+v", rec.csis)
	}
}

// --- OSC ---

func TestParse_OSCBelTerminated(t *testing.T) {
	rec := parse("\x1b]0;my title\x07")
	if len(rec.oscs) != 1 || rec.oscs[0].command != 0 || rec.oscs[0].payload != "my title" {
		t.Fatalf("unexpected OSC %+v", rec.oscs)
	}
}

func TestParse_OSCStTerminatedNoStrayBackslash(t *testing.T) {
	rec := parse("\x1b]0;title\x1b\\tail")
	if len(rec.oscs) != 1 || rec.oscs[0].payload != "title" {
		t.Fatalf("unexpected OSC %+v", rec.oscs)
	}
	if string(rec.printed) != "tail" {
		t.Fatalf("expected %q printed after OSC, got %q", "tail", string(rec.printed))
	}
}

// --- UTF-8 ---

func TestParse_UTF8AcrossChunks(t *testing.T) {
	rec := &recorder{}
	p := vt.NewParser(rec)
	data := []byte("日")
	p.Parse(data[:1])
	p.Parse(data[1:])
	if string(rec.printed) != "日" {
		t.Fatalf("expected buffered multibyte decode, got %q", string(rec.printed))
	}
}

func TestParse_InvalidUTF8ProducesReplacement(t *testing.T) {
	rec := parse("\xffA")
	if len(rec.printed) != 2 || rec.printed[0] != '�' || rec.printed[1] != 'A' {
		t.Fatalf("expected U+FFFD then A, got %q", string(rec.printed))
	}
}

func TestParse_TruncatedUTF8FlushedByEscape(t *testing.T) {
	rec := parse("\xe6\x97\x1b[1m")
	if len(rec.printed) != 1 || rec.printed[0] != '�' {
		t.Fatalf("expected replacement for truncated sequence, got %q", string(rec.printed))
	}
	if len(rec.csis) != 1 || rec.csis[0].final != 'm' {
		t.Fatalf("expected SGR still dispatched")
	}
}

// --- ESC / DCS ---

func TestParse_ESCDispatch(t *testing.T) {
	rec := parse("\x1b7\x1bM")
	if len(rec.escs) != 2 || rec.escs[0] != '7' || rec.escs[1] != 'M' {
		t.Fatalf("unexpected ESC dispatches %v", rec.escs)
	}
}

func TestParse_DCSConsumedSilently(t *testing.T) {
	rec := parse("\x1bPq#0;2;0;0;0~~\x1b\\after")
	if len(rec.printed) != 5 || string(rec.printed) != "after" {
		t.Fatalf("DCS payload leaked: %q", string(rec.printed))
	}
}

// --- integration with terminal state ---

func feed(tm *term.Terminal, s string) {
	vt.NewParser(tm).Parse([]byte(s))
}

func TestScenario_CJKWidth(t *testing.T) {
	tm := term.New(24, 80)
	feed(tm, "\x1b[HA日本\n")

	grid := tm.Grid()
	if c := grid.Cell(0, 0); c.Rune != 'A' || c.IsWide() {
		t.Fatalf("cell 0: expected narrow A, got %q", c.Rune)
	}
	if c := grid.Cell(0, 1); c.Rune != '日' || !c.IsWide() {
		t.Fatalf("cell 1: expected wide 日, got %q", c.Rune)
	}
	if c := grid.Cell(0, 2); !c.IsWideSpacer() {
		t.Fatalf("cell 2: expected continuation")
	}
	if c := grid.Cell(0, 3); c.Rune != '本' || !c.IsWide() {
		t.Fatalf("cell 3: expected wide 本, got %q", c.Rune)
	}
	if c := grid.Cell(0, 4); !c.IsWideSpacer() {
		t.Fatalf("cell 4: expected continuation")
	}
	if cur := tm.Cursor(); cur.Row != 1 || cur.Col != 0 {
		t.Fatalf("expected cursor (1,0), got (%d,%d)", cur.Row, cur.Col)
	}
}

func TestScenario_OSCTerminator(t *testing.T) {
	tm := term.New(24, 80)
	feed(tm, "\x1b]0;title\x1b\\tail")
	if tm.Title() != "title" {
		t.Fatalf("expected window title %q, got %q", "title", tm.Title())
	}
	if got := tm.Grid().LineText(0); got != "tail" {
		t.Fatalf("expected %q in grid with no stray backslash, got %q", "tail", got)
	}
}

func TestScenario_AltScreenToggleTwiceRestores(t *testing.T) {
	tm := term.New(24, 80)
	feed(tm, "hello")
	feed(tm, "\x1b[?1049h\x1b[2Jfull-screen app\x1b[?1049l")
	feed(tm, "\x1b[?1049h\x1b[?1049l")
	if got := tm.Grid().LineText(0); got != "hello" {
		t.Fatalf("expected primary grid restored, got %q", got)
	}
	if cur := tm.Cursor(); cur.Row != 0 || cur.Col != 5 {
		t.Fatalf("expected cursor (0,5), got (%d,%d)", cur.Row, cur.Col)
	}
}

func TestIntegration_ScrollbackEvictionStrictFIFO(t *testing.T) {
	tm := term.New(2, 10, term.WithScrollback(2))
	feed(tm, "one\ntwo\nthree\nfour\n")
	sb := tm.Scrollback()
	if sb.Len() != 2 {
		t.Fatalf("expected scrollback capped at 2, got %d", sb.Len())
	}
	if got := term.RowText(sb.Line(0)); got != "two" {
		t.Fatalf("expected oldest retained row %q, got %q", "two", got)
	}
	if got := term.RowText(sb.Line(1)); got != "three" {
		t.Fatalf("expected newest row %q, got %q", "three", got)
	}
}
