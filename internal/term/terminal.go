package term

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// ClipboardWriter receives OSC 52 clipboard writes from the child.
type ClipboardWriter interface {
	WriteClipboard(text string)
}

// PromptMark records an OSC 133 shell-integration marker. Markers are
// recorded without altering the display.
type PromptMark struct {
	Kind byte // 'A' prompt start, 'B' prompt end, 'C' command start, 'D' command end
	Row  int
}

// Terminal is the screen state machine for one pane: grid, cursor,
// attributes, scrollback, and mode flags. It implements the parser's
// dispatch interface; the parser performs no side effects of its own.
//
// A Terminal is not safe for concurrent use. The event loop both mutates it
// (while parsing) and reads it (while rendering) from the same goroutine.
type Terminal struct {
	rows int
	cols int

	primary *Buffer
	alt     *Buffer
	active  *Buffer

	cursor    Cursor
	wrapNext  bool
	savedMain savedCursor
	savedAlt  savedCursor

	// pen carries the attributes applied to newly printed cells (SGR state).
	pen       Cell
	hyperlink *Hyperlink

	modes Mode

	scrollTop    int // inclusive
	scrollBottom int // exclusive

	title      string
	titleDirty bool

	marks []PromptMark

	// lastBase remembers the most recent printed base cell so combining
	// marks can attach to it.
	lastBaseRow int
	lastBaseCol int
	lastBaseOK  bool

	// responses receives reports sent back to the child (DSR, OSC 10/11).
	responses io.Writer
	clipboard ClipboardWriter

	// oscFg and oscBg are cached X11 color strings answered to OSC 10/11
	// queries, detected from the host terminal at startup.
	oscFg string
	oscBg string
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithScrollback caps the primary grid's scrollback at max lines.
func WithScrollback(max int) Option {
	return func(t *Terminal) {
		t.primary = NewBufferWithScrollback(t.rows, t.cols, NewScrollback(max))
	}
}

// WithResponses sets the writer for reports back to the child, typically
// the PTY master.
func WithResponses(w io.Writer) Option {
	return func(t *Terminal) { t.responses = w }
}

// WithClipboard sets the OSC 52 clipboard collaborator.
func WithClipboard(c ClipboardWriter) Option {
	return func(t *Terminal) { t.clipboard = c }
}

// WithHostColors caches the host terminal's foreground and background in
// X11 rgb: form for answering OSC 10/11 queries from the child.
func WithHostColors(fg, bg string) Option {
	return func(t *Terminal) {
		t.oscFg = fg
		t.oscBg = bg
	}
}

// New creates a terminal of the given size. Autowrap and cursor visibility
// default on, matching a fresh VT.
func New(rows, cols int, opts ...Option) *Terminal {
	t := &Terminal{
		rows:         rows,
		cols:         cols,
		pen:          NewCell(),
		modes:        ModeAutowrap | ModeShowCursor,
		scrollTop:    0,
		scrollBottom: rows,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.primary == nil {
		t.primary = NewBufferWithScrollback(rows, cols, NewScrollback(DefaultScrollbackLines))
	}
	t.alt = NewBuffer(rows, cols)
	t.active = t.primary
	return t
}

// SetResponses sets the report writer after construction, once the PTY
// exists.
func (t *Terminal) SetResponses(w io.Writer) { t.responses = w }

// Rows returns the grid height.
func (t *Terminal) Rows() int { return t.rows }

// Cols returns the grid width.
func (t *Terminal) Cols() int { return t.cols }

// Grid returns the active buffer (primary or alternate).
func (t *Terminal) Grid() *Buffer { return t.active }

// Primary returns the primary buffer regardless of which is active.
func (t *Terminal) Primary() *Buffer { return t.primary }

// Scrollback returns the primary grid's scrollback.
func (t *Terminal) Scrollback() *Scrollback { return t.primary.Scrollback() }

// Cursor returns the current cursor.
func (t *Terminal) Cursor() Cursor { return t.cursor }

// CursorVisible reports DECTCEM.
func (t *Terminal) CursorVisible() bool { return t.modes.Has(ModeShowCursor) }

// Modes returns the current mode set.
func (t *Terminal) Modes() Mode { return t.modes }

// Title returns the OSC 0/2 window title.
func (t *Terminal) Title() string { return t.title }

// TakeTitleDirty reports and clears whether the title changed since the
// last call.
func (t *Terminal) TakeTitleDirty() bool {
	d := t.titleDirty
	t.titleDirty = false
	return d
}

// Marks returns the recorded OSC 133 markers.
func (t *Terminal) Marks() []PromptMark { return t.marks }

// IsAltScreen reports whether the alternate grid is active.
func (t *Terminal) IsAltScreen() bool { return t.active == t.alt }

// Resize changes the grid dimensions, clamping the cursor and resetting the
// scroll region to full height.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.rows = rows
	t.cols = cols
	t.primary.Resize(rows, cols)
	t.alt.Resize(rows, cols)
	t.scrollTop = 0
	t.scrollBottom = rows
	t.cursor.Row = clamp(t.cursor.Row, 0, rows-1)
	t.cursor.Col = clamp(t.cursor.Col, 0, cols-1)
	t.wrapNext = false
	t.lastBaseOK = false
}

// --- dispatch interface: Print ---

// Print writes one character at the cursor, honoring autowrap, insert mode,
// and wide-character continuation cells. Zero-width characters attach to
// the previously printed base cell without advancing the cursor.
func (t *Terminal) Print(r rune, width int) {
	if width == 0 {
		t.attachCombining(r)
		return
	}

	if t.wrapNext {
		if t.modes.Has(ModeAutowrap) {
			t.wrapCursor()
		} else {
			t.wrapNext = false
		}
	}

	// A wide character that cannot fit in the remaining columns wraps
	// before printing (autowrap on) or overwrites the final cell in place
	// (autowrap off) so the glyph is never split.
	if width == 2 && t.cursor.Col == t.cols-1 {
		if t.modes.Has(ModeAutowrap) {
			// Clear the abandoned last cell so no half glyph remains.
			t.active.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, t.pen.Bg)
			t.wrapCursor()
		} else {
			t.writeGlyph(r, 1)
			return
		}
	}

	if t.modes.Has(ModeInsert) {
		t.active.InsertBlanks(t.cursor.Row, t.cursor.Col, width, t.pen.Bg)
	}

	t.writeGlyph(r, width)

	if t.cursor.Col+width >= t.cols {
		t.cursor.Col = t.cols - 1
		t.wrapNext = true
	} else {
		t.cursor.Col += width
	}
}

// writeGlyph stores the glyph and, for wide characters, its continuation
// spacer, replacing any wide pair the write overlaps.
func (t *Terminal) writeGlyph(r rune, width int) {
	row, col := t.cursor.Row, t.cursor.Col
	t.clearWideAt(row, col)
	if width == 2 {
		t.clearWideAt(row, col+1)
	}

	cell := t.active.Cell(row, col)
	if cell == nil {
		return
	}
	cell.Rune = r
	cell.Combining = nil
	cell.Fg = t.pen.Fg
	cell.Bg = t.pen.Bg
	cell.Flags = t.pen.Flags
	cell.Hyperlink = t.hyperlink
	if width == 2 {
		cell.SetFlag(FlagWide)
	}
	t.active.MarkDirty(row, col)

	if width == 2 {
		if sp := t.active.Cell(row, col+1); sp != nil {
			sp.Reset()
			sp.Rune = 0
			sp.Fg = t.pen.Fg
			sp.Bg = t.pen.Bg
			sp.SetFlag(FlagWideSpacer)
			t.active.MarkDirty(row, col+1)
		}
	}

	t.lastBaseRow, t.lastBaseCol, t.lastBaseOK = row, col, true
}

// clearWideAt repairs a wide pair when one of its halves is about to be
// overwritten, so spacers appear iff their predecessor is wide.
func (t *Terminal) clearWideAt(row, col int) {
	cell := t.active.Cell(row, col)
	if cell == nil {
		return
	}
	if cell.IsWide() {
		if sp := t.active.Cell(row, col+1); sp != nil && sp.IsWideSpacer() {
			sp.Reset()
			t.active.MarkDirty(row, col+1)
		}
	} else if cell.IsWideSpacer() {
		if base := t.active.Cell(row, col-1); base != nil && base.IsWide() {
			base.Reset()
			t.active.MarkDirty(row, col-1)
		}
	}
}

func (t *Terminal) attachCombining(r rune) {
	if !t.lastBaseOK {
		return
	}
	cell := t.active.Cell(t.lastBaseRow, t.lastBaseCol)
	if cell == nil {
		return
	}
	cell.Combining = append(cell.Combining, r)
	t.active.MarkDirty(t.lastBaseRow, t.lastBaseCol)
}

func (t *Terminal) wrapCursor() {
	t.wrapNext = false
	t.cursor.Col = 0
	t.lineFeed()
}

// --- dispatch interface: Execute (C0 controls) ---

// Execute handles a C0 control byte.
func (t *Terminal) Execute(b byte) {
	switch b {
	case 0x07: // BEL
	case 0x08: // BS
		if t.cursor.Col > 0 {
			t.cursor.Col--
		}
		t.wrapNext = false
	case 0x09: // HT
		t.cursor.Col = t.active.NextTabStop(t.cursor.Col)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		// Line feed implies carriage return here.
		t.cursor.Col = 0
		t.wrapNext = false
		t.lineFeed()
	case 0x0D: // CR
		t.cursor.Col = 0
		t.wrapNext = false
		// The row is marked dirty even when the cursor was already at
		// column 0, so cursor-only repaints are not skipped.
		t.active.MarkRowDirty(t.cursor.Row)
	}
}

func (t *Terminal) lineFeed() {
	if t.cursor.Row == t.scrollBottom-1 {
		t.active.ScrollUp(t.scrollTop, t.scrollBottom, 1, t.pen.Bg)
	} else if t.cursor.Row < t.rows-1 {
		t.cursor.Row++
	}
	t.lastBaseOK = false
}

func (t *Terminal) reverseLineFeed() {
	if t.cursor.Row == t.scrollTop {
		t.active.ScrollDown(t.scrollTop, t.scrollBottom, 1, t.pen.Bg)
	} else if t.cursor.Row > 0 {
		t.cursor.Row--
	}
}

// --- dispatch interface: CSI ---

// CSI handles a control sequence. Each params entry is a parameter group;
// elements past the first are colon-separated subparameters.
func (t *Terminal) CSI(params [][]int, intermediates []byte, private bool, final byte) {
	if private {
		switch final {
		case 'h':
			t.setPrivateModes(params, true)
		case 'l':
			t.setPrivateModes(params, false)
		}
		return
	}

	if len(intermediates) == 1 && intermediates[0] == ' ' && final == 'q' {
		if shape, ok := cursorShapeFromDECSCUSR(param(params, 0, 0)); ok {
			t.cursor.Shape = shape
		}
		return
	}
	if len(intermediates) != 0 {
		return
	}

	switch final {
	case 'A': // CUU
		t.moveCursorRow(-max(1, param(params, 0, 1)))
	case 'B', 'e': // CUD, VPR
		t.moveCursorRow(max(1, param(params, 0, 1)))
	case 'C', 'a': // CUF, HPR
		t.moveCursorCol(max(1, param(params, 0, 1)))
	case 'D': // CUB
		t.moveCursorCol(-max(1, param(params, 0, 1)))
	case 'E': // CNL
		t.moveCursorRow(max(1, param(params, 0, 1)))
		t.cursor.Col = 0
	case 'F': // CPL
		t.moveCursorRow(-max(1, param(params, 0, 1)))
		t.cursor.Col = 0
	case 'G', '`': // CHA, HPA
		t.cursor.Col = clamp(param(params, 0, 1)-1, 0, t.cols-1)
		t.wrapNext = false
	case 'H', 'f': // CUP, HVP
		t.gotoRowCol(param(params, 0, 1)-1, param(params, 1, 1)-1)
	case 'I': // CHT
		for i := 0; i < max(1, param(params, 0, 1)); i++ {
			t.cursor.Col = t.active.NextTabStop(t.cursor.Col)
		}
	case 'J':
		t.eraseDisplay(param(params, 0, 0))
	case 'K':
		t.eraseLine(param(params, 0, 0))
	case 'L': // IL
		if t.inScrollRegion() {
			t.active.InsertLines(t.cursor.Row, max(1, param(params, 0, 1)), t.scrollBottom, t.pen.Bg)
		}
	case 'M': // DL
		if t.inScrollRegion() {
			t.active.DeleteLines(t.cursor.Row, max(1, param(params, 0, 1)), t.scrollBottom, t.pen.Bg)
		}
	case 'P': // DCH
		t.active.DeleteChars(t.cursor.Row, t.cursor.Col, max(1, param(params, 0, 1)), t.pen.Bg)
	case 'S': // SU
		t.active.ScrollUp(t.scrollTop, t.scrollBottom, max(1, param(params, 0, 1)), t.pen.Bg)
	case 'T': // SD
		t.active.ScrollDown(t.scrollTop, t.scrollBottom, max(1, param(params, 0, 1)), t.pen.Bg)
	case 'X': // ECH
		n := max(1, param(params, 0, 1))
		t.active.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cursor.Col+n, t.pen.Bg)
	case 'Z': // CBT
		for i := 0; i < max(1, param(params, 0, 1)); i++ {
			t.cursor.Col = t.active.PrevTabStop(t.cursor.Col)
		}
	case '@': // ICH
		t.active.InsertBlanks(t.cursor.Row, t.cursor.Col, max(1, param(params, 0, 1)), t.pen.Bg)
	case 'd': // VPA
		t.gotoRowCol(param(params, 0, 1)-1, t.cursor.Col)
	case 'g': // TBC
		switch param(params, 0, 0) {
		case 0:
			t.active.ClearTabStop(t.cursor.Col)
		case 3:
			t.active.ClearAllTabStops()
		}
	case 'h':
		if param(params, 0, 0) == 4 {
			t.modes |= ModeInsert
		}
	case 'l':
		if param(params, 0, 0) == 4 {
			t.modes &^= ModeInsert
		}
	case 'm':
		t.sgr(params)
	case 'n':
		t.deviceStatus(param(params, 0, 0))
	case 'r': // DECSTBM
		t.setScrollRegion(param(params, 0, 1), param(params, 1, t.rows))
	case 's': // SCOSC
		t.saveCursor()
	case 'u': // SCORC
		t.restoreCursor()
	}
}

// moveCursorRow moves the cursor vertically, clamped within the scroll
// region when the cursor starts inside it. Movement never scrolls.
func (t *Terminal) moveCursorRow(delta int) {
	top, bottom := 0, t.rows-1
	if t.cursor.Row >= t.scrollTop && t.cursor.Row < t.scrollBottom {
		top, bottom = t.scrollTop, t.scrollBottom-1
	}
	t.cursor.Row = clamp(t.cursor.Row+delta, top, bottom)
	t.wrapNext = false
}

func (t *Terminal) moveCursorCol(delta int) {
	t.cursor.Col = clamp(t.cursor.Col+delta, 0, t.cols-1)
	t.wrapNext = false
}

// gotoRowCol addresses the cursor with 0-based coordinates, confined to the
// scroll region under origin mode.
func (t *Terminal) gotoRowCol(row, col int) {
	if t.modes.Has(ModeOrigin) {
		row += t.scrollTop
		row = clamp(row, t.scrollTop, t.scrollBottom-1)
	} else {
		row = clamp(row, 0, t.rows-1)
	}
	t.cursor.Row = row
	t.cursor.Col = clamp(col, 0, t.cols-1)
	t.wrapNext = false
}

func (t *Terminal) inScrollRegion() bool {
	return t.cursor.Row >= t.scrollTop && t.cursor.Row < t.scrollBottom
}

func (t *Terminal) eraseDisplay(mode int) {
	switch mode {
	case 0: // cursor to end
		t.active.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, t.pen.Bg)
		for row := t.cursor.Row + 1; row < t.rows; row++ {
			t.active.ClearRow(row, t.pen.Bg)
		}
	case 1: // start to cursor
		for row := 0; row < t.cursor.Row; row++ {
			t.active.ClearRow(row, t.pen.Bg)
		}
		t.active.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1, t.pen.Bg)
	case 2:
		t.active.ClearAll(t.pen.Bg)
	case 3:
		t.active.ClearAll(t.pen.Bg)
		if sb := t.active.Scrollback(); sb != nil {
			sb.Clear()
		}
	}
}

func (t *Terminal) eraseLine(mode int) {
	switch mode {
	case 0:
		t.active.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols, t.pen.Bg)
	case 1:
		t.active.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1, t.pen.Bg)
	case 2:
		t.active.ClearRow(t.cursor.Row, t.pen.Bg)
	}
}

// setScrollRegion applies DECSTBM with 1-based inclusive parameters.
// Invalid ranges are silently clamped; a region needs at least two rows.
func (t *Terminal) setScrollRegion(top, bottom int) {
	top = clamp(top, 1, t.rows)
	bottom = clamp(bottom, 1, t.rows)
	if top >= bottom {
		top, bottom = 1, t.rows
	}
	t.scrollTop = top - 1
	t.scrollBottom = bottom
	t.gotoRowCol(0, 0)
}

func (t *Terminal) deviceStatus(n int) {
	switch n {
	case 5:
		t.respond("\x1b[0n")
	case 6:
		t.respond(fmt.Sprintf("\x1b[%d;%dR", t.cursor.Row+1, t.cursor.Col+1))
	}
}

func (t *Terminal) respond(s string) {
	if t.responses != nil {
		io.WriteString(t.responses, s)
	}
}

// --- private modes (DECSET/DECRST) ---

func (t *Terminal) setPrivateModes(params [][]int, set bool) {
	for i := range params {
		t.setPrivateMode(param(params, i, 0), set)
	}
}

func (t *Terminal) setPrivateMode(mode int, set bool) {
	flip := func(m Mode) {
		if set {
			t.modes |= m
		} else {
			t.modes &^= m
		}
	}
	switch mode {
	case 1:
		flip(ModeAppCursor)
	case 6:
		flip(ModeOrigin)
		t.gotoRowCol(0, 0)
	case 7:
		flip(ModeAutowrap)
	case 25:
		flip(ModeShowCursor)
	case 47:
		// Legacy alternate screen: switch only, no save or clear.
		if set {
			t.enterAlt(false)
		} else {
			t.leaveAlt(false)
		}
	case 1000:
		flip(ModeMouseClick)
	case 1002:
		flip(ModeMouseDrag)
	case 1003:
		flip(ModeMouseMotion)
	case 1006:
		flip(ModeMouseSGR)
	case 1015:
		flip(ModeMouseURXVT)
	case 1047:
		if set {
			t.enterAlt(true)
		} else {
			t.leaveAlt(false)
		}
	case 1048:
		if set {
			t.saveCursor()
		} else {
			t.restoreCursor()
		}
	case 1049:
		if set {
			t.saveCursor()
			t.enterAlt(true)
		} else {
			t.leaveAlt(true)
		}
	case 2004:
		flip(ModeBracketedPaste)
	case 2026:
		flip(ModeSyncUpdate)
	}
}

func (t *Terminal) savedFor() *savedCursor {
	if t.IsAltScreen() {
		return &t.savedAlt
	}
	return &t.savedMain
}

func (t *Terminal) saveCursor() {
	*t.savedFor() = savedCursor{
		row:    t.cursor.Row,
		col:    t.cursor.Col,
		pen:    t.pen,
		origin: t.modes.Has(ModeOrigin),
		valid:  true,
	}
}

func (t *Terminal) restoreCursor() {
	s := t.savedFor()
	if !s.valid {
		t.gotoRowCol(0, 0)
		return
	}
	t.cursor.Row = clamp(s.row, 0, t.rows-1)
	t.cursor.Col = clamp(s.col, 0, t.cols-1)
	t.pen = s.pen
	if s.origin {
		t.modes |= ModeOrigin
	} else {
		t.modes &^= ModeOrigin
	}
	t.wrapNext = false
}

// enterAlt switches to the alternate grid; clear wipes it on entry. Saving
// the cursor first (1049) is the caller's job.
func (t *Terminal) enterAlt(clear bool) {
	if t.IsAltScreen() {
		return
	}
	t.active = t.alt
	t.modes |= ModeAltScreen
	if clear {
		t.alt.ClearAll(DefaultColor())
	}
	t.gotoRowCol(0, 0)
	t.active.MarkAllDirty()
	t.lastBaseOK = false
}

func (t *Terminal) leaveAlt(restore bool) {
	if !t.IsAltScreen() {
		return
	}
	t.active = t.primary
	t.modes &^= ModeAltScreen
	if restore {
		// Restore from the primary-screen save slot.
		s := &t.savedMain
		if s.valid {
			t.cursor.Row = clamp(s.row, 0, t.rows-1)
			t.cursor.Col = clamp(s.col, 0, t.cols-1)
			t.pen = s.pen
		}
	}
	t.active.MarkAllDirty()
	t.lastBaseOK = false
}

// --- SGR ---

func (t *Terminal) sgr(params [][]int) {
	if len(params) == 0 {
		t.pen = NewCell()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		if len(p) == 0 {
			continue
		}
		switch p[0] {
		case 0:
			t.pen = NewCell()
		case 1:
			t.pen.SetFlag(FlagBold)
		case 2:
			t.pen.SetFlag(FlagFaint)
		case 3:
			t.pen.SetFlag(FlagItalic)
		case 4:
			t.pen.SetFlag(FlagUnderline)
		case 5, 6:
			t.pen.SetFlag(FlagBlink)
		case 7:
			t.pen.SetFlag(FlagReverse)
		case 8:
			t.pen.SetFlag(FlagHidden)
		case 9:
			t.pen.SetFlag(FlagStrike)
		case 21, 22:
			t.pen.ClearFlag(FlagBold | FlagFaint)
		case 23:
			t.pen.ClearFlag(FlagItalic)
		case 24:
			t.pen.ClearFlag(FlagUnderline)
		case 25:
			t.pen.ClearFlag(FlagBlink)
		case 27:
			t.pen.ClearFlag(FlagReverse)
		case 28:
			t.pen.ClearFlag(FlagHidden)
		case 29:
			t.pen.ClearFlag(FlagStrike)
		case 30, 31, 32, 33, 34, 35, 36, 37:
			t.pen.Fg = Indexed(uint8(p[0] - 30))
		case 38:
			color, skip := extendedColor(params, i)
			if color != nil {
				t.pen.Fg = *color
			}
			i += skip
		case 39:
			t.pen.Fg = DefaultColor()
		case 40, 41, 42, 43, 44, 45, 46, 47:
			t.pen.Bg = Indexed(uint8(p[0] - 40))
		case 48:
			color, skip := extendedColor(params, i)
			if color != nil {
				t.pen.Bg = *color
			}
			i += skip
		case 49:
			t.pen.Bg = DefaultColor()
		case 90, 91, 92, 93, 94, 95, 96, 97:
			t.pen.Fg = Indexed(uint8(p[0] - 90 + 8))
		case 100, 101, 102, 103, 104, 105, 106, 107:
			t.pen.Bg = Indexed(uint8(p[0] - 100 + 8))
		}
	}
}

// extendedColor decodes SGR 38/48 in both the semicolon form
// (38;5;N / 38;2;R;G;B, spread across parameter groups) and the colon
// subparameter form (38:5:N / 38:2:R:G:B, one group). It returns the color
// and how many extra parameter groups were consumed.
func extendedColor(params [][]int, i int) (*Color, int) {
	p := params[i]
	if len(p) > 1 {
		// Colon form: everything is in this group.
		switch p[1] {
		case 5:
			if len(p) >= 3 {
				c := Indexed(uint8(clamp(p[2], 0, 255)))
				return &c, 0
			}
		case 2:
			// Both 38:2:R:G:B and the ODA form 38:2:CS:R:G:B are accepted.
			rgb := p[2:]
			if len(rgb) >= 4 {
				rgb = rgb[len(rgb)-3:]
			}
			if len(rgb) >= 3 {
				c := RGB(uint8(clamp(rgb[0], 0, 255)), uint8(clamp(rgb[1], 0, 255)), uint8(clamp(rgb[2], 0, 255)))
				return &c, 0
			}
		}
		return nil, 0
	}

	// Semicolon form: mode and components are subsequent groups.
	if i+1 >= len(params) {
		return nil, 0
	}
	switch params[i+1][0] {
	case 5:
		if i+2 < len(params) {
			c := Indexed(uint8(clamp(params[i+2][0], 0, 255)))
			return &c, 2
		}
		return nil, 1
	case 2:
		if i+4 < len(params) {
			c := RGB(
				uint8(clamp(params[i+2][0], 0, 255)),
				uint8(clamp(params[i+3][0], 0, 255)),
				uint8(clamp(params[i+4][0], 0, 255)),
			)
			return &c, 4
		}
		return nil, 1
	}
	return nil, 1
}

// --- dispatch interface: ESC ---

// ESC handles a non-CSI escape sequence.
func (t *Terminal) ESC(intermediates []byte, final byte) {
	if len(intermediates) == 1 && intermediates[0] == '#' && final == '8' {
		t.active.FillWithE() // DECALN
		return
	}
	if len(intermediates) != 0 {
		// Charset designations and other intermediate forms are accepted
		// and ignored.
		return
	}
	switch final {
	case '7': // DECSC
		t.saveCursor()
	case '8': // DECRC
		t.restoreCursor()
	case 'D': // IND
		t.lineFeed()
	case 'E': // NEL
		t.cursor.Col = 0
		t.lineFeed()
	case 'H': // HTS
		t.active.SetTabStop(t.cursor.Col)
	case 'M': // RI
		t.reverseLineFeed()
	case 'c': // RIS
		t.reset()
	}
}

func (t *Terminal) reset() {
	t.primary.ClearAll(DefaultColor())
	t.alt.ClearAll(DefaultColor())
	t.active = t.primary
	t.cursor = Cursor{}
	t.pen = NewCell()
	t.modes = ModeAutowrap | ModeShowCursor
	t.scrollTop = 0
	t.scrollBottom = t.rows
	t.savedMain = savedCursor{}
	t.savedAlt = savedCursor{}
	t.hyperlink = nil
	t.wrapNext = false
	t.lastBaseOK = false
}

// --- dispatch interface: OSC ---

// OSC handles an operating system command. command is the leading numeric
// selector (-1 if absent or non-numeric); payload is everything after it.
func (t *Terminal) OSC(command int, payload []byte) {
	switch command {
	case 0, 1, 2:
		t.title = string(payload)
		t.titleDirty = true
	case 8:
		t.setHyperlink(payload)
	case 10:
		if string(payload) == "?" && t.oscFg != "" {
			t.respond("\x1b]10;" + t.oscFg + "\x1b\\")
		}
	case 11:
		if string(payload) == "?" && t.oscBg != "" {
			t.respond("\x1b]11;" + t.oscBg + "\x1b\\")
		}
	case 52:
		t.clipboardStore(payload)
	case 133:
		if len(payload) > 0 {
			t.marks = append(t.marks, PromptMark{Kind: payload[0], Row: t.cursor.Row})
		}
	}
}

// setHyperlink handles OSC 8 ; params ; uri. An empty URI ends the link.
func (t *Terminal) setHyperlink(payload []byte) {
	parts := strings.SplitN(string(payload), ";", 2)
	if len(parts) != 2 || parts[1] == "" {
		t.hyperlink = nil
		return
	}
	link := &Hyperlink{URI: parts[1]}
	for _, kv := range strings.Split(parts[0], ":") {
		if id, ok := strings.CutPrefix(kv, "id="); ok {
			link.ID = id
		}
	}
	t.hyperlink = link
}

// clipboardStore handles OSC 52 ; c ; base64-data. Queries ("?") are not
// answered: reading the clipboard on a child's behalf is refused.
func (t *Terminal) clipboardStore(payload []byte) {
	if t.clipboard == nil {
		return
	}
	parts := strings.SplitN(string(payload), ";", 2)
	if len(parts) != 2 || parts[1] == "?" {
		return
	}
	data, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return
	}
	t.clipboard.WriteClipboard(string(data))
}

// --- helpers ---

// param returns parameter group i's value, or def when the group is absent
// or zero. Zero and absent both select the default for every sequence wtmux
// handles.
func param(params [][]int, i, def int) int {
	if i >= len(params) || len(params[i]) == 0 || params[i][0] == 0 {
		return def
	}
	return params[i][0]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
