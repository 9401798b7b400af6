// Package copymode implements the per-pane scrollback navigator: a
// read-only cursor over scrollback plus the visible grid, with selection,
// yank, and search. The underlying pane keeps receiving output while copy
// mode is active; the copy cursor is an overlay independent of the child
// cursor.
package copymode

import (
	"fmt"
	"strings"

	"wtmux/internal/input"
	"wtmux/internal/term"
)

// State is the copy-mode FSM state.
type State int

const (
	StateInactive State = iota
	StateNavigate
	StateSelecting
	StateSearchPrompt
	StateSearchResults
)

// Action tells the caller what a keystroke produced.
type Action int

const (
	// ActionNone consumed the key with no external effect.
	ActionNone Action = iota
	// ActionExit leaves copy mode.
	ActionExit
	// ActionYank leaves copy mode with text to place on the clipboard.
	ActionYank
)

// Position addresses a cell in the combined buffer: line 0 is the oldest
// scrollback row, lines past the scrollback length are grid rows.
type Position struct {
	Line int
	Col  int
}

func (p Position) before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Col < o.Col)
}

// Mode is one pane's copy-mode substate.
type Mode struct {
	t      *term.Terminal
	width  int
	height int

	state  State
	cursor Position
	anchor Position

	// scrollTop is the absolute line shown at the top of the viewport.
	scrollTop int

	query      string
	searchBack bool
	input      []rune
	matches    []Position
	matchIdx   int
}

// Enter starts copy mode over the pane's buffers with the given viewport
// size. When searchFirst is set the mode opens directly in the search
// prompt.
func Enter(t *term.Terminal, width, height int, searchFirst bool) *Mode {
	m := &Mode{
		t:      t,
		width:  width,
		height: height,
		state:  StateNavigate,
	}
	m.scrollTop = m.total() - height
	if m.scrollTop < 0 {
		m.scrollTop = 0
	}
	cur := t.Cursor()
	m.cursor = Position{Line: m.gridBase() + cur.Row, Col: cur.Col}
	if searchFirst {
		m.state = StateSearchPrompt
		m.searchBack = false
	}
	return m
}

// Active reports whether copy mode is engaged.
func (m *Mode) Active() bool { return m != nil && m.state != StateInactive }

// CurrentState returns the FSM state.
func (m *Mode) CurrentState() State { return m.state }

// Resize adjusts the viewport after a pane resize.
func (m *Mode) Resize(width, height int) {
	m.width = width
	m.height = height
	m.clampView()
}

// total returns the number of addressable lines.
func (m *Mode) total() int {
	return m.t.Scrollback().Len() + m.t.Rows()
}

// gridBase returns the absolute line index of grid row 0.
func (m *Mode) gridBase() int {
	return m.t.Scrollback().Len()
}

// Line returns the cells of an absolute line, or nil out of range.
func (m *Mode) Line(line int) []term.Cell {
	sb := m.t.Scrollback()
	if line < 0 || line >= m.total() {
		return nil
	}
	if line < sb.Len() {
		return sb.Line(line)
	}
	return m.t.Primary().Row(line - sb.Len())
}

// ViewRow returns the cells of viewport row i.
func (m *Mode) ViewRow(i int) []term.Cell {
	return m.Line(m.scrollTop + i)
}

// CursorView returns the cursor in viewport coordinates.
func (m *Mode) CursorView() (row, col int) {
	return m.cursor.Line - m.scrollTop, m.cursor.Col
}

// CellMarks reports whether the cell at viewport row i, column col is
// inside the selection and whether it is part of a search match.
func (m *Mode) CellMarks(i, col int) (selected, matched bool) {
	pos := Position{Line: m.scrollTop + i, Col: col}
	if m.state == StateSelecting {
		lo, hi := m.anchor, m.cursor
		if hi.before(lo) {
			lo, hi = hi, lo
		}
		if !pos.before(lo) && !hi.before(pos) {
			selected = true
		}
	}
	if len(m.matches) > 0 && m.query != "" {
		qlen := len([]rune(m.query))
		for _, mp := range m.matches {
			if mp.Line == pos.Line && col >= mp.Col && col < mp.Col+qlen {
				matched = true
				break
			}
		}
	}
	return selected, matched
}

// StatusLine returns the indicator drawn at the right end of the pane's
// first row.
func (m *Mode) StatusLine() string {
	switch m.state {
	case StateSearchPrompt:
		prefix := "/"
		if m.searchBack {
			prefix = "?"
		}
		return prefix + string(m.input)
	case StateSearchResults:
		if len(m.matches) == 0 {
			return fmt.Sprintf("[copy] no match: %s", m.query)
		}
		return fmt.Sprintf("[copy] %d/%d %s", m.matchIdx+1, len(m.matches), m.query)
	default:
		above := m.gridBase() - m.scrollTop
		if above < 0 {
			above = 0
		}
		return fmt.Sprintf("[copy] %d", above)
	}
}

// HandleKey consumes one key. The returned text is non-empty only for
// ActionYank.
func (m *Mode) HandleKey(k input.Key) (Action, string) {
	if m.state == StateSearchPrompt {
		return m.handleSearchKey(k), ""
	}

	switch {
	case k.Special == input.KeyEsc || k.Rune == 'q':
		m.state = StateInactive
		return ActionExit, ""
	case k.Special == input.KeyEnter || k.Rune == 'y':
		if m.state == StateSelecting {
			text := m.selectionText()
			m.state = StateInactive
			return ActionYank, text
		}
		m.state = StateInactive
		return ActionExit, ""
	case k.Rune == ' ' || k.Rune == 'v':
		if m.state == StateSelecting {
			m.state = StateNavigate
		} else {
			m.anchor = m.cursor
			m.state = StateSelecting
		}
	case k.Rune == 'h' || k.Special == input.KeyLeft:
		m.moveCol(-1)
	case k.Rune == 'l' || k.Special == input.KeyRight:
		m.moveCol(1)
	case k.Rune == 'k' || k.Special == input.KeyUp:
		m.moveLine(-1)
	case k.Rune == 'j' || k.Special == input.KeyDown:
		m.moveLine(1)
	case k.Rune == '0':
		m.cursor.Col = 0
	case k.Rune == '$':
		m.cursor.Col = m.lineEnd(m.cursor.Line)
	case k.Rune == 'g':
		m.cursor.Line = 0
		m.clampView()
	case k.Rune == 'G':
		m.cursor.Line = m.total() - 1
		m.clampView()
	case k.Ctrl && k.Rune == 'u':
		m.moveLine(-m.height / 2)
	case k.Ctrl && k.Rune == 'd':
		m.moveLine(m.height / 2)
	case (k.Ctrl && k.Rune == 'b') || k.Special == input.KeyPageUp:
		m.moveLine(-m.height)
	case (k.Ctrl && k.Rune == 'f') || k.Special == input.KeyPageDown:
		m.moveLine(m.height)
	case k.Rune == '/':
		m.openSearch(false)
	case k.Rune == '?':
		m.openSearch(true)
	case k.Rune == 'n':
		m.stepMatch(1)
	case k.Rune == 'N':
		m.stepMatch(-1)
	}
	return ActionNone, ""
}

// EnterSelection starts copy mode from a mouse press at viewport
// coordinates, anchoring a selection immediately.
func EnterSelection(t *term.Terminal, width, height, row, col int) *Mode {
	m := Enter(t, width, height, false)
	m.cursor = Position{Line: m.scrollTop + row, Col: col}
	m.anchor = m.cursor
	m.state = StateSelecting
	return m
}

// MouseExtend drags the selection cursor to viewport coordinates.
func (m *Mode) MouseExtend(row, col int) {
	if row < 0 {
		row = 0
	}
	if row >= m.height {
		row = m.height - 1
	}
	m.cursor = Position{Line: m.scrollTop + row, Col: col}
	if end := m.lineEnd(m.cursor.Line); m.cursor.Col > end {
		m.cursor.Col = end
	}
	if m.cursor.Col < 0 {
		m.cursor.Col = 0
	}
}

// MouseFinish ends a mouse selection, returning the selected text and
// leaving copy mode.
func (m *Mode) MouseFinish() string {
	text := ""
	if m.state == StateSelecting {
		text = m.selectionText()
	}
	m.state = StateInactive
	return text
}

// ScrollLines moves the viewport without moving into a different state;
// the cursor is dragged along to stay visible. Used for mouse wheel.
func (m *Mode) ScrollLines(delta int) {
	m.scrollTop += delta
	maxTop := m.total() - m.height
	if maxTop < 0 {
		maxTop = 0
	}
	if m.scrollTop < 0 {
		m.scrollTop = 0
	}
	if m.scrollTop > maxTop {
		m.scrollTop = maxTop
	}
	if m.cursor.Line < m.scrollTop {
		m.cursor.Line = m.scrollTop
	}
	if m.cursor.Line >= m.scrollTop+m.height {
		m.cursor.Line = m.scrollTop + m.height - 1
	}
}

func (m *Mode) moveLine(delta int) {
	m.cursor.Line += delta
	if m.cursor.Line < 0 {
		m.cursor.Line = 0
	}
	if m.cursor.Line > m.total()-1 {
		m.cursor.Line = m.total() - 1
	}
	if end := m.lineEnd(m.cursor.Line); m.cursor.Col > end {
		m.cursor.Col = end
	}
	m.clampView()
}

func (m *Mode) moveCol(delta int) {
	m.cursor.Col += delta
	if m.cursor.Col < 0 {
		m.cursor.Col = 0
	}
	if end := m.lineEnd(m.cursor.Line); m.cursor.Col > end {
		m.cursor.Col = end
	}
}

// lineEnd returns the last addressable column of a line.
func (m *Mode) lineEnd(line int) int {
	row := m.Line(line)
	if len(row) == 0 {
		return 0
	}
	return len(row) - 1
}

// clampView scrolls the viewport the minimum distance needed to keep the
// cursor visible.
func (m *Mode) clampView() {
	if m.cursor.Line < m.scrollTop {
		m.scrollTop = m.cursor.Line
	}
	if m.cursor.Line >= m.scrollTop+m.height {
		m.scrollTop = m.cursor.Line - m.height + 1
	}
	if m.scrollTop < 0 {
		m.scrollTop = 0
	}
}

// selectionText extracts the selected region: rows joined with \n,
// trailing spaces trimmed per line.
func (m *Mode) selectionText() string {
	lo, hi := m.anchor, m.cursor
	if hi.before(lo) {
		lo, hi = hi, lo
	}
	var lines []string
	for line := lo.Line; line <= hi.Line; line++ {
		row := m.Line(line)
		if row == nil {
			continue
		}
		startCol, endCol := 0, len(row)
		if line == lo.Line {
			startCol = lo.Col
		}
		if line == hi.Line && hi.Col+1 < endCol {
			endCol = hi.Col + 1
		}
		if startCol > len(row) {
			startCol = len(row)
		}
		text := term.RowText(row[startCol:endCol])
		lines = append(lines, strings.TrimRight(text, " "))
	}
	return strings.Join(lines, "\n")
}

// --- search ---

func (m *Mode) openSearch(backward bool) {
	m.state = StateSearchPrompt
	m.searchBack = backward
	m.input = m.input[:0]
}

func (m *Mode) handleSearchKey(k input.Key) Action {
	switch {
	case k.Special == input.KeyEsc:
		m.state = StateNavigate
	case k.Special == input.KeyEnter:
		m.query = string(m.input)
		m.runSearch()
		m.state = StateSearchResults
	case k.Special == input.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case k.Rune != 0 && !k.Ctrl:
		m.input = append(m.input, k.Rune)
	}
	return ActionNone
}

// runSearch collects all matches and jumps to the nearest one in the
// search direction. Matching is case-insensitive unless the query contains
// an uppercase letter.
func (m *Mode) runSearch() {
	m.matches = m.matches[:0]
	m.matchIdx = 0
	if m.query == "" {
		return
	}
	fold := !strings.ContainsFunc(m.query, func(r rune) bool { return r >= 'A' && r <= 'Z' })
	needle := m.query
	if fold {
		needle = strings.ToLower(needle)
	}

	for line := 0; line < m.total(); line++ {
		text := lineRunes(m.Line(line))
		hay := string(text)
		if fold {
			hay = strings.ToLower(hay)
		}
		hayRunes := []rune(hay)
		needleRunes := []rune(needle)
		for col := 0; col+len(needleRunes) <= len(hayRunes); col++ {
			if string(hayRunes[col:col+len(needleRunes)]) == string(needleRunes) {
				m.matches = append(m.matches, Position{Line: line, Col: col})
			}
		}
	}
	if len(m.matches) == 0 {
		return
	}

	// Pick the first match past the cursor in the search direction.
	if m.searchBack {
		m.matchIdx = len(m.matches) - 1
		for i := len(m.matches) - 1; i >= 0; i-- {
			if m.matches[i].before(m.cursor) {
				m.matchIdx = i
				break
			}
		}
	} else {
		m.matchIdx = 0
		for i, mp := range m.matches {
			if m.cursor.before(mp) {
				m.matchIdx = i
				break
			}
		}
	}
	m.jumpToMatch()
}

func (m *Mode) stepMatch(dir int) {
	if len(m.matches) == 0 {
		return
	}
	if m.searchBack {
		dir = -dir
	}
	m.matchIdx = (m.matchIdx + dir + len(m.matches)) % len(m.matches)
	m.jumpToMatch()
}

func (m *Mode) jumpToMatch() {
	mp := m.matches[m.matchIdx]
	m.cursor = mp
	m.clampView()
}

// lineRunes flattens a row to one rune per column so match columns align
// with cell columns. Spacer cells become spaces to keep the mapping.
func lineRunes(row []term.Cell) []rune {
	out := make([]rune, len(row))
	for i := range row {
		switch {
		case row[i].IsWideSpacer(), row[i].Rune == 0:
			out[i] = ' '
		default:
			out[i] = row[i].Rune
		}
	}
	return out
}
