// Package render composes the tab bar, panes, and status bar into buffered,
// synchronized frames on the host terminal. One locked writer owns the host
// output; a frame's begin and end always travel in the same flushed buffer.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"wtmux/internal/copymode"
	"wtmux/internal/layout"
	"wtmux/internal/term"
	"wtmux/internal/textwidth"
	"wtmux/internal/theme"
)

// PaneFrame is everything the renderer needs to draw one pane. The grids it
// references are snapshots in time: the caller guarantees no mutation while
// the frame closure runs.
type PaneFrame struct {
	ID      int
	Rect    layout.Rect
	Title   string
	Focused bool
	Dead    bool
	Term    *term.Terminal
	Copy    *copymode.Mode
}

// TabLabel is one tab-bar entry.
type TabLabel struct {
	Name   string
	Active bool
}

// TabHit records the clickable screen-column range of one tab label.
type TabHit struct {
	Start int // inclusive
	End   int // exclusive
	Index int
}

// Scene is a complete description of one frame.
type Scene struct {
	Width  int
	Height int
	Theme  theme.Theme
	Border BorderStyle

	TabBar bool
	Tabs   []TabLabel

	Status      bool
	StatusLeft  string
	StatusRight string

	Panes []PaneFrame
	// Zoom is the zoomed pane id, or -1. Zoom is a rendering override
	// only: the zoomed pane is drawn over the whole pane area at its
	// existing grid size, and no other pane is touched.
	Zoom int

	// Menu, when non-nil, is a context-menu overlay drawn over the panes.
	Menu *MenuOverlay
}

// MenuOverlay describes the right-click context menu.
type MenuOverlay struct {
	X, Y     int
	Items    []string
	Selected int
}

// Hit returns the item index at screen position (x, y), or -1.
func (m *MenuOverlay) Hit(x, y int) int {
	w := m.width()
	if x < m.X || x >= m.X+w {
		return -1
	}
	idx := y - m.Y
	if idx < 0 || idx >= len(m.Items) {
		return -1
	}
	return idx
}

func (m *MenuOverlay) width() int {
	w := 0
	for _, item := range m.Items {
		if n := len(item) + 2; n > w {
			w = n
		}
	}
	return w
}

// paneTop returns the first row of the pane area.
func (s *Scene) paneTop() int {
	if s.TabBar {
		return 1
	}
	return 0
}

// paneBottom returns one past the last row of the pane area.
func (s *Scene) paneBottom() int {
	if s.Status {
		return s.Height - 1
	}
	return s.Height
}

// Renderer owns the host output writer.
type Renderer struct {
	mu  sync.Mutex
	out io.Writer
	buf bytes.Buffer

	tabHits []TabHit

	// showCursor and cursorSeq describe the host cursor state the frame
	// teardown restores.
	showCursor bool
	cursorSeq  string
}

// New creates a renderer writing to out.
func New(out io.Writer) *Renderer {
	return &Renderer{out: out}
}

// TabHits returns the clickable ranges recorded by the last frame that
// drew the tab bar.
func (r *Renderer) TabHits() []TabHit {
	r.mu.Lock()
	defer r.mu.Unlock()
	hits := make([]TabHit, len(r.tabHits))
	copy(hits, r.tabHits)
	return hits
}

// WithFrame runs fn with the frame buffer. The frame begins a synchronized
// update, hides the cursor, and disables host autowrap; on every exit path
// — success, error, or panic inside fn — the teardown restores cursor
// visibility and autowrap, ends the synchronized update in the same
// buffer, and flushes once.
func (r *Renderer) WithFrame(fn func(buf *bytes.Buffer) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buf.Reset()
	r.buf.WriteString("\x1b[?2026h\x1b[?25l\x1b[?7l")
	r.showCursor = false
	r.cursorSeq = ""

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render panic: %v", p)
		}
		if r.cursorSeq != "" {
			r.buf.WriteString(r.cursorSeq)
		}
		r.buf.WriteString("\x1b[?7h")
		if r.showCursor {
			r.buf.WriteString("\x1b[?25h")
		}
		r.buf.WriteString("\x1b[?2026l")
		if _, werr := r.out.Write(r.buf.Bytes()); werr != nil && err == nil {
			err = werr
		}
	}()

	return fn(&r.buf)
}

// RenderFull draws the entire scene: tab bar, every visible pane with
// borders and titles, and the status bar.
func (r *Renderer) RenderFull(s *Scene) error {
	return r.WithFrame(func(buf *bytes.Buffer) error {
		buf.WriteString("\x1b[0m\x1b[2J")
		if s.TabBar {
			r.drawTabBar(buf, s)
		}
		r.drawBorders(buf, s)
		for i := range s.Panes {
			pf := &s.Panes[i]
			if s.Zoom >= 0 && pf.ID != s.Zoom {
				continue
			}
			r.drawPane(buf, s, pf, false)
		}
		if s.Status {
			r.drawStatusBar(buf, s)
		}
		r.drawMenu(buf, s)
		r.setFinalCursor(s)
		return nil
	})
}

// RenderPartial redraws only dirty rows of each visible pane plus the
// status bar. Panes in copy mode are repainted whole; the context menu is
// drawn on top.
func (r *Renderer) RenderPartial(s *Scene) error {
	return r.WithFrame(func(buf *bytes.Buffer) error {
		for i := range s.Panes {
			pf := &s.Panes[i]
			if s.Zoom >= 0 && pf.ID != s.Zoom {
				continue
			}
			r.drawPane(buf, s, pf, true)
		}
		if s.Status {
			r.drawStatusBar(buf, s)
		}
		r.drawMenu(buf, s)
		r.setFinalCursor(s)
		return nil
	})
}

// drawMenu paints the context-menu overlay on top of the pane content.
func (r *Renderer) drawMenu(buf *bytes.Buffer, s *Scene) {
	m := s.Menu
	if m == nil || len(m.Items) == 0 {
		return
	}
	w := m.width()
	br, bg_, bb := theme.RGB(s.Theme.TabBarBg)
	fr, fg_, fb := theme.RGB(s.Theme.Foreground)
	ar, ag, ab := theme.RGB(s.Theme.TabActiveBg)
	for i, item := range m.Items {
		fmt.Fprintf(buf, "\x1b[%d;%dH\x1b[0m", m.Y+i+1, m.X+1)
		if i == m.Selected {
			buf.WriteString(bgRGB(ar, ag, ab))
		} else {
			buf.WriteString(bgRGB(br, bg_, bb))
		}
		buf.WriteString(fgRGB(fr, fg_, fb))
		label := " " + item + strings.Repeat(" ", max(0, w-len(item)-1))
		buf.WriteString(label)
	}
	buf.WriteString("\x1b[0m")
}

// setFinalCursor records the host cursor restore state: positioned on the
// focused pane's child cursor when that pane is live, outside copy mode,
// and the child wants the cursor shown.
func (r *Renderer) setFinalCursor(s *Scene) {
	for i := range s.Panes {
		pf := &s.Panes[i]
		if !pf.Focused {
			continue
		}
		if pf.Dead || pf.Copy.Active() || !pf.Term.CursorVisible() {
			return
		}
		if s.Zoom >= 0 && pf.ID != s.Zoom {
			return
		}
		cur := pf.Term.Cursor()
		row := pf.Rect.Y + cur.Row
		col := pf.Rect.X + cur.Col
		if s.Zoom >= 0 {
			row = s.paneTop() + cur.Row
			col = cur.Col
		}
		r.cursorSeq = fmt.Sprintf("\x1b[%d;%dH%s", row+1, col+1, cursorShapeSeq(cur.Shape))
		r.showCursor = true
		return
	}
}

func cursorShapeSeq(shape term.CursorShape) string {
	return fmt.Sprintf("\x1b[%d q", int(shape)+1)
}

// --- tab bar ---

func (r *Renderer) drawTabBar(buf *bytes.Buffer, s *Scene) {
	tr, tg, tb := theme.RGB(s.Theme.TabBarBg)
	buf.WriteString("\x1b[1;1H\x1b[0m")
	buf.WriteString(bgRGB(tr, tg, tb))
	buf.WriteString("\x1b[2K")

	r.tabHits = r.tabHits[:0]
	col := 0
	for i, tab := range s.Tabs {
		label := fmt.Sprintf(" %d:%s ", i, tab.Name)
		w := textwidth.String(label)
		if col+w > s.Width {
			break
		}
		if tab.Active {
			ar, ag, ab := theme.RGB(s.Theme.TabActiveBg)
			fr, fg, fb := theme.RGB(s.Theme.TabActiveFg)
			buf.WriteString(bgRGB(ar, ag, ab))
			buf.WriteString(fgRGB(fr, fg, fb))
		} else {
			fr, fg, fb := theme.RGB(s.Theme.TabInactiveFg)
			buf.WriteString(bgRGB(tr, tg, tb))
			buf.WriteString(fgRGB(fr, fg, fb))
		}
		buf.WriteString(label)
		r.tabHits = append(r.tabHits, TabHit{Start: col, End: col + w, Index: i})
		col += w
	}
	buf.WriteString("\x1b[0m")
}

// --- status bar ---

func (r *Renderer) drawStatusBar(buf *bytes.Buffer, s *Scene) {
	br, bg_, bb := theme.RGB(s.Theme.StatusBg)
	fr, fg_, fb := theme.RGB(s.Theme.StatusFg)
	fmt.Fprintf(buf, "\x1b[%d;1H\x1b[0m", s.Height)
	buf.WriteString(bgRGB(br, bg_, bb))
	buf.WriteString(fgRGB(fr, fg_, fb))
	buf.WriteString("\x1b[2K")

	left := s.StatusLeft
	right := s.StatusRight
	if textwidth.String(left)+textwidth.String(right) > s.Width {
		left = textwidth.Truncate(left, s.Width, "")
		right = ""
	}
	buf.WriteString(left)
	gap := s.Width - textwidth.String(left) - textwidth.String(right)
	if gap > 0 {
		buf.WriteString(strings.Repeat(" ", gap))
	}
	buf.WriteString(right)
	buf.WriteString("\x1b[0m")
}

// --- borders ---

// drawBorders paints the separator rows and columns the layout reserved
// between panes, then inlays pane titles in top borders.
func (r *Renderer) drawBorders(buf *bytes.Buffer, s *Scene) {
	if s.Zoom >= 0 || s.Border == BorderNone {
		return
	}
	glyphs := borderSets[s.Border]
	ir, ig, ib := theme.RGB(s.Theme.BorderInactive)
	ar, ag, ab := theme.RGB(s.Theme.BorderActive)

	for i := range s.Panes {
		pf := &s.Panes[i]
		color := fgRGB(ir, ig, ib)
		if pf.Focused {
			color = fgRGB(ar, ag, ab)
		}
		rect := pf.Rect
		// Vertical separator on the pane's right edge.
		if rect.X+rect.W < s.Width {
			buf.WriteString("\x1b[0m")
			buf.WriteString(color)
			for y := rect.Y; y < rect.Y+rect.H; y++ {
				fmt.Fprintf(buf, "\x1b[%d;%dH%c", y+1, rect.X+rect.W+1, glyphs.vertical)
			}
		}
		// Horizontal separator below the pane.
		if rect.Y+rect.H < s.paneBottom() {
			buf.WriteString("\x1b[0m")
			buf.WriteString(color)
			fmt.Fprintf(buf, "\x1b[%d;%dH%s", rect.Y+rect.H+1, rect.X+1,
				strings.Repeat(string(glyphs.horizontal), rect.W))
		}
	}
	buf.WriteString("\x1b[0m")

	// Titles sit inline in the border above the pane, when one exists.
	for i := range s.Panes {
		pf := &s.Panes[i]
		if pf.Title == "" || pf.Rect.Y <= s.paneTop() {
			continue
		}
		title := " " + textwidth.Truncate(pf.Title, max(0, pf.Rect.W-4), "…") + " "
		color := fgRGB(ir, ig, ib)
		if pf.Focused {
			color = fgRGB(ar, ag, ab)
		}
		fmt.Fprintf(buf, "\x1b[0m%s\x1b[%d;%dH%s\x1b[0m", color, pf.Rect.Y, pf.Rect.X+2, title)
	}
}

// --- pane content ---

func (r *Renderer) drawPane(buf *bytes.Buffer, s *Scene, pf *PaneFrame, partial bool) {
	rect := pf.Rect
	if s.Zoom >= 0 && pf.ID == s.Zoom {
		rect = layout.Rect{X: 0, Y: s.paneTop(), W: s.Width, H: s.paneBottom() - s.paneTop()}
	}

	grid := pf.Term.Grid()
	copyActive := pf.Copy.Active()

	rows := rect.H
	if grid.Rows() < rows {
		rows = grid.Rows()
	}

	for row := 0; row < rows; row++ {
		if partial && !copyActive && !grid.RowIsDirty(row) {
			continue
		}
		var cells []term.Cell
		if copyActive {
			cells = pf.Copy.ViewRow(row)
		} else {
			cells = grid.Row(row)
		}
		r.drawRow(buf, s, pf, rect, row, cells, copyActive)
	}
	grid.ClearDirty()

	if copyActive {
		r.drawPaneIndicator(buf, s, rect, pf.Copy.StatusLine())
	} else if pf.Dead {
		r.drawPaneIndicator(buf, s, rect, "[exited]")
	}
}

// drawRow emits one pane row, coalescing SGR runs and overlaying copy-mode
// selection, search matches, and the copy cursor.
func (r *Renderer) drawRow(buf *bytes.Buffer, s *Scene, pf *PaneFrame, rect layout.Rect, row int, cells []term.Cell, copyActive bool) {
	fmt.Fprintf(buf, "\x1b[%d;%dH\x1b[0m", rect.Y+row+1, rect.X+1)

	selR, selG, selB := theme.RGB(s.Theme.SelectionBg)
	matR, matG, matB := theme.RGB(s.Theme.SearchMatchBg)
	curRow, curCol := -1, -1
	if copyActive {
		curRow, curCol = pf.Copy.CursorView()
	}

	width := rect.W
	lastSGR := ""
	drawn := 0
	for col := 0; col < width; col++ {
		var cell term.Cell
		if col < len(cells) {
			cell = cells[col]
		} else {
			cell = term.NewCell()
		}
		if cell.IsWideSpacer() {
			continue
		}
		cw := 1
		if cell.IsWide() {
			cw = 2
			if drawn+2 > width {
				// A wide cell that would cross the pane edge renders as a
				// blank; the glyph is never split.
				cell = term.NewCell()
				cw = 1
			}
		}

		sgr := sgrFor(&cell)
		if copyActive {
			selected, matched := pf.Copy.CellMarks(row, col)
			switch {
			case row == curRow && col == curCol:
				sgr += "\x1b[7m"
			case selected:
				sgr += bgRGB(selR, selG, selB)
			case matched:
				sgr += bgRGB(matR, matG, matB)
			}
		}
		if sgr != lastSGR {
			buf.WriteString(sgr)
			lastSGR = sgr
		}
		text := cell.Text()
		if text == "" || cell.Rune == 0 {
			text = " "
		}
		buf.WriteString(text)
		drawn += cw
	}
	buf.WriteString("\x1b[0m")
}

// drawPaneIndicator draws a right-aligned inverse-video tag in the pane's
// first row.
func (r *Renderer) drawPaneIndicator(buf *bytes.Buffer, s *Scene, rect layout.Rect, label string) {
	if label == "" {
		return
	}
	label = textwidth.Truncate(label, rect.W, "")
	col := rect.X + rect.W - textwidth.String(label)
	if col < rect.X {
		col = rect.X
	}
	fmt.Fprintf(buf, "\x1b[%d;%dH\x1b[0m\x1b[7m%s\x1b[0m", rect.Y+1, col+1, label)
}
