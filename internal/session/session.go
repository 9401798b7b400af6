// Package session is the window manager and event loop: it owns the tabs,
// panes, focus, and host terminal, and threads input, parsing, and
// rendering together on one goroutine.
package session

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"wtmux/internal/clipboard"
	"wtmux/internal/config"
	"wtmux/internal/copymode"
	"wtmux/internal/eventlog"
	"wtmux/internal/history"
	"wtmux/internal/input"
	"wtmux/internal/layout"
	"wtmux/internal/pty"
	"wtmux/internal/render"
	termstate "wtmux/internal/term"
	"wtmux/internal/theme"
	"wtmux/internal/vt"
)

// pollTimeout is the host-input wait per loop pass while output may still
// be pending; the loop drains child output after every wake-up.
const pollTimeout = 15 * time.Millisecond

// ExitError carries the process exit code for unrecoverable failures.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Options are the resolved startup parameters (CLI over config file over
// defaults).
type Options struct {
	Shell    pty.Shell
	Custom   string
	Codepage int
	Simple   bool // single pane, no tab bar or status bar
}

// menuItems is the right-click context menu.
var menuItems = []string{"Split Top/Bottom", "Split Left/Right", "Zoom", "Kill Pane", "Paste"}

type menuState struct {
	open     bool
	x, y     int
	selected int
	pane     layout.PaneID
}

// Session is the top-level state: an ordered tab list, focus bookkeeping,
// and the machinery shared by every pane.
type Session struct {
	cfg  *config.Config
	opts Options

	theme     theme.Theme
	themeName string
	border    render.BorderStyle
	prefix    byte

	renderer *render.Renderer
	router   *input.Router
	decoder  input.Decoder
	clip     *clipboard.Clipboard
	hist     *history.History
	log      *eventlog.Logger
	output   *termenv.Output

	tabs       []*Tab
	active     int
	lastActive int

	panes       map[layout.PaneID]*Pane
	nextPaneID  layout.PaneID
	panesOpened int

	width  int
	height int

	// generation forces a full redraw when bumped: resizes, theme changes,
	// zoom toggles, structural changes.
	generation int
	rendered   int
	cellDirty  bool

	// host-side text selection via mouse drag
	selPane layout.PaneID

	// preset is the next layout the preset cycle applies.
	preset layout.Preset

	menu menuState

	// history-search overlay results
	histMatches []string
	histSel     int

	hostFg string
	hostBg string

	quit bool
}

// New assembles a session from configuration and resolved options.
func New(cfg *config.Config, opts Options, logger *eventlog.Logger) (*Session, error) {
	prefix, err := config.ParsePrefixKey(cfg.PrefixKey)
	if err != nil {
		return nil, err
	}
	th, err := theme.ByName(cfg.ColorScheme)
	if err != nil {
		return nil, err
	}

	output := termenv.NewOutput(os.Stdout)
	s := &Session{
		cfg:       cfg,
		opts:      opts,
		theme:     th,
		themeName: th.Name,
		border:    render.ParseBorderStyle(cfg.Pane.BorderStyle),
		prefix:    prefix,
		renderer:  render.New(os.Stdout),
		router:    input.NewRouter(prefix, theme.Names()),
		clip:      clipboard.New(output),
		log:       logger,
		output:    output,
		panes:     map[layout.PaneID]*Pane{},
		selPane:   layout.None,
	}

	// The host terminal's colors are detected before raw mode so children
	// asking via OSC 10/11 get truthful answers.
	if fg := output.ForegroundColor(); fg != nil {
		s.hostFg = colorToX11(fg)
	}
	if bg := output.BackgroundColor(); bg != nil {
		s.hostBg = colorToX11(bg)
	}

	if dir, err := config.Dir(); err == nil {
		if h, err := history.Load(dir); err == nil {
			s.hist = h
		}
	}
	return s, nil
}

// Run owns the host terminal until the last tab closes. The returned error
// is nil on clean exit; spawn failures of the first pane and unrecoverable
// render errors carry exit codes 1 and 2.
func (s *Session) Run() error {
	fd := int(os.Stdin.Fd())
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("get terminal size (is this a terminal?): %w", err)}
	}
	if rows < 4 || cols < 20 {
		return &ExitError{Code: 2, Err: fmt.Errorf("terminal too small (%dx%d)", cols, rows)}
	}
	s.width, s.height = cols, rows

	restore, err := term.MakeRaw(fd)
	if err != nil {
		return &ExitError{Code: 2, Err: fmt.Errorf("set raw mode: %w", err)}
	}
	// Alternate screen, mouse tracking (drag + all-motion, SGR encoding).
	os.Stdout.WriteString("\x1b[?1049h\x1b[2J\x1b[H\x1b[?1002h\x1b[?1003h\x1b[?1006h")
	defer func() {
		os.Stdout.WriteString("\x1b[?1006l\x1b[?1003l\x1b[?1002l\x1b[?1049l\x1b[?25h\x1b[0m")
		term.Restore(fd, restore)
	}()

	if _, err := s.createTab(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	inputCh := make(chan []byte, 8)
	go readHostInput(inputCh)

	winchCh := make(chan os.Signal, 1)
	signal.Notify(winchCh, syscall.SIGWINCH)
	defer signal.Stop(winchCh)

	clock := time.NewTicker(time.Second)
	defer clock.Stop()

	s.bumpGeneration()
	renderErrors := 0

	for !s.quit && len(s.tabs) > 0 {
		select {
		case data, ok := <-inputCh:
			if !ok {
				s.quit = true
				break
			}
			s.handleInput(data)
		case <-winchCh:
			if cols, rows, err := term.GetSize(fd); err == nil {
				s.resizeHost(cols, rows)
			}
		case <-clock.C:
			if s.cfg.StatusBar.ShowTime && !s.opts.Simple {
				s.cellDirty = true
			}
			if s.router.Expired(time.Now()) {
				s.cellDirty = true
			}
			if s.decoder.HasPending() {
				s.routeEvents(s.decoder.FlushPending())
			}
		case <-time.After(pollTimeout):
		}

		s.drainPanes()
		s.reapDeadPanes()

		if s.cellDirty || s.generation != s.rendered {
			if err := s.render(); err != nil {
				renderErrors++
				s.log.RenderFailure(int(s.focusedPaneID()), s.width, s.height, err)
				s.bumpGeneration()
				if renderErrors > 5 {
					return &ExitError{Code: 2, Err: fmt.Errorf("host output failed: %w", err)}
				}
			} else {
				renderErrors = 0
			}
		}
	}

	s.shutdown()
	return nil
}

// readHostInput pumps stdin into the event loop.
func readHostInput(ch chan<- []byte) {
	defer close(ch)
	buf := make([]byte, 1024)
	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			ch <- chunk
		}
		if err != nil {
			return
		}
	}
}

// handleInput decodes a host input chunk and routes the events.
func (s *Session) handleInput(data []byte) {
	s.routeEvents(s.decoder.Feed(data))
}

// drainPanes feeds queued child output through each pane's parser, capped
// per pane per pass. Returns true when any bytes were consumed.
func (s *Session) drainPanes() bool {
	any := false
	for _, p := range s.panes {
		if p.feed() > 0 {
			any = true
			if p.Term.Grid().HasDirty() {
				s.cellDirty = true
			}
			if p.Term.TakeTitleDirty() {
				p.Title = p.Term.Title()
				s.cellDirty = true
			}
		}
	}
	return any
}

// reapDeadPanes marks exited children dead. Dead panes keep their grid and
// geometry until the user closes them.
func (s *Session) reapDeadPanes() {
	for _, p := range s.panes {
		if p.checkExit() {
			s.log.PaneClosed(int(p.ID), "child exit")
			s.cellDirty = true
		}
	}
}

// --- tab and pane lifecycle ---

// allocPaneID hands out ids from a monotonically increasing counter; ids
// are never reused within a session.
func (s *Session) allocPaneID() layout.PaneID {
	id := s.nextPaneID
	s.nextPaneID++
	return id
}

// spawnPaneAt creates the pane for a pre-allocated id at the given size.
// Spawn failures yield a dead pane showing the error, never an event-loop
// failure.
func (s *Session) spawnPaneAt(id layout.PaneID, rect layout.Rect) *Pane {
	p := &Pane{ID: id, Rect: rect}
	s.panesOpened++

	tstate := termstate.New(rect.H, rect.W,
		termstate.WithScrollback(s.cfg.Scrollback.Lines),
		termstate.WithClipboard(s.clip),
		termstate.WithHostColors(s.hostFg, s.hostBg),
	)
	tstate.CSI([][]int{{int(s.cfg.CursorShape()) + 1}}, []byte{' '}, false, 'q')
	p.Term = tstate
	p.Parser = vt.NewParser(tstate)

	sess, err := pty.Spawn(pty.Spec{
		Shell:    s.opts.Shell,
		Custom:   s.opts.Custom,
		Rows:     rect.H,
		Cols:     rect.W,
		Codepage: s.opts.Codepage,
		Env:      wtmuxEnv(),
	})
	if err != nil {
		s.log.SpawnFailure(s.opts.Shell.String(), err)
		p.Dead = true
		p.DeadErr = err
		p.showMessage(fmt.Sprintf("wtmux: spawn failed: %v", err))
		p.showMessage("press prefix-x to close this pane")
	} else {
		p.PTY = sess
		tstate.SetResponses(sess)
	}

	s.panes[id] = p
	return p
}

// wtmuxEnv returns extra environment for children beyond the always-set
// WTMUX marker.
func wtmuxEnv() map[string]string {
	env := map[string]string{}
	if dir := os.Getenv("WTMUX_CONFIG_DIR"); dir != "" {
		env["WTMUX_CONFIG_DIR"] = dir
	}
	return env
}

// createTab spawns a fresh tab with one pane running the default shell.
func (s *Session) createTab() (*Tab, error) {
	id := s.allocPaneID()
	tab := newTab("shell", id)
	s.tabs = append(s.tabs, tab)
	s.lastActive = s.active
	s.active = len(s.tabs) - 1

	// Build the pane at its reflowed size so the child starts correct.
	rects := tab.Tree.Reflow(s.paneArea())
	rect := rects[id]

	p := s.spawnPaneAt(id, rect)
	if p.Dead && len(s.tabs) == 1 && s.panesOpened == 1 {
		return tab, fmt.Errorf("spawn shell: %w", p.DeadErr)
	}
	s.bumpGeneration()
	return tab, nil
}

// closePane removes a pane from its tab, collapsing the split. Closes the
// tab when it empties.
func (s *Session) closePane(id layout.PaneID) {
	tab := s.tabs[s.active]
	p, ok := s.panes[id]
	if !ok {
		return
	}
	if p.PTY != nil && !p.Dead {
		p.PTY.Kill()
	}
	delete(s.panes, id)
	s.log.PaneClosed(int(p.ID), "closed")

	empty, err := tab.Tree.Close(id)
	if err != nil {
		return
	}
	if empty {
		s.closeActiveTab()
		return
	}
	if tab.Focus == id {
		tab.Focus = tab.Tree.Panes()[0]
		tab.LastFocus = layout.None
	}
	if tab.LastFocus == id {
		tab.LastFocus = layout.None
	}
	s.reflowActive()
}

// closeActiveTab tears down the active tab's remaining panes and drops it.
func (s *Session) closeActiveTab() {
	tab := s.tabs[s.active]
	for _, id := range tab.Tree.Panes() {
		if p, ok := s.panes[id]; ok {
			if p.PTY != nil && !p.Dead {
				p.PTY.Kill()
			}
			delete(s.panes, id)
		}
	}
	s.tabs = append(s.tabs[:s.active], s.tabs[s.active+1:]...)
	if s.lastActive >= len(s.tabs) {
		s.lastActive = 0
	}
	if s.active >= len(s.tabs) {
		s.active = len(s.tabs) - 1
	}
	if s.active < 0 {
		s.active = 0
	}
	s.bumpGeneration()
	if len(s.tabs) > 0 {
		s.reflowActive()
	}
}

// --- geometry ---

// paneArea is the region tabs tile: everything between the tab bar and the
// status bar.
func (s *Session) paneArea() layout.Rect {
	top := 0
	if s.tabBarVisible() {
		top = 1
	}
	bottom := s.height
	if s.statusVisible() {
		bottom--
	}
	return layout.Rect{X: 0, Y: top, W: s.width, H: bottom - top}
}

func (s *Session) tabBarVisible() bool {
	return s.cfg.TabBar.Visible && !s.opts.Simple
}

func (s *Session) statusVisible() bool {
	return s.cfg.StatusBar.Visible && !s.opts.Simple
}

// reflowActive recomputes the active tab's geometry and pushes sizes to
// panes. splitFocused and createTab call Tree.Reflow directly instead.
func (s *Session) reflowActive() {
	if len(s.tabs) == 0 {
		return
	}
	tab := s.tabs[s.active]
	rects := tab.Tree.Reflow(s.paneArea())
	for id, rect := range rects {
		if p, ok := s.panes[id]; ok {
			p.resize(rect)
		}
	}
	s.bumpGeneration()
}

// resizeHost reacts to a host terminal size change.
func (s *Session) resizeHost(cols, rows int) {
	if cols == s.width && rows == s.height {
		return
	}
	s.width, s.height = cols, rows
	s.reflowActive()
}

func (s *Session) bumpGeneration() {
	s.generation++
}

// --- focus helpers ---

func (s *Session) activeTab() *Tab {
	if len(s.tabs) == 0 {
		return nil
	}
	return s.tabs[s.active]
}

func (s *Session) focusedPaneID() layout.PaneID {
	tab := s.activeTab()
	if tab == nil {
		return layout.None
	}
	return tab.Focus
}

func (s *Session) focusedPane() *Pane {
	return s.panes[s.focusedPaneID()]
}

// switchTab activates tab index i, remembering the previous one.
func (s *Session) switchTab(i int) {
	if i < 0 || i >= len(s.tabs) || i == s.active {
		return
	}
	s.lastActive = s.active
	s.active = i
	s.reflowActive()
}

// shutdown tears down every pane and logs the session summary.
func (s *Session) shutdown() {
	for _, p := range s.panes {
		if p.PTY != nil && !p.Dead {
			p.PTY.Kill()
		}
	}
	s.log.SessionSummary(len(s.tabs), s.panesOpened)
	s.log.Close()
}

// colorToX11 converts a termenv color to the X11 rgb: form used in
// OSC 10/11 responses.
func colorToX11(c termenv.Color) string {
	if v, ok := c.(termenv.RGBColor); ok {
		hex := string(v)
		if len(hex) == 7 && hex[0] == '#' {
			var r, g, b int
			if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
				return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
			}
		}
	}
	return ""
}

// enterCopyMode puts the focused pane into copy mode.
func (s *Session) enterCopyMode(searchFirst bool) {
	p := s.focusedPane()
	if p == nil {
		return
	}
	p.Copy = copymode.Enter(p.Term, p.Rect.W, p.Rect.H, searchFirst)
	s.bumpGeneration()
}
