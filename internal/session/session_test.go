package session

import (
	"testing"

	"github.com/muesli/termenv"

	"wtmux/internal/config"
	"wtmux/internal/eventlog"
	"wtmux/internal/input"
	"wtmux/internal/layout"
	termstate "wtmux/internal/term"
	"wtmux/internal/vt"
)

func newTermFor(rect layout.Rect) *termstate.Terminal {
	return termstate.New(rect.H, rect.W)
}

func rgbColor(hex string) termenv.Color {
	return termenv.RGBColor(hex)
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	t.Setenv("WTMUX_CONFIG_DIR", t.TempDir())
	s, err := New(config.Default(), Options{Codepage: 65001}, eventlog.Nop())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s.width, s.height = 80, 24
	return s
}

// addTabWithoutSpawn builds a tab whose pane has terminal state but no
// child process, so lifecycle logic is testable without a PTY.
func (s *Session) addTabWithoutSpawn(name string) (*Tab, *Pane) {
	id := s.allocPaneID()
	tab := newTab(name, id)
	s.tabs = append(s.tabs, tab)
	s.lastActive = s.active
	s.active = len(s.tabs) - 1
	rects := tab.Tree.Reflow(s.paneArea())
	p := s.deadPaneAt(id, rects[id])
	return tab, p
}

func (s *Session) deadPaneAt(id layout.PaneID, rect layout.Rect) *Pane {
	p := &Pane{ID: id, Rect: rect, Dead: true}
	p.Term = newTermFor(rect)
	s.panes[id] = p
	s.panesOpened++
	return p
}

func TestPaneArea_ExcludesBars(t *testing.T) {
	s := newTestSession(t)
	area := s.paneArea()
	if area.Y != 1 || area.H != 22 {
		t.Fatalf("expected bars to claim two rows, got %+v", area)
	}
	s.opts.Simple = true
	area = s.paneArea()
	if area.Y != 0 || area.H != 24 {
		t.Fatalf("simple mode must use the full screen, got %+v", area)
	}
}

func TestAllocPaneID_Monotonic(t *testing.T) {
	s := newTestSession(t)
	a := s.allocPaneID()
	b := s.allocPaneID()
	if b <= a {
		t.Fatalf("pane ids must increase, got %d then %d", a, b)
	}
}

func TestSwitchTab_TracksLastActive(t *testing.T) {
	s := newTestSession(t)
	s.addTabWithoutSpawn("one")
	s.addTabWithoutSpawn("two")
	s.active = 0

	s.switchTab(1)
	if s.active != 1 || s.lastActive != 0 {
		t.Fatalf("expected active 1 / last 0, got %d / %d", s.active, s.lastActive)
	}
	s.execute(&input.Command{Kind: input.CmdLastTab})
	if s.active != 0 {
		t.Fatalf("toggle-last must return to tab 0, got %d", s.active)
	}
}

func TestCloseActiveTab_RemovesPanes(t *testing.T) {
	s := newTestSession(t)
	_, p := s.addTabWithoutSpawn("one")
	s.addTabWithoutSpawn("two")
	s.active = 0
	s.closeActiveTab()
	if len(s.tabs) != 1 {
		t.Fatalf("expected 1 tab left, got %d", len(s.tabs))
	}
	if _, ok := s.panes[p.ID]; ok {
		t.Fatalf("closed tab's panes must be freed")
	}
}

func TestRenameCommand(t *testing.T) {
	s := newTestSession(t)
	tab, _ := s.addTabWithoutSpawn("old")
	s.execute(&input.Command{Kind: input.CmdRenameTab, Data: "new-name"})
	if tab.Name != "new-name" {
		t.Fatalf("expected rename, got %q", tab.Name)
	}
}

func TestZoomCommand_TogglesAndPreservesContent(t *testing.T) {
	s := newTestSession(t)
	tab, p := s.addTabWithoutSpawn("one")
	vt.NewParser(p.Term).Parse([]byte("hello\n"))

	gen := s.generation
	s.execute(&input.Command{Kind: input.CmdZoom})
	if tab.Tree.Zoomed() != p.ID {
		t.Fatalf("expected zoom on focused pane")
	}
	if s.generation == gen {
		t.Fatalf("zoom must force a full redraw")
	}
	s.execute(&input.Command{Kind: input.CmdZoom})
	if tab.Tree.Zoomed() != layout.None {
		t.Fatalf("expected unzoom")
	}
	if got := p.Term.Grid().LineText(0); got != "hello" {
		t.Fatalf("zoom round trip must preserve the grid, got %q", got)
	}
}

func TestBuildScene_ReflectsState(t *testing.T) {
	s := newTestSession(t)
	s.addTabWithoutSpawn("one")
	scene := s.buildScene()
	if !scene.TabBar || !scene.Status {
		t.Fatalf("bars must be visible by default")
	}
	if len(scene.Panes) != 1 || !scene.Panes[0].Focused || !scene.Panes[0].Dead {
		t.Fatalf("unexpected pane frames %+v", scene.Panes)
	}
	if scene.Zoom != -1 {
		t.Fatalf("expected no zoom")
	}
	if scene.StatusLeft == "" || scene.StatusRight == "" {
		t.Fatalf("status bar must be composed")
	}
}

func TestColorToX11(t *testing.T) {
	got := colorToX11(rgbColor("#ff0000"))
	if got != "rgb:ffff/0000/0000" {
		t.Fatalf("unexpected conversion %q", got)
	}
}
