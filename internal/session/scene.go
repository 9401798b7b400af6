package session

import (
	"fmt"
	"time"

	"wtmux/internal/input"
	"wtmux/internal/layout"
	"wtmux/internal/render"
)

// render draws the current frame: full after a generation bump, partial
// for cell-level dirt.
func (s *Session) render() error {
	scene := s.buildScene()
	full := s.generation != s.rendered
	s.rendered = s.generation
	s.cellDirty = false
	if full {
		return s.renderer.RenderFull(scene)
	}
	return s.renderer.RenderPartial(scene)
}

// buildScene snapshots the session for the renderer.
func (s *Session) buildScene() *render.Scene {
	tab := s.activeTab()
	scene := &render.Scene{
		Width:  s.width,
		Height: s.height,
		Theme:  s.theme,
		Border: s.border,
		TabBar: s.tabBarVisible(),
		Status: s.statusVisible(),
		Zoom:   -1,
		Menu:   s.menuOverlay(),
	}
	if tab == nil {
		return scene
	}

	for i, t := range s.tabs {
		scene.Tabs = append(scene.Tabs, render.TabLabel{Name: t.Name, Active: i == s.active})
	}

	if z := tab.Tree.Zoomed(); z != layout.None {
		scene.Zoom = int(z)
	}
	for _, id := range tab.Tree.Panes() {
		p, ok := s.panes[id]
		if !ok {
			continue
		}
		scene.Panes = append(scene.Panes, render.PaneFrame{
			ID:      int(p.ID),
			Rect:    p.Rect,
			Title:   p.Title,
			Focused: id == tab.Focus,
			Dead:    p.Dead,
			Term:    p.Term,
			Copy:    p.Copy,
		})
	}

	scene.StatusLeft = s.statusLeft(tab)
	scene.StatusRight = s.statusRight()
	return scene
}

// statusLeft composes the mode indicator and tab summary.
func (s *Session) statusLeft(tab *Tab) string {
	mode := ""
	switch s.router.State() {
	case input.StateAwaitingPrefix:
		mode = "[prefix] "
	case input.StateNumberSelect:
		mode = "[pane #] "
	case input.StateRenameTab:
		return fmt.Sprintf(" rename: %s▏", s.router.RenameBuffer())
	case input.StateThemePicker:
		return fmt.Sprintf(" theme: %s (j/k to cycle, Enter to keep)", s.router.ThemeSelection())
	case input.StateHistorySearch:
		sel := ""
		if s.histSel < len(s.histMatches) {
			sel = s.histMatches[s.histSel]
		}
		return fmt.Sprintf(" history: %s▏ → %s", s.router.QueryBuffer(), sel)
	}
	if p := s.focusedPane(); p != nil && p.Copy.Active() {
		mode = "[copy] "
	}
	zoom := ""
	if tab.Tree.Zoomed() != layout.None {
		zoom = " Z"
	}
	return fmt.Sprintf(" %s%d:%s (%d panes)%s", mode, s.active, tab.Name, tab.Tree.Len(), zoom)
}

// statusRight shows the scheme and, when configured, the clock.
func (s *Session) statusRight() string {
	right := s.theme.Name + " "
	if s.cfg.StatusBar.ShowTime {
		right += time.Now().Format("15:04") + " "
	}
	return right
}
