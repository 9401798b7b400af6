package session

import (
	"wtmux/internal/copymode"
	"wtmux/internal/input"
	"wtmux/internal/layout"
	"wtmux/internal/render"
)

// routeMouse implements the passthrough FSM. Order: modal overlays, then
// Shift-held host handling, then child passthrough for the focused pane,
// then wtmux's own gestures.
func (s *Session) routeMouse(e *input.MouseEvent) {
	// 1. A visible overlay consumes the event.
	if s.menu.open {
		s.menuMouse(e)
		return
	}
	if s.router.State() != input.StateNormal {
		return
	}

	// 2. Shift forces host handling regardless of child modes.
	if !e.Shift {
		// 3. Child passthrough: focused pane asked for mouse tracking and
		// the event lies inside its geometry (bars excluded).
		if s.forwardMouseToChild(e) {
			return
		}
	}

	// 4. wtmux handles the event.
	s.hostMouse(e)
}

// forwardMouseToChild translates and encodes the event for the focused
// child. Returns true when the event was consumed.
func (s *Session) forwardMouseToChild(e *input.MouseEvent) bool {
	tab := s.activeTab()
	p := s.focusedPane()
	if tab == nil || p == nil || p.Dead || p.Copy.Active() {
		return false
	}
	modes := p.Term.Modes()
	if !modes.MouseEnabled() {
		return false
	}
	rect := s.paneScreenRect(p)
	if !rect.Contains(e.X, e.Y) {
		return false
	}
	if !input.WantsEvent(modes, e) {
		return true // inside a tracking pane; never leaks to wtmux
	}
	data := input.EncodeMouse(e, modes.MouseEncodingMode(), e.X-rect.X, e.Y-rect.Y)
	if data != nil {
		p.write(data)
	}
	return true
}

// paneScreenRect returns where the pane currently appears: its layout rect
// normally, the full pane area while zoomed.
func (s *Session) paneScreenRect(p *Pane) layout.Rect {
	tab := s.activeTab()
	if tab != nil && tab.Tree.Zoomed() == p.ID {
		return s.paneArea()
	}
	return p.Rect
}

// hostMouse is step 4: tab-bar clicks, selection drags, context menu, and
// scrollback wheel.
func (s *Session) hostMouse(e *input.MouseEvent) {
	// Tab bar row.
	if s.tabBarVisible() && e.Y == 0 {
		if e.Button == input.ButtonLeft && e.Press && !e.Motion {
			for _, hit := range s.renderer.TabHits() {
				if e.X >= hit.Start && e.X < hit.End {
					s.switchTab(hit.Index)
					return
				}
			}
		}
		return
	}

	tab := s.activeTab()
	if tab == nil {
		return
	}
	target := tab.Tree.PaneAt(e.X, e.Y)
	if tab.Tree.Zoomed() != layout.None {
		target = tab.Tree.Zoomed()
	}

	switch {
	case e.IsWheel():
		s.wheelScroll(e, target)

	case e.Button == input.ButtonRight && e.Press && !e.Motion:
		if target != layout.None {
			s.openMenu(e.X, e.Y, target)
		}

	case e.Button == input.ButtonLeft:
		s.selectionMouse(e, target)
	}
}

// wheelScroll scrolls the pointed-at pane's scrollback, entering copy mode
// on the first step up.
func (s *Session) wheelScroll(e *input.MouseEvent, target layout.PaneID) {
	p := s.panes[target]
	if p == nil {
		return
	}
	step := 3
	if e.Button == input.WheelUp {
		step = -3
	}
	if !p.Copy.Active() {
		if step > 0 {
			return // scrolling down at the live view is a no-op
		}
		rect := s.paneScreenRect(p)
		p.Copy = copymode.Enter(p.Term, rect.W, rect.H, false)
	}
	p.Copy.ScrollLines(step)
	s.cellDirty = true
	s.bumpGeneration()
}

// selectionMouse implements host-level click-drag selection: press anchors,
// drag extends, release copies to the clipboard.
func (s *Session) selectionMouse(e *input.MouseEvent, target layout.PaneID) {
	if e.Press && !e.Motion {
		p := s.panes[target]
		if p == nil {
			return
		}
		rect := s.paneScreenRect(p)
		s.selPane = target
		if !p.Copy.Active() {
			p.Copy = copymode.EnterSelection(p.Term, rect.W, rect.H, e.Y-rect.Y, e.X-rect.X)
		} else {
			p.Copy.MouseExtend(e.Y-rect.Y, e.X-rect.X)
		}
		s.bumpGeneration()
		return
	}

	p := s.panes[s.selPane]
	if p == nil || !p.Copy.Active() {
		return
	}
	rect := s.paneScreenRect(p)

	if e.Motion && e.Press {
		p.Copy.MouseExtend(e.Y-rect.Y, e.X-rect.X)
		s.cellDirty = true
		return
	}
	if !e.Press {
		text := p.Copy.MouseFinish()
		if text != "" {
			s.clip.WriteClipboard(text)
		}
		s.selPane = layout.None
		s.bumpGeneration()
	}
}

// --- context menu ---

func (s *Session) openMenu(x, y int, pane layout.PaneID) {
	// Keep the menu on screen.
	if x+16 > s.width {
		x = max(0, s.width-16)
	}
	if y+len(menuItems) > s.height {
		y = max(0, s.height-len(menuItems))
	}
	s.menu = menuState{open: true, x: x, y: y, pane: pane}
	s.bumpGeneration()
}

func (s *Session) menuMouse(e *input.MouseEvent) {
	if !e.Press || e.Motion {
		return
	}
	overlay := s.menuOverlay()
	idx := overlay.Hit(e.X, e.Y)
	if e.Button == input.ButtonLeft && idx >= 0 {
		s.menuSelect(idx)
		return
	}
	// Any click outside closes the menu.
	s.menu.open = false
	s.bumpGeneration()
}

func (s *Session) menuOverlay() *render.MenuOverlay {
	if !s.menu.open {
		return nil
	}
	return &render.MenuOverlay{
		X:        s.menu.x,
		Y:        s.menu.y,
		Items:    menuItems,
		Selected: s.menu.selected,
	}
}
