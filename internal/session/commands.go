package session

import (
	"wtmux/internal/copymode"
	"wtmux/internal/input"
	"wtmux/internal/layout"
	"wtmux/internal/term"
	"wtmux/internal/theme"
)

// routeEvents dispatches decoded host input. Precedence per event: the
// context menu, copy mode, then the prefix FSM or mouse demultiplexer.
func (s *Session) routeEvents(events []input.Event) {
	for i := range events {
		ev := &events[i]
		switch {
		case ev.Mouse != nil:
			s.routeMouse(ev.Mouse)
		case ev.Key != nil:
			s.routeKey(ev.Key)
		}
	}
}

func (s *Session) routeKey(k *input.Key) {
	if s.menu.open {
		s.handleMenuKey(k)
		s.cellDirty = true
		return
	}

	if p := s.focusedPane(); p != nil && p.Copy.Active() && s.router.State() == input.StateNormal {
		action, text := p.Copy.HandleKey(*k)
		switch action {
		case copymode.ActionYank:
			if text != "" {
				s.clip.WriteClipboard(text)
			}
			s.bumpGeneration()
		case copymode.ActionExit:
			s.bumpGeneration()
		}
		s.cellDirty = true
		return
	}

	stateBefore := s.router.State()
	cmds := s.router.HandleKey(k)
	if s.router.State() != stateBefore {
		s.cellDirty = true
	}
	for i := range cmds {
		s.execute(&cmds[i])
	}
}

// execute performs one routed command.
func (s *Session) execute(c *input.Command) {
	tab := s.activeTab()
	if tab == nil {
		return
	}
	focus := s.focusedPane()

	switch c.Kind {
	case input.CmdForward:
		if focus != nil {
			if focus.Dead {
				s.handleDeadPaneKey(focus, c.Raw)
			} else {
				s.recordCommandLine(focus, c.Raw)
				focus.write(translateKeys(c.Raw, focus.Term.Modes()))
			}
		}

	case input.CmdLiteralPrefix:
		if focus != nil && !focus.Dead {
			focus.write([]byte{s.prefix})
		}

	case input.CmdSplitHorizontal:
		s.splitFocused(layout.Horizontal)
	case input.CmdSplitVertical:
		s.splitFocused(layout.Vertical)

	case input.CmdNewTab:
		if !s.opts.Simple {
			s.createTab()
		}
	case input.CmdKillTab:
		s.closeActiveTab()
	case input.CmdNextTab:
		s.switchTab((s.active + 1) % len(s.tabs))
	case input.CmdPrevTab:
		s.switchTab((s.active - 1 + len(s.tabs)) % len(s.tabs))
	case input.CmdLastTab:
		s.switchTab(s.lastActive)
	case input.CmdSelectTab:
		s.switchTab(c.N)

	case input.CmdKillPane:
		if focus != nil {
			s.closePane(focus.ID)
		}

	case input.CmdZoom:
		tab.Tree.ToggleZoom(tab.Focus)
		s.bumpGeneration()

	case input.CmdCopyMode:
		s.enterCopyMode(false)
	case input.CmdCopySearch:
		s.enterCopyMode(true)

	case input.CmdPaste:
		s.pasteInto(focus)

	case input.CmdFocusDir:
		if next := tab.Tree.FocusNeighbor(tab.Focus, c.Dir); next != layout.None {
			tab.setFocus(next)
			s.bumpGeneration()
		}
	case input.CmdFocusNext:
		ids := tab.Tree.Panes()
		for i, id := range ids {
			if id == tab.Focus {
				tab.setFocus(ids[(i+1)%len(ids)])
				break
			}
		}
		s.bumpGeneration()

	case input.CmdSelectPane:
		ids := tab.Tree.Panes()
		if c.N < len(ids) {
			tab.setFocus(ids[c.N])
			s.bumpGeneration()
		}

	case input.CmdResizeDir:
		if err := tab.Tree.ResizeBy(tab.Focus, c.Dir, 1); err == nil {
			s.reflowActive()
		}

	case input.CmdSwapNext, input.CmdSwapPrev:
		ids := tab.Tree.Panes()
		for i, id := range ids {
			if id == tab.Focus {
				step := 1
				if c.Kind == input.CmdSwapPrev {
					step = len(ids) - 1
				}
				other := ids[(i+step)%len(ids)]
				if other != id {
					tab.Tree.Swap(id, other)
					s.reflowActive()
				}
				break
			}
		}

	case input.CmdNextPreset:
		tab.Tree.ApplyPreset(s.nextPreset())
		s.reflowActive()

	case input.CmdRenameTab:
		tab.Name = c.Data
		s.cellDirty = true
		s.bumpGeneration()

	case input.CmdThemePreview, input.CmdThemeCommit:
		s.applyTheme(c.Data, c.Kind == input.CmdThemeCommit)
	case input.CmdThemeRevert:
		s.applyTheme(s.themeName, false)

	case input.CmdHistoryQuery:
		s.histSel = 0
		if s.hist != nil {
			s.histMatches = s.hist.Search(c.Data)
		}
		s.cellDirty = true
	case input.CmdHistoryMove:
		if n := len(s.histMatches); n > 0 {
			s.histSel = (s.histSel + c.N + n) % n
		}
		s.cellDirty = true
	case input.CmdHistoryAccept:
		if s.histSel < len(s.histMatches) && focus != nil && !focus.Dead {
			cmd := s.histMatches[s.histSel]
			focus.write([]byte(cmd))
			if s.hist != nil {
				s.hist.Append(cmd)
			}
		}
		s.histMatches = nil
		s.cellDirty = true

	case input.CmdRedraw:
		s.bumpGeneration()
	}
}

// nextPreset cycles the built-in layouts in declaration order.
func (s *Session) nextPreset() layout.Preset {
	p := s.preset
	s.preset = layout.NextPreset(p)
	return p
}

// applyTheme switches the color scheme; commit also records it as the
// session's base so a later revert lands here.
func (s *Session) applyTheme(name string, commit bool) {
	th, err := theme.ByName(name)
	if err != nil {
		return
	}
	s.theme = th
	if commit {
		s.themeName = name
	}
	s.bumpGeneration()
}

// translateKeys rewrites CSI cursor keys to their SS3 form when the child
// enabled application cursor keys (DECSET 1).
func translateKeys(raw []byte, modes term.Mode) []byte {
	if !modes.Has(term.ModeAppCursor) {
		return raw
	}
	if len(raw) == 3 && raw[0] == 0x1b && raw[1] == '[' {
		switch raw[2] {
		case 'A', 'B', 'C', 'D', 'H', 'F':
			return []byte{0x1b, 'O', raw[2]}
		}
	}
	return raw
}

// recordCommandLine captures the focused pane's input line into the
// persisted history when the user submits it with Enter. The line is read
// back from the grid, so only what was visible is recorded; a prompt
// prefix is stripped heuristically. Full-screen applications are skipped.
func (s *Session) recordCommandLine(p *Pane, raw []byte) {
	if s.hist == nil || len(raw) != 1 || raw[0] != '\r' {
		return
	}
	if p.Term.Modes().Has(term.ModeAltScreen) {
		return
	}
	line := p.Term.Grid().LineText(p.Term.Cursor().Row)
	if idx := lastPromptEnd(line); idx >= 0 {
		line = line[idx:]
	}
	s.hist.Append(line)
}

// lastPromptEnd returns the offset just past a trailing "$ ", "> ", "% ",
// or "# " prompt marker, or -1.
func lastPromptEnd(line string) int {
	for i := len(line) - 2; i >= 0; i-- {
		switch line[i] {
		case '$', '>', '%', '#':
			if line[i+1] == ' ' {
				return i + 2
			}
		}
	}
	return -1
}

// handleDeadPaneKey implements the dead-pane acknowledgement: Enter, x or q
// closes, anything else is ignored.
func (s *Session) handleDeadPaneKey(p *Pane, raw []byte) {
	if len(raw) == 1 && (raw[0] == '\r' || raw[0] == 'x' || raw[0] == 'q') {
		s.closePane(p.ID)
	}
}

// splitFocused splits the focused pane and spawns a child in the new half.
func (s *Session) splitFocused(o layout.Orientation) {
	tab := s.activeTab()
	if tab == nil || s.opts.Simple {
		return
	}
	// Reject splits that cannot give both halves a usable pane.
	if rect, ok := tab.Tree.Geometry(tab.Focus); ok {
		span := rect.H
		if o == layout.Vertical {
			span = rect.W
		}
		if span < 7 {
			return
		}
	}

	id := s.allocPaneID()
	if err := tab.Tree.Split(tab.Focus, id, o); err != nil {
		return
	}
	rects := tab.Tree.Reflow(s.paneArea())
	for pid, rect := range rects {
		if p, ok := s.panes[pid]; ok {
			p.resize(rect)
		}
	}
	s.spawnPaneAt(id, rects[id])
	tab.setFocus(id)
	s.bumpGeneration()
}

// pasteInto sends the clipboard to a pane, bracketed when the child asked
// for it.
func (s *Session) pasteInto(p *Pane) {
	if p == nil || p.Dead {
		return
	}
	text := s.clip.ReadClipboard()
	if text == "" {
		return
	}
	bracketed := p.Term.Modes().Has(term.ModeBracketedPaste)
	p.write(input.WrapPaste(text, bracketed))
}

// --- context menu keys ---

func (s *Session) handleMenuKey(k *input.Key) {
	switch {
	case k.Special == input.KeyEsc:
		s.menu.open = false
		s.bumpGeneration()
	case k.Special == input.KeyEnter:
		s.menuSelect(s.menu.selected)
	case k.Rune == 'j' || k.Special == input.KeyDown:
		s.menu.selected = (s.menu.selected + 1) % len(menuItems)
	case k.Rune == 'k' || k.Special == input.KeyUp:
		s.menu.selected = (s.menu.selected - 1 + len(menuItems)) % len(menuItems)
	}
}

// menuSelect runs the chosen context-menu action against the pane the menu
// was opened on.
func (s *Session) menuSelect(idx int) {
	s.menu.open = false
	tab := s.activeTab()
	if tab == nil {
		return
	}
	if _, ok := s.panes[s.menu.pane]; ok {
		tab.setFocus(s.menu.pane)
	}
	switch idx {
	case 0:
		s.splitFocused(layout.Horizontal)
	case 1:
		s.splitFocused(layout.Vertical)
	case 2:
		tab.Tree.ToggleZoom(tab.Focus)
	case 3:
		s.closePane(tab.Focus)
	case 4:
		s.pasteInto(s.focusedPane())
	}
	s.bumpGeneration()
}
